package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra/credentials"
)

var tokenCommand = &cobra.Command{
	Use:   "token",
	Short: "Manage integration tokens stored in the database",
}

var tokenSetCommand = &cobra.Command{
	Use:   "set <generation|board> [token]",
	Short: "Store the API token for a provider",
	Long:  "Stores the token used when the matching environment variable is empty. Without a token argument the value is read from GENERATION_API_KEY or BOARD_API_TOKEN.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := strings.ToLower(strings.TrimSpace(args[0]))
		token := ""
		if len(args) == 2 {
			token = args[1]
		}
		token, err := tokenFor(provider, token)
		if err != nil {
			return err
		}

		cfg, err := infra.LoadConfig()
		if err != nil {
			return err
		}
		logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "token").Str("provider", provider).Logger()
		pool, err := infra.NewDBPool(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := credentials.NewStore(infra.NewSQLRunner(pool, logger))
		if err := store.SetToken(cmd.Context(), provider, token); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s token stored\n", provider)
		return nil
	},
}

func init() {
	tokenCommand.AddCommand(tokenSetCommand)
	rootCmd.AddCommand(tokenCommand)
}

// tokenFor validates provider and falls back to its environment variable.
func tokenFor(provider, token string) (string, error) {
	env := ""
	switch provider {
	case credentials.ProviderGeneration:
		env = "GENERATION_API_KEY"
	case credentials.ProviderBoard:
		env = "BOARD_API_TOKEN"
	default:
		return "", fmt.Errorf("unsupported provider %q", provider)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		token = strings.TrimSpace(os.Getenv(env))
	}
	if token == "" {
		return "", fmt.Errorf("%s token is required as an argument or via %s", provider, env)
	}
	return token, nil
}
