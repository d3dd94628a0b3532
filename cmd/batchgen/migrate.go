package main

import (
	"github.com/spf13/cobra"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/db"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
)

var migrateCommand = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply or inspect the database schema",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{db.CommandUp, db.CommandDown, db.CommandStatus},
	RunE: func(cmd *cobra.Command, args []string) error {
		command := db.CommandUp
		if len(args) == 1 {
			command = args[0]
		}
		cfg, err := infra.LoadConfig()
		if err != nil {
			return err
		}
		logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "migrate").Logger()
		return db.Migrate(cmd.Context(), cfg.DatabaseURL, command, &logger)
	},
}

func init() {
	rootCmd.AddCommand(migrateCommand)
}
