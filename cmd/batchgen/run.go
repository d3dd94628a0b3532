package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/bootstrap"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/orchestrator"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Generate images for every eligible record",
	Long: `Selects records with a prompt in --prompt-field and a reference image, generates --variations images for each, writes the results back and, when a board is given, publishes each record once all of its variations resolved.

The final report is printed to stdout as JSON. With --events, progress events are written to stderr as JSON lines.`,
	RunE: runBatch,
}

var (
	runPromptField string
	runVariations  int
	runMatchAspect bool
	runBoardID     string
	runBoardName   string
	runRecordIDs   []string
	runLimit       int
	runEvents      bool
	runArchive     string
)

func init() {
	runCommand.Flags().StringVarP(&runPromptField, "prompt-field", "p", "prompt", "Record column holding the prompt")
	runCommand.Flags().IntVarP(&runVariations, "variations", "n", 0, "Variations per record (0 uses RUN_VARIATIONS)")
	runCommand.Flags().BoolVar(&runMatchAspect, "match-aspect", false, "Match the output canvas to each reference image")
	runCommand.Flags().StringVar(&runBoardID, "board-id", "", "Publish to this existing board")
	runCommand.Flags().StringVar(&runBoardName, "board-name", "", "Create a board with this name and publish to it")
	runCommand.Flags().StringSliceVar(&runRecordIDs, "record-id", nil, "Restrict the run to these record ids (repeatable)")
	runCommand.Flags().IntVar(&runLimit, "limit", 0, "Maximum number of records (0 means no limit)")
	runCommand.Flags().BoolVar(&runEvents, "events", false, "Stream progress events to stderr")
	runCommand.Flags().StringVar(&runArchive, "archive", "", "Also write the generated images to this zip file")
	runCommand.MarkFlagsMutuallyExclusive("board-id", "board-name")

	rootCmd.AddCommand(runCommand)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "run").Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Open(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	req := runRequestFromFlags()
	var events orchestrator.EventSink
	if runEvents {
		events = jsonLines(cmd.ErrOrStderr())
	}

	report, runErr := svc.Orchestrator.Run(ctx, req, events)
	if report != nil {
		if err := writeReport(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if runArchive != "" {
			written, skipped, err := writeArchive(context.WithoutCancel(ctx), svc.Storage, report, runArchive)
			if err != nil {
				return fmt.Errorf("write archive: %w", err)
			}
			logger.Info().Str("path", runArchive).Int("images", written).Int("skipped", skipped).Msg("archive written")
		}
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("run interrupted: %w", runErr)
		}
		return runErr
	}
	return nil
}

func runRequestFromFlags() orchestrator.RunRequest {
	return orchestrator.RunRequest{
		PromptField: runPromptField,
		MatchAspect: runMatchAspect,
		Variations:  runVariations,
		BoardID:     runBoardID,
		BoardName:   runBoardName,
		RecordIDs:   runRecordIDs,
		Limit:       runLimit,
	}
}

func writeReport(w io.Writer, report *orchestrator.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// jsonLines writes one JSON object per event. Encoding errors are dropped.
func jsonLines(w io.Writer) orchestrator.EventSink {
	enc := json.NewEncoder(w)
	return orchestrator.EventSinkFunc(func(e orchestrator.Event) {
		_ = enc.Encode(e)
	})
}
