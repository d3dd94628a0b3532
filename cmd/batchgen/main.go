// Command batchgen runs batch image generation from the command line and
// manages the schema and stored integration tokens.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "batchgen",
	Short:         "Batch image generation for record store rows",
	Long:          "batchgen expands eligible records into generation jobs, keeps a bounded number in flight, stores the results and lays each finished record out on a board.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
