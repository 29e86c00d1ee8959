// Package main provides the reviews engine CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/reviewpilot/reviews-engine/internal/config"
	"github.com/reviewpilot/reviews-engine/internal/observability"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "reviews-cli",
	Short: "Reviews engine CLI for ingestion and question answering",
	Long: `Reviews engine CLI manages the review search index and answers
questions about the indexed reviews.

Use this tool to:
- Ingest raw review CSV exports into the search index
- Ask quantitative and qualitative questions from the terminal
- Inspect the persisted index schema`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logLevel := cfg.Observability.LogLevel
		if verbose {
			logLevel = "debug"
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       logLevel,
			Format:      logFormat,
			ServiceName: "reviews-cli",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newSchemaCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
