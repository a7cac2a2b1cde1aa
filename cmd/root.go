package cmd

import (
	"fmt"
	"os"

	"github.com/killallgit/podcast-analyzer/pkg/config"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "podcast-analyzer",
	Short: "Podcast Analyzer API server",
	Long: `Podcast Analyzer - podcast ingestion and AI analysis service

Subscribes to podcast feeds, transcribes and analyzes new episodes in the
background, and synthesizes multi-episode digests with generated artwork.

Features:
  • Feed subscriptions with periodic refresh
  • Episode transcription (published transcripts or Whisper)
  • Structured analysis with an OpenAI-compatible model
  • Digests over a time window, with artwork
  • Stuck job recovery`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(setupLogging)

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// loadConfig loads the configuration when a command needs it. Only the
// commands that touch the database or external services call it.
func loadConfig() (*config.Config, error) {
	if err := config.Init(); err != nil {
		return nil, fmt.Errorf("error initializing config: %w", err)
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
