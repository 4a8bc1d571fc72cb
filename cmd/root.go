// Package cmd implements the civilllm command line interface.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/civilllm/civilllm/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "civilllm",
	Short: "CivilLLM - AI assistant for civil engineering",
	Long: `CivilLLM answers civil engineering questions grounded in Indian Standard
codes. It serves a JSON chat API backed by retrieval over pre-embedded
IS code chunks.

Run "civilllm serve" to start the API server, or "civilllm index" to
pre-compute chunk embeddings.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// initLogger builds the process logger from the persistent flags and makes it
// the slog default.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level, JSON: true})
	slog.SetDefault(logger)
	return logger
}
