package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/civilllm/civilllm/internal/app"
	"github.com/civilllm/civilllm/internal/config"
	"github.com/civilllm/civilllm/internal/rag"
)

var indexOut string

var indexCmd = &cobra.Command{
	Use:   "index <chunks.json>",
	Short: "Pre-compute embeddings for a chunk dataset",
	Long: `Index reads a chunk dataset produced by the PDF processing pipeline,
embeds every chunk that does not already carry an embedding, and writes
the result. Re-running after a partial failure resumes where it stopped.

Requires OPENAI_API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex(cmd, args[0])
	},
}

func init() {
	indexCmd.Flags().StringVarP(&indexOut, "out", "o", "", "output path (default: <input>_with_embeddings.json)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, inPath string) error {
	logger := initLogger()

	if !config.Configured() {
		return errors.New("OPENAI_API_KEY is required for indexing")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := app.Setup(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	outPath := indexOut
	if outPath == "" {
		outPath = strings.TrimSuffix(inPath, ".json") + "_with_embeddings.json"
	}

	indexer := rag.NewIndexer(a.Embedder, logger)
	stats, err := indexer.IndexFile(cmd.Context(), inPath, outPath)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", inPath, err)
	}

	fmt.Printf("Indexed %s: %d chunks (%d embedded, %d skipped) -> %s\n",
		inPath, stats.Total, stats.Embedded, stats.Skipped, outPath)
	return nil
}
