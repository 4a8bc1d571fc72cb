package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gofrs/flock"
)

// Indexer fills in missing chunk embeddings, producing the pre-computed
// dataset the Store loads at runtime. It is the online counterpart of the
// offline PDF processing pipeline: chunk extraction happens elsewhere, this
// step only embeds.
type Indexer struct {
	embedder Embedder
	logger   *slog.Logger
}

// IndexStats summarizes one indexing run.
type IndexStats struct {
	Total    int // Chunks read from the input file
	Embedded int // Chunks embedded during this run
	Skipped  int // Chunks already embedded or without content
}

// NewIndexer creates an Indexer using the given embedder.
func NewIndexer(embedder Embedder, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{embedder: embedder, logger: logger}
}

// IndexFile reads chunks from inPath, embeds every chunk that has content but
// no embedding yet, and writes the full set to outPath. Chunks that already
// carry an embedding are copied through untouched, so re-running after a
// partial failure only embeds the remainder.
//
// The output file is guarded with an advisory lock so concurrent indexer runs
// cannot interleave writes.
func (ix *Indexer) IndexFile(ctx context.Context, inPath, outPath string) (IndexStats, error) {
	var stats IndexStats

	data, err := os.ReadFile(inPath)
	if err != nil {
		return stats, fmt.Errorf("reading chunks: %w", err)
	}

	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return stats, fmt.Errorf("parsing chunks: %w", err)
	}
	stats.Total = len(chunks)

	lock := flock.New(outPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return stats, fmt.Errorf("acquiring output lock: %w", err)
	}
	if !locked {
		return stats, fmt.Errorf("output file %s is locked by another indexer run", outPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			ix.logger.Warn("releasing output lock", "error", err)
		}
	}()

	for i := range chunks {
		c := &chunks[i]

		if len(c.Embedding) > 0 || strings.TrimSpace(c.Content) == "" {
			stats.Skipped++
			continue
		}

		vec, err := ix.embedder.Embed(ctx, c.Content)
		if err != nil {
			return stats, fmt.Errorf("embedding chunk %q: %w", c.ID, err)
		}
		c.Embedding = vec
		stats.Embedded++

		if stats.Embedded%25 == 0 {
			ix.logger.Info("indexing progress",
				"embedded", stats.Embedded,
				"total", stats.Total,
			)
		}
	}

	out, err := json.Marshal(chunks)
	if err != nil {
		return stats, fmt.Errorf("encoding chunks: %w", err)
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return stats, fmt.Errorf("writing output: %w", err)
	}

	ix.logger.Info("indexing complete",
		"total", stats.Total,
		"embedded", stats.Embedded,
		"skipped", stats.Skipped,
		"output", outPath,
	)
	return stats, nil
}
