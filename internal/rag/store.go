package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Store holds one domain's pre-embedded chunks in memory and ranks them by
// cosine similarity against a query embedding.
//
// The store holds exactly one domain's data at a time: Load is idempotent and
// a second domain cannot be loaded without an explicit Reset. Chunks are
// immutable after load, so Search operates on a snapshot without holding the
// lock across the embedding call.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	dataDir  string
	embedder Embedder
	logger   *slog.Logger

	mu     sync.RWMutex
	chunks []Chunk
	domain string
	loaded bool
}

// NewStore creates a Store reading chunk datasets from dataDir.
func NewStore(dataDir string, embedder Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dataDir:  dataDir,
		embedder: embedder,
		logger:   logger,
	}
}

// Load loads the domain's chunk dataset into memory. Once a load has
// succeeded, subsequent calls are no-ops regardless of the domain argument;
// call Reset first to switch domains.
//
// A missing or unreadable dataset is a soft failure: it is logged, the store
// stays empty, and every search returns no results.
func (s *Store) Load(domain string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return
	}

	file, ok := chunkFiles[domain]
	if !ok {
		s.logger.Debug("no chunk dataset registered for domain", "domain", domain)
		return
	}

	path := filepath.Join(s.dataDir, file)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("pre-computed embeddings not found, retrieval disabled",
				"domain", domain,
				"path", path,
				"hint", "run: civilllm index <chunks.json>",
			)
		} else {
			s.logger.Error("reading chunk dataset", "domain", domain, "error", err)
		}
		return
	}

	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		s.logger.Error("parsing chunk dataset", "domain", domain, "path", path, "error", err)
		return
	}

	withEmbeddings := 0
	for i := range chunks {
		if len(chunks[i].Embedding) > 0 {
			withEmbeddings++
		}
	}

	s.chunks = chunks
	s.domain = domain
	s.loaded = true

	s.logger.Info("loaded chunk dataset",
		"domain", domain,
		"chunks", len(chunks),
		"with_embeddings", withEmbeddings,
	)
}

// Reset clears loaded state, permitting a different domain to be loaded next.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	s.domain = ""
	s.loaded = false
}

// Count returns the number of loaded chunks.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Domain returns the currently loaded domain, or "" when the store is empty.
func (s *Store) Domain() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domain
}

// Search ranks all loaded chunks against the query and returns at most topK
// results, each strictly above minSimilarity.
//
// The floor is applied after truncation to topK: a below-floor result inside
// the top K is dropped, not backfilled from the next-best candidate. This
// keeps the result count aligned with what the citation list reports.
//
// An empty store short-circuits to no results without spending an embedding
// call. Chunks without an embedding are skipped entirely, not scored as zero.
func (s *Store) Search(ctx context.Context, query string, topK int, minSimilarity float64) ([]SearchResult, error) {
	s.mu.RLock()
	chunks := s.chunks
	s.mu.RUnlock()

	if len(chunks) == 0 {
		s.logger.Debug("no chunks loaded, skipping search")
		return nil, nil
	}

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results := make([]SearchResult, 0, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		if len(c.Embedding) == 0 {
			continue
		}

		results = append(results, SearchResult{
			Chunk:      c,
			Similarity: cosineSimilarity(queryEmbedding, c.Embedding),
			Citation:   c.Citation(),
		})
	}

	// Stable sort keeps load order for equal scores, so repeated searches
	// are deterministic.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > topK {
		results = results[:topK]
	}

	if len(results) > 0 {
		s.logger.Debug("search ranked chunks",
			"top_similarity", fmt.Sprintf("%.3f", results[0].Similarity),
			"candidates", len(results),
		)
	}

	filtered := results[:0]
	for _, r := range results {
		if r.Similarity > minSimilarity {
			filtered = append(filtered, r)
		}
	}

	return filtered, nil
}

// cosineSimilarity computes the cosine similarity of two vectors: their dot
// product divided by the product of their Euclidean norms. Mismatched lengths
// and zero vectors score 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
