package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Retriever orchestrates the store and embedder to produce a cited context
// block for one query.
type Retriever struct {
	store         *Store
	minSimilarity float64
	logger        *slog.Logger
}

// NewRetriever creates a Retriever over the given store.
func NewRetriever(store *Store, minSimilarity float64, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		store:         store,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// RetrieveContext retrieves relevant context for a query.
//
// Every failure in the chain (load, embed, rank) degrades to an empty Context:
// retrieval is an enhancement, never a hard dependency for answering. Only
// chunks whose content exceeds the minimum length contribute a source block
// and a citation; the source index always reflects rank position, so a
// skipped short chunk does not renumber the blocks after it.
func (r *Retriever) RetrieveContext(ctx context.Context, query, domain string, topK int) Context {
	r.store.Load(domain)

	results, err := r.store.Search(ctx, query, topK, r.minSimilarity)
	if err != nil {
		r.logger.Warn("context retrieval failed", "domain", domain, "error", err)
		return Context{}
	}

	if len(results) == 0 {
		return Context{}
	}

	var parts []string
	var citations []string

	for i, res := range results {
		if len(res.Chunk.Content) > minContentChars {
			parts = append(parts, fmt.Sprintf("[Source %d: %s]\n%s\n", i+1, res.Citation, res.Chunk.Content))
			citations = append(citations, res.Citation)
		}
	}

	r.logger.Debug("retrieved context",
		"domain", domain,
		"chunks", len(results),
		"with_content", len(citations),
	)

	return Context{
		RetrievedChunks: results,
		ContextText:     strings.Join(parts, "\n---\n\n"),
		Citations:       citations,
	}
}
