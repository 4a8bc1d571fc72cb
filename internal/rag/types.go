package rag

import "fmt"

// Chunk is a retrievable slice of an IS code document with citation metadata
// and an optional pre-computed embedding. Chunks are produced offline (see
// Indexer) and never mutated after load.
//
// The JSON field names match the chunk datasets emitted by the PDF
// processing pipeline.
type Chunk struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`   // Full code designation, e.g. "IS 456:2000"
	Clause     string    `json:"clause"` // Empty when the chunk is not clause-scoped
	Title      string    `json:"title"`
	Level      int       `json:"level"`
	Pages      []int     `json:"pages"`
	Content    string    `json:"content"`
	HasTables  bool      `json:"has_tables"`
	TableCount int       `json:"table_count"`
	CharCount  int       `json:"char_count"`
	Embedding  []float64 `json:"embedding,omitempty"` // nil = excluded from ranking
}

// Citation formats the chunk's source reference.
// Clause-scoped chunks cite the clause (with title when known); otherwise the
// first page is cited.
func (c *Chunk) Citation() string {
	if c.Clause != "" {
		if c.Title != "" {
			return fmt.Sprintf("%s, Clause %s (%s)", c.Code, c.Clause, c.Title)
		}
		return fmt.Sprintf("%s, Clause %s", c.Code, c.Clause)
	}
	if len(c.Pages) > 0 {
		return fmt.Sprintf("%s, Page %d", c.Code, c.Pages[0])
	}
	return c.Code
}

// SearchResult is a ranked chunk produced per query and consumed immediately
// by the retriever; it is never persisted.
type SearchResult struct {
	Chunk      *Chunk
	Similarity float64 // Cosine similarity in [-1, 1]
	Citation   string
}

// Context is the assembled retrieval result for one query. Citations runs
// parallel to the chunks that contributed context text, so
// len(Citations) <= len(RetrievedChunks).
type Context struct {
	RetrievedChunks []SearchResult
	ContextText     string
	Citations       []string
}

// Empty reports whether retrieval produced no usable context.
func (c Context) Empty() bool {
	return c.ContextText == "" || len(c.Citations) == 0
}
