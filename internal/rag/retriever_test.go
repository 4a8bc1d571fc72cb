package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/civilllm/civilllm/internal/log"
)

func TestRetriever_RetrieveContext(t *testing.T) {
	longContent := strings.Repeat("Minimum cement content for moderate exposure shall be as per Table 5. ", 3)
	chunks := []Chunk{
		{
			ID:        "c1",
			Code:      "IS 456:2000",
			Clause:    "13.5",
			Title:     "Curing",
			Content:   longContent,
			Embedding: []float64{1, 0},
		},
		{
			ID:        "c2",
			Code:      "IS 456:2000",
			Clause:    "8.2.2",
			Content:   "Short.", // Below the content threshold
			Embedding: []float64{0.9, 0.43589},
		},
		{
			ID:        "c3",
			Code:      "IS 456:2000",
			Pages:     []int{42},
			Content:   longContent,
			Embedding: []float64{0.8, 0.6},
		},
	}

	store := newTestStore(chunks, &StaticEmbedder{Vector: []float64{1, 0}})
	r := NewRetriever(store, 0.3, log.NewNop())

	rc := r.RetrieveContext(context.Background(), "curing period for concrete", "rcc", 5)

	if rc.Empty() {
		t.Fatal("RetrieveContext() returned empty context")
	}
	if got := len(rc.RetrievedChunks); got != 3 {
		t.Errorf("len(RetrievedChunks) = %d, want 3", got)
	}

	// The short chunk contributes neither a block nor a citation.
	wantCitations := []string{
		"IS 456:2000, Clause 13.5 (Curing)",
		"IS 456:2000, Page 42",
	}
	if got := len(rc.Citations); got != len(wantCitations) {
		t.Fatalf("len(Citations) = %d, want %d", got, len(wantCitations))
	}
	for i, want := range wantCitations {
		if rc.Citations[i] != want {
			t.Errorf("Citations[%d] = %q, want %q", i, rc.Citations[i], want)
		}
	}

	// Source indices reflect rank position; the skipped rank-2 chunk leaves
	// a gap instead of renumbering.
	if !strings.Contains(rc.ContextText, "[Source 1: IS 456:2000, Clause 13.5 (Curing)]") {
		t.Errorf("ContextText missing source 1 header:\n%s", rc.ContextText)
	}
	if !strings.Contains(rc.ContextText, "[Source 3: IS 456:2000, Page 42]") {
		t.Errorf("ContextText missing source 3 header:\n%s", rc.ContextText)
	}
	if strings.Contains(rc.ContextText, "[Source 2:") {
		t.Errorf("ContextText includes a block for the short chunk:\n%s", rc.ContextText)
	}
	if !strings.Contains(rc.ContextText, "\n---\n\n") {
		t.Errorf("ContextText blocks not separated:\n%s", rc.ContextText)
	}
}

func TestRetriever_RetrieveContext_EmbedError(t *testing.T) {
	store := newTestStore([]Chunk{unitChunk("c1", 0.9)}, &StaticEmbedder{Err: errors.New("provider down")})
	r := NewRetriever(store, 0.3, log.NewNop())

	rc := r.RetrieveContext(context.Background(), "query", "rcc", 5)
	if !rc.Empty() {
		t.Errorf("RetrieveContext() = %+v, want empty context on embed failure", rc)
	}
}

func TestRetriever_RetrieveContext_EmptyStore(t *testing.T) {
	embedder := &StaticEmbedder{Vector: []float64{1, 0}}
	store := NewStore(t.TempDir(), embedder, log.NewNop())
	r := NewRetriever(store, 0.3, log.NewNop())

	rc := r.RetrieveContext(context.Background(), "query", "rcc", 5)
	if !rc.Empty() {
		t.Errorf("RetrieveContext() = %+v, want empty context", rc)
	}
	if embedder.Calls() != 0 {
		t.Errorf("embedder called %d times for empty store, want 0", embedder.Calls())
	}
}

func TestRetriever_RetrieveContext_AllBelowFloor(t *testing.T) {
	store := newTestStore([]Chunk{unitChunk("c1", 0.1)}, &StaticEmbedder{Vector: []float64{1, 0}})
	r := NewRetriever(store, 0.3, log.NewNop())

	rc := r.RetrieveContext(context.Background(), "query", "rcc", 5)
	if !rc.Empty() {
		t.Errorf("RetrieveContext() = %+v, want empty context when nothing clears the floor", rc)
	}
}
