package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
)

// mockAIEmbedder is a minimal ai.Embedder for testing the Genkit adapter.
type mockAIEmbedder struct {
	lastInput string
	err       error
	empty     bool
}

func (m *mockAIEmbedder) Name() string {
	return "mock-embedder"
}

func (m *mockAIEmbedder) Register(_ api.Registry) {
	// No-op for testing
}

func (m *mockAIEmbedder) Embed(_ context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.empty {
		return &ai.EmbedResponse{}, nil
	}
	if len(req.Input) > 0 {
		m.lastInput = req.Input[0].Content[0].Text
	}
	return &ai.EmbedResponse{
		Embeddings: []*ai.Embedding{
			{Embedding: []float32{0.5, 1.5, 2.5}},
		},
	}, nil
}

func TestGenkitEmbedder_Embed(t *testing.T) {
	mock := &mockAIEmbedder{}
	e := NewGenkitEmbedder(mock)

	vec, err := e.Embed(context.Background(), "minimum grade of concrete")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	want := []float64{0.5, 1.5, 2.5}
	if len(vec) != len(want) {
		t.Fatalf("len(vec) = %d, want %d", len(vec), len(want))
	}
	for i := range want {
		if vec[i] != want[i] {
			t.Errorf("vec[%d] = %v, want %v", i, vec[i], want[i])
		}
	}
}

func TestGenkitEmbedder_Embed_Truncates(t *testing.T) {
	mock := &mockAIEmbedder{}
	e := NewGenkitEmbedder(mock)

	long := strings.Repeat("अ", maxEmbedChars+500)
	if _, err := e.Embed(context.Background(), long); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	// Truncation counts runes, not bytes.
	if got := len([]rune(mock.lastInput)); got != maxEmbedChars {
		t.Errorf("embedder received %d runes, want %d", got, maxEmbedChars)
	}
}

func TestGenkitEmbedder_Embed_Error(t *testing.T) {
	mock := &mockAIEmbedder{err: errors.New("quota exceeded")}
	e := NewGenkitEmbedder(mock)

	_, err := e.Embed(context.Background(), "query")
	if !errors.Is(err, ErrEmbedding) {
		t.Errorf("Embed() error = %v, want ErrEmbedding", err)
	}
}

func TestGenkitEmbedder_Embed_EmptyResponse(t *testing.T) {
	mock := &mockAIEmbedder{empty: true}
	e := NewGenkitEmbedder(mock)

	_, err := e.Embed(context.Background(), "query")
	if !errors.Is(err, ErrEmbedding) {
		t.Errorf("Embed() error = %v, want ErrEmbedding", err)
	}
}
