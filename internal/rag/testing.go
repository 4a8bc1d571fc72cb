package rag

import (
	"context"
	"sync"
)

// StaticEmbedder is an Embedder returning a fixed vector (or error) and
// counting calls. Tests use the call count to assert that searches against an
// empty store never spend an embedding call.
type StaticEmbedder struct {
	Vector []float64
	Err    error

	mu    sync.Mutex
	calls int
}

// Embed implements Embedder.
func (e *StaticEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if e.Err != nil {
		return nil, e.Err
	}
	return e.Vector, nil
}

// Calls returns how many times Embed was invoked.
func (e *StaticEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
