package app

import (
	"context"
	"testing"

	"github.com/civilllm/civilllm/internal/config"
	"github.com/civilllm/civilllm/internal/log"
)

func TestSetup_NilConfig(t *testing.T) {
	if _, err := Setup(context.Background(), nil, log.NewNop()); err == nil {
		t.Error("Setup(nil config) error = nil")
	}
}

func TestSetup_Unconfigured(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	a, err := Setup(context.Background(), cfg, log.NewNop())
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if a.Chat != nil {
		t.Error("Chat service created without an API key")
	}
	if a.Store == nil || a.Retriever == nil {
		t.Error("knowledge store not initialized")
	}
	if a.Genkit == nil {
		t.Error("genkit not initialized")
	}
}

func TestSetup_PlaceholderKeyTreatedAsUnconfigured(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "your-api-key-here")

	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	a, err := Setup(context.Background(), cfg, log.NewNop())
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if a.Chat != nil {
		t.Error("Chat service created with a placeholder API key")
	}
}
