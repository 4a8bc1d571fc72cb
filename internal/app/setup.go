// Package app wires configuration, Genkit, the knowledge store, and the chat
// service into one dependency graph shared by the CLI commands.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"

	"github.com/civilllm/civilllm/internal/chat"
	"github.com/civilllm/civilllm/internal/config"
	"github.com/civilllm/civilllm/internal/rag"
)

// App holds the initialized application dependencies.
//
// Chat is nil when no OpenAI API key is configured; the HTTP layer turns
// that into 503 responses instead of refusing to start, so health probes and
// the knowledge endpoints stay reachable.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Genkit    *genkit.Genkit
	Embedder  rag.Embedder
	Store     *rag.Store
	Retriever *rag.Retriever
	Chat      *chat.Service
}

// Setup initializes the full dependency graph from configuration.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if !config.Configured() {
		logger.Warn("OPENAI_API_KEY not set, model and retrieval are disabled")
		a.Genkit = genkit.Init(ctx)
		a.Store = rag.NewStore(cfg.DataDir, nil, logger)
		a.Retriever = rag.NewRetriever(a.Store, cfg.MinSimilarity, logger)
		return a, nil
	}

	// The OpenAI plugin reads OPENAI_API_KEY from the environment and
	// auto-registers its models and embedders.
	g := genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with openai provider")
	}
	a.Genkit = g
	logger.Info("initialized Genkit with openai provider", "model", cfg.ModelName)

	embedder := genkit.LookupEmbedder(g, api.NewName("openai", cfg.EmbedderModel))
	if embedder == nil {
		return nil, errors.New("embedder model not found: " + cfg.EmbedderModel)
	}
	a.Embedder = rag.NewGenkitEmbedder(embedder)

	a.Store = rag.NewStore(cfg.DataDir, a.Embedder, logger)
	a.Retriever = rag.NewRetriever(a.Store, cfg.MinSimilarity, logger)

	svc, err := chat.New(chat.Config{
		Genkit:      g,
		Retriever:   a.Retriever,
		Logger:      logger,
		ModelName:   cfg.ModelName,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		TopK:        cfg.TopK,
		RAGEnabled:  cfg.RAGEnabled,
	})
	if err != nil {
		return nil, err
	}
	a.Chat = svc

	return a, nil
}
