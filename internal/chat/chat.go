// Package chat implements the question-answering service: it retrieves IS
// code context, builds the system prompt, and generates an answer through
// Genkit.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/civilllm/civilllm/internal/rag"
)

const (
	// maxHistoryMessages is how many trailing history messages are sent to
	// the model; older turns are dropped to bound prompt size.
	maxHistoryMessages = 6

	// fallbackResponseMessage is returned when the model produces an empty response.
	fallbackResponseMessage = "I apologize, but I couldn't generate a response. Please try rephrasing your question."
)

// Sentinel errors for chat operations.
var (
	// ErrExecutionFailed indicates the model call failed.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrModelUnavailable indicates the service has no configured model.
	ErrModelUnavailable = errors.New("model unavailable")
)

// Message is one prior conversation turn.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Request is one question with its conversational context.
type Request struct {
	Question string
	DomainID string
	History  []Message
}

// Response is a generated answer with the citations that grounded it.
type Response struct {
	Answer    string
	Model     string
	Citations []string
}

// Config contains all required parameters for the chat service.
type Config struct {
	Genkit    *genkit.Genkit
	Retriever *rag.Retriever
	Logger    *slog.Logger

	ModelName   string // Provider-qualified model name, e.g. "openai/gpt-4o-mini"
	Temperature float64
	MaxTokens   int
	TopK        int // Chunks retrieved per question
	RAGEnabled  bool

	// RateLimiter throttles upstream model calls (nil = use default).
	RateLimiter *rate.Limiter
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if cfg.Retriever == nil {
		return errors.New("retriever is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.ModelName == "" {
		return fmt.Errorf("%w: model name is required", ErrModelUnavailable)
	}
	return nil
}

// Service answers civil engineering questions, stateless per request.
//
// All configuration is captured immutably at construction, so a single
// Service is safe for concurrent use.
type Service struct {
	g           *genkit.Genkit
	retriever   *rag.Retriever
	logger      *slog.Logger
	rateLimiter *rate.Limiter

	modelName   string
	temperature float64
	maxTokens   int
	topK        int
	ragEnabled  bool

	// generate is swapped out in tests.
	generate func(ctx context.Context, g *genkit.Genkit, opts ...ai.GenerateOption) (*ai.ModelResponse, error)
}

// New creates a chat Service with required configuration.
func New(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = rag.DefaultTopK
	}

	// Default: 10 requests/sec sustained, burst of 30
	rl := cfg.RateLimiter
	if rl == nil {
		rl = rate.NewLimiter(10, 30)
	}

	return &Service{
		g:           cfg.Genkit,
		retriever:   cfg.Retriever,
		logger:      cfg.Logger,
		rateLimiter: rl,
		modelName:   cfg.ModelName,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		topK:        topK,
		ragEnabled:  cfg.RAGEnabled,
		generate:    genkit.Generate,
	}, nil
}

// Ask answers one question.
//
// Retrieval failures degrade to answering without context; only the model
// call itself can fail the request. Cancelling ctx aborts retrieval and
// generation.
func (s *Service) Ask(ctx context.Context, req Request) (Response, error) {
	domainID := req.DomainID
	if !DomainKnown(domainID) {
		domainID = DefaultDomainID
	}

	var rc rag.Context
	if s.ragEnabled && rag.DomainSupported(domainID) {
		rc = s.retriever.RetrieveContext(ctx, req.Question, domainID, s.topK)
	}

	systemPrompt := rag.BuildPrompt(DomainContext(domainID), rc)
	messages := buildMessages(req.History, req.Question)

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("%w: rate limiter: %v", ErrExecutionFailed, err)
	}

	resp, err := s.generate(ctx, s.g,
		ai.WithModelName(s.modelName),
		ai.WithSystem(systemPrompt),
		ai.WithMessages(messages...),
		ai.WithConfig(&ai.GenerationCommonConfig{
			Temperature:     s.temperature,
			MaxOutputTokens: s.maxTokens,
		}),
	)
	if err != nil {
		s.logger.Error("model generation failed",
			"model", s.modelName,
			"domain", domainID,
			"error", err,
		)
		return Response{}, fmt.Errorf("%w: %v", ErrExecutionFailed, err)
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		s.logger.Warn("model returned empty response", "domain", domainID)
		answer = fallbackResponseMessage
	}

	answer += rag.FormatCitations(rc.Citations)

	s.logger.Debug("answered question",
		"domain", domainID,
		"history", len(req.History),
		"citations", len(rc.Citations),
	)

	return Response{
		Answer:    answer,
		Model:     s.modelName,
		Citations: rc.Citations,
	}, nil
}

// buildMessages converts the trailing history plus the current question into
// model messages. Roles other than "assistant" map to the user role.
func buildMessages(history []Message, question string) []*ai.Message {
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}

	messages := make([]*ai.Message, 0, len(history)+1)
	for _, m := range history {
		if m.Role == "assistant" {
			messages = append(messages, ai.NewModelMessage(ai.NewTextPart(m.Content)))
		} else {
			messages = append(messages, ai.NewUserMessage(ai.NewTextPart(m.Content)))
		}
	}
	return append(messages, ai.NewUserMessage(ai.NewTextPart(question)))
}
