package api

import (
	"log/slog"
	"net/http"

	"github.com/civilllm/civilllm/internal/chat"
	"github.com/civilllm/civilllm/internal/rag"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger      *slog.Logger
	ChatService *chat.Service // Optional: nil returns 503 on chat requests
	Store       *rag.Store    // Optional: nil disables knowledge stats in /ready
	CORSOrigins []string      // Allowed origins for CORS
	IsDev       bool          // Disables HSTS
	TrustProxy  bool          // Trust X-Real-IP/X-Forwarded-For headers (behind reverse proxy)

	// Rate limits; zero values use the chat presets.
	RateAnonymous     LimitConfig
	RateAuthenticated LimitConfig
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ch := &chatHandler{
		service: cfg.ChatService,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat", ch.send)

	anon := cfg.RateAnonymous
	if anon.MaxRequests <= 0 || anon.Window <= 0 {
		anon = LimitChatAnonymous
	}
	auth := cfg.RateAuthenticated
	if auth.MaxRequests <= 0 || auth.Window <= 0 {
		auth = LimitChatAuthenticated
	}
	rl := newRateLimiter()

	// Build middleware stack (outermost first):
	//   Recovery → RequestID → Logging → CORS → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log attributes.
	// CORS must be before RateLimit so preflight OPTIONS gets proper CORS headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, anon, auth, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	isDev := cfg.IsDev
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w, isDev)
		handler.ServeHTTP(w, r)
	})

	// Use a top-level mux to separate health probes from the middleware stack
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Store, cfg.ChatService != nil))
	topMux.Handle("/", final)

	return &Server{mux: topMux}
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
