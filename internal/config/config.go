// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.civilllm/config.yaml or ./config.yaml)
//  3. Default values
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidTopK indicates the retrieval top-K value is out of range.
	ErrInvalidTopK = errors.New("invalid top k")

	// ErrInvalidMinSimilarity indicates the similarity floor is out of range.
	ErrInvalidMinSimilarity = errors.New("invalid min similarity")

	// ErrInvalidDataDir indicates the chunk data directory is invalid.
	ErrInvalidDataDir = errors.New("invalid data directory")

	// ErrInvalidRateLimit indicates a rate limit setting is out of range.
	ErrInvalidRateLimit = errors.New("invalid rate limit")
)

// Defaults for chat generation. The original deployment runs gpt-4o-mini at
// temperature 0.7 with a 2000-token answer cap.
const (
	DefaultModelName     = "openai/gpt-4o-mini"
	DefaultEmbedderModel = "text-embedding-3-small"
	DefaultTemperature   = 0.7
	DefaultMaxTokens     = 2000
)

// Config stores application configuration.
//
// SECURITY: The OpenAI API key is never held here; the Genkit OpenAI plugin
// reads OPENAI_API_KEY directly from the environment. Configured() reports
// whether it is usable without exposing its value.
type Config struct {
	// AI model configuration
	ModelName   string  `mapstructure:"model_name"`  // Provider-qualified model (e.g. "openai/gpt-4o-mini")
	Temperature float64 `mapstructure:"temperature"` // Generation temperature, 0.0-2.0
	MaxTokens   int     `mapstructure:"max_tokens"`  // Answer token cap

	// Retrieval configuration
	EmbedderModel string  `mapstructure:"embedder_model"` // Embedder model name (unqualified)
	DataDir       string  `mapstructure:"data_dir"`       // Directory holding per-domain chunk files
	RAGEnabled    bool    `mapstructure:"rag_enabled"`
	TopK          int     `mapstructure:"top_k"`          // Chunks retrieved per query
	MinSimilarity float64 `mapstructure:"min_similarity"` // Cosine similarity floor

	// Server configuration
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy"` // Trust X-Real-IP/X-Forwarded-For (behind reverse proxy)
	Dev         bool     `mapstructure:"dev"`         // Dev mode: no HSTS header

	// Rate limiting overrides for the chat endpoint. Zero values fall back
	// to the built-in presets (anonymous 5/min, authenticated 20/min).
	RateLimitWindowMS    int `mapstructure:"rate_limit_window_ms"`
	RateLimitMaxRequests int `mapstructure:"rate_limit_max_requests"`
}

// Default returns a Config holding only default values, bypassing config
// files and environment overrides. Use Load in production paths.
func Default() *Config {
	return &Config{
		ModelName:     DefaultModelName,
		Temperature:   DefaultTemperature,
		MaxTokens:     DefaultMaxTokens,
		EmbedderModel: DefaultEmbedderModel,
		DataDir:       "data",
		RAGEnabled:    true,
		TopK:          5,
		MinSimilarity: 0.3,
		Addr:          ":8080",
		CORSOrigins:   []string{"http://localhost:3000"},
	}
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".civilllm")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	viper.SetDefault("model_name", DefaultModelName)
	viper.SetDefault("temperature", DefaultTemperature)
	viper.SetDefault("max_tokens", DefaultMaxTokens)

	viper.SetDefault("embedder_model", DefaultEmbedderModel)
	viper.SetDefault("data_dir", "data")
	viper.SetDefault("rag_enabled", true)
	viper.SetDefault("top_k", 5)
	viper.SetDefault("min_similarity", 0.3)

	viper.SetDefault("addr", ":8080")
	viper.SetDefault("cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("trust_proxy", false)
	viper.SetDefault("dev", false)

	viper.SetDefault("rate_limit_window_ms", 0)
	viper.SetDefault("rate_limit_max_requests", 0)
}

// bindEnvVariables binds environment variable overrides explicitly.
func bindEnvVariables() {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("model_name", "CIVILLLM_MODEL_NAME")
	mustBind("embedder_model", "CIVILLLM_EMBEDDER_MODEL")
	mustBind("data_dir", "CIVILLLM_DATA_DIR")
	mustBind("rag_enabled", "CIVILLLM_RAG_ENABLED")

	mustBind("addr", "CIVILLLM_ADDR")
	mustBind("cors_origins", "CIVILLLM_CORS_ORIGINS")
	mustBind("trust_proxy", "CIVILLLM_TRUST_PROXY")
	mustBind("dev", "CIVILLLM_DEV")

	mustBind("rate_limit_window_ms", "RATE_LIMIT_WINDOW_MS")
	mustBind("rate_limit_max_requests", "RATE_LIMIT_MAX_REQUESTS")

	// NOTE: OPENAI_API_KEY is read directly by the Genkit OpenAI plugin, not
	// via Viper. Configured() checks its presence.
}

// Configured reports whether the OpenAI API key is usable.
// Placeholder values from setup templates ("your-...", "change-...") count
// as unconfigured. Does NOT expose the key value.
func Configured() bool {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return false
	}
	return !strings.HasPrefix(key, "your-") && !strings.HasPrefix(key, "change-")
}

// RateLimitWindow returns the configured chat rate-limit window, or zero when
// the built-in presets should be used.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}
