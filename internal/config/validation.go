package config

import (
	"fmt"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}

	// Temperature range: 0.0 (deterministic) to 2.0 (maximum creativity)
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.Temperature)
	}

	// MaxTokens range: chat completion output cap
	if c.MaxTokens < 1 || c.MaxTokens > 16384 {
		return fmt.Errorf("%w: must be between 1 and 16,384, got %d", ErrInvalidMaxTokens, c.MaxTokens)
	}

	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model cannot be empty", ErrInvalidEmbedderModel)
	}

	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir cannot be empty", ErrInvalidDataDir)
	}

	if c.TopK < 1 || c.TopK > 20 {
		return fmt.Errorf("%w: must be between 1 and 20, got %d", ErrInvalidTopK, c.TopK)
	}

	// Cosine similarity is bounded by [-1, 1]; a floor of 1 would reject everything.
	if c.MinSimilarity < -1.0 || c.MinSimilarity >= 1.0 {
		return fmt.Errorf("%w: must be in [-1.0, 1.0), got %.2f", ErrInvalidMinSimilarity, c.MinSimilarity)
	}

	if c.RateLimitWindowMS < 0 {
		return fmt.Errorf("%w: rate_limit_window_ms cannot be negative, got %d", ErrInvalidRateLimit, c.RateLimitWindowMS)
	}
	if c.RateLimitMaxRequests < 0 {
		return fmt.Errorf("%w: rate_limit_max_requests cannot be negative, got %d", ErrInvalidRateLimit, c.RateLimitMaxRequests)
	}

	return nil
}
