package suggest

import (
	"errors"
	"strings"
)

// Config holds configuration for suggestion providers.
type Config struct {
	// Host is the base URL of the OpenAI-compatible chat service used by
	// the LLM provider. Example: "http://localhost:11434/v1"
	Host string

	// Model is the chat model identifier. Example: "qwen2.5:3b"
	Model string

	// MaxSuggestions caps how many alternatives a search response carries.
	MaxSuggestions int

	// MinSimilarity is the Jaro-Winkler score below which a dictionary
	// candidate is discarded. Range 0..1.
	MinSimilarity float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the chat service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) { c.Host = host }
}

// WithModel sets the chat model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) { c.Model = model }
}

// WithMaxSuggestions caps the number of returned alternatives.
func WithMaxSuggestions(n int) ConfigOption {
	return func(c *Config) { c.MaxSuggestions = n }
}

// WithMinSimilarity sets the dictionary similarity cutoff.
func WithMinSimilarity(s float64) ConfigOption {
	return func(c *Config) { c.MinSimilarity = s }
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible service.
func DefaultConfig() *Config {
	return &Config{
		Host:           "http://localhost:11434/v1",
		Model:          "qwen2.5:3b",
		MaxSuggestions: 5,
		MinSimilarity:  0.86,
	}
}

// NewConfig creates a Config with defaults and applies the given options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize puts the configuration into canonical form, adding the /v1
// suffix OpenAI-compatible APIs expect.
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
}

// Validate checks that the configuration is usable. It normalizes first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("suggest config: Host is required")
	}
	if c.Model == "" {
		return errors.New("suggest config: Model is required")
	}
	if c.MaxSuggestions < 1 {
		return errors.New("suggest config: MaxSuggestions must be positive")
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return errors.New("suggest config: MinSimilarity must be between 0 and 1")
	}
	return nil
}
