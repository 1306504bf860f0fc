// Package llm sends note content to a language model and turns its reply
// into structured tasks.
package llm

import (
	"context"

	"github.com/ppiankov/notetasks/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a system prompt and note content and returns the raw reply
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Ping checks that the provider is configured and reachable
	Ping(ctx context.Context) error
}

// CompletionRequest is one extraction call
type CompletionRequest struct {
	// SystemPrompt instructs the model how to extract tasks
	SystemPrompt string

	// Content is the note text
	Content string

	// Model overrides the configured model when set
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// CompletionResponse is the model's raw answer
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "ollama", "openai", "anthropic"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// ContextWindow is Ollama's num_ctx
	ContextWindow int

	Temperature float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:      "ollama",
		Timeout:       120,
		MaxTokens:     4000,
		ContextWindow: 32000,
		Temperature:   0.1,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	cfg := Config{
		Provider:      c.Provider,
		Model:         c.Model,
		APIKey:        c.APIKey,
		BaseURL:       c.BaseURL,
		Timeout:       c.Timeout,
		MaxTokens:     c.MaxTokens,
		ContextWindow: c.ContextWindow,
		Temperature:   c.Temperature,
		HTTPProxy:     c.HTTPProxy,
		HTTPSProxy:    c.HTTPSProxy,
		NoProxy:       c.NoProxy,
	}
	if cfg.Model == "" {
		cfg.Model = model.DefaultModel(c.Provider)
	}
	return cfg
}

func pickModel(req, configured, fallback string) string {
	if req != "" {
		return req
	}
	if configured != "" {
		return configured
	}
	return fallback
}

func pickMaxTokens(req, configured int) int {
	if req > 0 {
		return req
	}
	if configured > 0 {
		return configured
	}
	return 4000
}
