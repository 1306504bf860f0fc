package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/notetasks/internal/cache"
	"github.com/ppiankov/notetasks/internal/model"
)

// Pacer spaces out calls that share a key
type Pacer interface {
	Wait(ctx context.Context, key string) error
}

// Extraction is the outcome of one note's extraction
type Extraction struct {
	Tasks      []model.ExtractedTask
	Invalid    []string
	Cached     bool
	TokensUsed int
}

// Extractor turns notes into tasks using a Provider
type Extractor struct {
	provider  Provider
	prompt    string
	model     string
	maxTokens int

	cache    cache.Cache
	cacheTTL time.Duration
	pacer    Pacer
	logger   *zap.SugaredLogger
}

// ExtractorOption configures an Extractor
type ExtractorOption func(*Extractor)

// WithCache stores raw replies in c for ttl
func WithCache(c cache.Cache, ttl time.Duration) ExtractorOption {
	return func(e *Extractor) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

// WithPacer makes every provider call wait on p first
func WithPacer(p Pacer) ExtractorOption {
	return func(e *Extractor) { e.pacer = p }
}

// WithLogger sets the logger
func WithLogger(l *zap.SugaredLogger) ExtractorOption {
	return func(e *Extractor) { e.logger = l }
}

// WithModel overrides the provider's configured model and limits reply length
func WithModel(name string, maxTokens int) ExtractorOption {
	return func(e *Extractor) {
		e.model = name
		e.maxTokens = maxTokens
	}
}

// NewExtractor creates an extractor. An empty prompt selects DefaultPrompt.
func NewExtractor(provider Provider, prompt string, opts ...ExtractorOption) *Extractor {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	e := &Extractor{
		provider: provider,
		prompt:   prompt,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Provider returns the wrapped provider
func (e *Extractor) Provider() Provider {
	return e.provider
}

// Extract sends the note to the model and parses the reply. Replies are
// cached only after they parse.
func (e *Extractor) Extract(ctx context.Context, note *model.Note) (*Extraction, error) {
	content := note.LLMContent()
	key := cache.ResponseKey(e.provider.Name(), e.model, e.prompt, content)

	if e.cache != nil {
		if data, ok := e.cache.Get(key); ok {
			parsed, err := ParseTasks(string(data))
			if err == nil {
				e.logger.Debugw("Cache hit", "note", note.Path)
				return &Extraction{Tasks: parsed.Tasks, Invalid: parsed.Invalid, Cached: true}, nil
			}
			_ = e.cache.Delete(key)
		}
	}

	if e.pacer != nil {
		if err := e.pacer.Wait(ctx, e.provider.Name()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	e.logger.Debugw("Sending note to LLM", "note", note.Path, "provider", e.provider.Name(), "chars", len(content))
	resp, err := e.provider.Complete(ctx, CompletionRequest{
		SystemPrompt: e.prompt,
		Content:      content,
		Model:        e.model,
		MaxTokens:    e.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := ParseTasks(resp.Text)
	if err != nil {
		e.logger.Debugw("Unparseable LLM response", "note", note.Path, "response", resp.Text)
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(key, []byte(resp.Text), e.cacheTTL); err != nil {
			e.logger.Warnw("Failed to cache LLM response", "error", err)
		}
	}

	return &Extraction{
		Tasks:      parsed.Tasks,
		Invalid:    parsed.Invalid,
		TokensUsed: resp.TokensUsed,
	}, nil
}
