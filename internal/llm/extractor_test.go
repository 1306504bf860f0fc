package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/notetasks/internal/cache"
	"github.com/ppiankov/notetasks/internal/model"
)

// MockProvider returns canned replies and records requests
type MockProvider struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []CompletionRequest
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &CompletionResponse{Text: m.text, Model: "mock-1", TokensUsed: 42}, nil
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return nil
}

func (m *MockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

type countingPacer struct {
	keys []string
	err  error
}

func (p *countingPacer) Wait(ctx context.Context, key string) error {
	p.keys = append(p.keys, key)
	return p.err
}

func testNote() *model.Note {
	return &model.Note{Path: "/notes/meeting.md", Title: "Meeting", Body: "Call Bob tomorrow"}
}

func TestExtractor_Extract(t *testing.T) {
	provider := &MockProvider{text: `[{"task": "Call Bob", "date_phrase": "tomorrow"}, "junk"]`}
	pacer := &countingPacer{}
	ex := NewExtractor(provider, "", WithPacer(pacer), WithModel("mock-1", 500))

	got, err := ex.Extract(context.Background(), testNote())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(got.Tasks) != 1 || got.Tasks[0].Text != "Call Bob" {
		t.Errorf("Unexpected tasks: %+v", got.Tasks)
	}
	if len(got.Invalid) != 1 {
		t.Errorf("Expected 1 invalid item, got %d", len(got.Invalid))
	}
	if got.Cached {
		t.Error("First extraction should not be cached")
	}
	if got.TokensUsed != 42 {
		t.Errorf("Expected 42 tokens, got %d", got.TokensUsed)
	}

	req := provider.requests[0]
	if req.SystemPrompt != DefaultPrompt {
		t.Error("Expected default prompt")
	}
	if req.Content != "# Meeting\n\nCall Bob tomorrow" {
		t.Errorf("Unexpected content: %q", req.Content)
	}
	if req.Model != "mock-1" || req.MaxTokens != 500 {
		t.Errorf("Unexpected model settings: %+v", req)
	}
	if len(pacer.keys) != 1 || pacer.keys[0] != "mock" {
		t.Errorf("Expected one pacer wait keyed by provider, got %v", pacer.keys)
	}
}

func TestExtractor_CachesParsedReplies(t *testing.T) {
	provider := &MockProvider{text: `[{"task": "Call Bob"}]`}
	c := cache.NewMemoryCache(time.Hour, time.Hour)
	ex := NewExtractor(provider, "Extract.", WithCache(c, time.Hour))

	for i := 0; i < 3; i++ {
		got, err := ex.Extract(context.Background(), testNote())
		if err != nil {
			t.Fatalf("Extract %d failed: %v", i, err)
		}
		if len(got.Tasks) != 1 {
			t.Fatalf("Extract %d: expected 1 task, got %d", i, len(got.Tasks))
		}
		if got.Cached != (i > 0) {
			t.Errorf("Extract %d: cached = %v", i, got.Cached)
		}
	}

	if provider.calls() != 1 {
		t.Errorf("Expected 1 provider call, got %d", provider.calls())
	}
}

func TestExtractor_DoesNotCacheInvalidReplies(t *testing.T) {
	provider := &MockProvider{text: "Sorry, I can't help with that."}
	c := cache.NewMemoryCache(time.Hour, time.Hour)
	ex := NewExtractor(provider, "Extract.", WithCache(c, time.Hour))

	if _, err := ex.Extract(context.Background(), testNote()); !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("Expected ErrInvalidResponse, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", c.Len())
	}

	provider.text = `[]`
	if _, err := ex.Extract(context.Background(), testNote()); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if provider.calls() != 2 {
		t.Errorf("Expected provider to be called again, got %d calls", provider.calls())
	}
}

func TestExtractor_Errors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("provider error", func(t *testing.T) {
		ex := NewExtractor(&MockProvider{err: boom}, "")
		if _, err := ex.Extract(context.Background(), testNote()); !errors.Is(err, boom) {
			t.Fatalf("Expected provider error, got %v", err)
		}
	})

	t.Run("pacer error", func(t *testing.T) {
		provider := &MockProvider{text: "[]"}
		ex := NewExtractor(provider, "", WithPacer(&countingPacer{err: context.Canceled}))
		if _, err := ex.Extract(context.Background(), testNote()); !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled, got %v", err)
		}
		if provider.calls() != 0 {
			t.Error("Provider must not be called when pacing fails")
		}
	})
}
