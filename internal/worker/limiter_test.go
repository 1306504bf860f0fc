package worker

import (
	"context"
	"testing"
	"time"
)

// ready reports whether a call for key may proceed almost immediately
func ready(l *Limiter, key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	return l.Wait(ctx, key) == nil
}

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(time.Second)
	if limiter.defaultBurst != 1 {
		t.Errorf("expected burst 1, got %d", limiter.defaultBurst)
	}

	if !ready(NewLimiter(0), "ollama") || !ready(NewLimiter(-1), "ollama") {
		t.Error("expected non-positive interval to disable pacing")
	}
}

func TestLimiter_FromSeconds(t *testing.T) {
	limiter := NewLimiterFromSeconds(0.5)
	if !ready(limiter, "openai") {
		t.Fatal("first call should be allowed")
	}
	if ready(limiter, "openai") {
		t.Error("second immediate call should be paced")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0)
	for i := 0; i < 100; i++ {
		if !ready(limiter, "ollama") {
			t.Fatalf("call %d was blocked without pacing", i)
		}
	}
}

func TestLimiter_PerKey(t *testing.T) {
	limiter := NewLimiter(time.Hour)

	if !ready(limiter, "openai") {
		t.Error("first openai call should be allowed")
	}
	if ready(limiter, "openai") {
		t.Error("second openai call should be paced")
	}
	if !ready(limiter, "anthropic") {
		t.Error("other keys should have their own budget")
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(50 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "openai"); err != nil {
		t.Fatalf("second wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("expected paced wait, returned after %v", elapsed)
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(time.Hour)
	_ = ready(limiter, "openai")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "openai"); err == nil {
		t.Error("expected error when the wait exceeds the deadline")
	}
}
