package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/notetasks/internal/model"
)

// mockProcessor implements NoteProcessor
type mockProcessor struct {
	calls int32
}

func (m *mockProcessor) ProcessNote(ctx context.Context, path string) model.NoteOutcome {
	atomic.AddInt32(&m.calls, 1)
	// Later notes finish first so ordering is not an accident of timing
	if strings.HasSuffix(path, "a.md") {
		time.Sleep(20 * time.Millisecond)
	}
	if strings.Contains(path, "broken") {
		return model.NoteOutcome{Path: path, Err: errors.New("read failed")}
	}
	return model.NoteOutcome{
		Path:      path,
		Extracted: 1,
		Added:     []model.AddedTask{{Text: "task from " + path, Note: path}},
	}
}

func TestBatchProcessor_ProcessNotes(t *testing.T) {
	processor := &mockProcessor{}
	batch := NewBatchProcessor(processor, 3)

	paths := []string{"/notes/a.md", "/notes/b.md", "/notes/broken.md", "/notes/c.md"}
	outcomes := batch.ProcessNotes(context.Background(), paths)

	if len(outcomes) != len(paths) {
		t.Fatalf("expected %d outcomes, got %d", len(paths), len(outcomes))
	}
	for i, o := range outcomes {
		if o.Path != paths[i] {
			t.Errorf("outcome %d: expected path %s, got %s", i, paths[i], o.Path)
		}
	}
	if outcomes[2].Err == nil {
		t.Error("expected error for broken note")
	}
	if outcomes[0].Err != nil || outcomes[3].Err != nil {
		t.Error("unexpected error for healthy notes")
	}
	if atomic.LoadInt32(&processor.calls) != int32(len(paths)) {
		t.Errorf("expected %d calls, got %d", len(paths), processor.calls)
	}
}

func TestBatchProcessor_ProcessNotes_Empty(t *testing.T) {
	batch := NewBatchProcessor(&mockProcessor{}, 2)
	outcomes := batch.ProcessNotes(context.Background(), nil)
	if len(outcomes) != 0 {
		t.Errorf("expected no outcomes, got %d", len(outcomes))
	}
}

func TestBatchProcessor_ProcessNotes_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := NewBatchProcessor(&mockProcessor{}, 1)
	paths := []string{"/notes/a.md", "/notes/b.md", "/notes/c.md"}
	outcomes := batch.ProcessNotes(ctx, paths)

	if len(outcomes) != len(paths) {
		t.Fatalf("expected %d outcomes, got %d", len(paths), len(outcomes))
	}
	for i, o := range outcomes {
		if o.Path != paths[i] {
			t.Errorf("outcome %d has path %q", i, o.Path)
		}
	}
}

// cancellingProcessor cancels the run while handling its first note
type cancellingProcessor struct {
	cancel context.CancelFunc
	calls  int32
}

func (c *cancellingProcessor) ProcessNote(ctx context.Context, path string) model.NoteOutcome {
	if atomic.AddInt32(&c.calls, 1) == 1 {
		c.cancel()
	}
	return model.NoteOutcome{Path: path}
}

func TestBatchProcessor_ProcessNotes_CancelledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processor := &cancellingProcessor{cancel: cancel}
	batch := NewBatchProcessor(processor, 1)

	paths := make([]string, 20)
	for i := range paths {
		paths[i] = fmt.Sprintf("/notes/%02d.md", i)
	}

	done := make(chan []model.NoteOutcome)
	go func() { done <- batch.ProcessNotes(ctx, paths) }()

	var outcomes []model.NoteOutcome
	select {
	case outcomes = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ProcessNotes did not return after cancellation")
	}

	if len(outcomes) != len(paths) {
		t.Fatalf("expected %d outcomes, got %d", len(paths), len(outcomes))
	}
	if n := atomic.LoadInt32(&processor.calls); n != 1 {
		t.Errorf("expected queued notes to be dropped after cancel, got %d calls", n)
	}
	for i := 1; i < len(paths); i++ {
		if !errors.Is(outcomes[i].Err, context.Canceled) {
			t.Errorf("outcome %d: expected context.Canceled, got %v", i, outcomes[i].Err)
		}
		if outcomes[i].Path != paths[i] {
			t.Errorf("outcome %d has path %q", i, outcomes[i].Path)
		}
	}
}

func TestNoteResult_GetError(t *testing.T) {
	r := &NoteResult{Outcome: model.NoteOutcome{Err: errors.New("boom")}}
	if r.GetError() == nil {
		t.Error("expected error")
	}

	r = &NoteResult{}
	if r.GetError() != nil {
		t.Error("expected no error")
	}
}
