package worker

import (
	"context"

	"github.com/ppiankov/notetasks/internal/model"
)

// NoteProcessor handles a single note end to end
type NoteProcessor interface {
	ProcessNote(ctx context.Context, path string) model.NoteOutcome
}

// NoteJob represents one note to process
type NoteJob struct {
	Index     int
	Path      string
	Processor NoteProcessor
}

// Execute executes the note job
func (j *NoteJob) Execute(ctx context.Context) Result {
	return &NoteResult{
		Index:   j.Index,
		Outcome: j.Processor.ProcessNote(ctx, j.Path),
	}
}

// NoteResult represents the result of a note job
type NoteResult struct {
	Index   int
	Outcome model.NoteOutcome
}

// GetError returns the error from the note outcome
func (r *NoteResult) GetError() error {
	return r.Outcome.Err
}

// BatchProcessor processes many notes concurrently
type BatchProcessor struct {
	processor   NoteProcessor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor NoteProcessor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessNotes processes the notes and returns one outcome per path, in
// input order. Notes never started because ctx was cancelled carry ctx.Err().
func (b *BatchProcessor) ProcessNotes(ctx context.Context, paths []string) []model.NoteOutcome {
	if len(paths) == 0 {
		return []model.NoteOutcome{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	cancelled := false
	for i, path := range paths {
		if !pool.Submit(&NoteJob{Index: i, Path: path, Processor: b.processor}) {
			cancelled = true
			break
		}
	}

	var results []Result
	if cancelled {
		results = pool.Shutdown()
	} else {
		results = pool.Wait()
	}

	outcomes := make([]model.NoteOutcome, len(paths))
	done := make([]bool, len(paths))
	for _, result := range results {
		nr := result.(*NoteResult)
		outcomes[nr.Index] = nr.Outcome
		done[nr.Index] = true
	}

	for i, ok := range done {
		if !ok {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			outcomes[i] = model.NoteOutcome{Path: paths[i], Err: err}
		}
	}

	return outcomes
}
