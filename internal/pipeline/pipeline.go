// Package pipeline runs notes through extraction, due-date resolution and
// insertion into the task list.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/ppiankov/notetasks/internal/caldav"
	"github.com/ppiankov/notetasks/internal/dates"
	"github.com/ppiankov/notetasks/internal/llm"
	"github.com/ppiankov/notetasks/internal/model"
	"github.com/ppiankov/notetasks/internal/notes"
	"github.com/ppiankov/notetasks/internal/worker"
)

// TaskExtractor turns a note into candidate tasks
type TaskExtractor interface {
	Extract(ctx context.Context, note *model.Note) (*llm.Extraction, error)
}

// Options tunes a Pipeline
type Options struct {
	// CheckExisting skips tasks already present on the list
	CheckExisting bool

	// Workers is the number of notes processed concurrently
	Workers int

	// MemoSize bounds the (phrase, reference time) resolution memo
	MemoSize int

	// Now stamps created todos; defaults to time.Now
	Now func() time.Time
}

// memoKey identifies one resolution. The fallback parser anchors on the full
// reference timestamp, so the key carries the instant and not just the day.
type memoKey struct {
	phrase string
	at     int64
	loc    string
}

type memoEntry struct {
	due time.Time
	ok  bool
}

// Pipeline orchestrates one extraction run
type Pipeline struct {
	extractor TaskExtractor
	resolver  *dates.Resolver
	list      caldav.TodoList
	index     *caldav.Index
	memo      *lru.Cache[memoKey, memoEntry]
	logger    *zap.SugaredLogger
	opts      Options
	load      func(path string) (*model.Note, error)

	total   int
	started atomic.Int32
}

// New creates a pipeline. A nil logger discards output.
func New(extractor TaskExtractor, resolver *dates.Resolver, list caldav.TodoList, logger *zap.SugaredLogger, opts Options) *Pipeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MemoSize <= 0 {
		opts.MemoSize = 256
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	memo, _ := lru.New[memoKey, memoEntry](opts.MemoSize)

	return &Pipeline{
		extractor: extractor,
		resolver:  resolver,
		list:      list,
		memo:      memo,
		logger:    logger,
		opts:      opts,
		load:      notes.Load,
	}
}

// Run processes every note and returns the aggregate summary
func (p *Pipeline) Run(ctx context.Context, paths []string) model.Summary {
	p.prepareIndex(ctx)

	p.total = len(paths)
	p.started.Store(0)

	outcomes := worker.NewBatchProcessor(p, p.opts.Workers).ProcessNotes(ctx, paths)

	var summary model.Summary
	for _, o := range outcomes {
		summary.Merge(o)
	}
	return summary
}

// prepareIndex loads existing todos for duplicate detection. A failure
// disables the check for this run.
func (p *Pipeline) prepareIndex(ctx context.Context) {
	p.index = nil
	if !p.opts.CheckExisting {
		return
	}

	todos, err := p.list.Todos(ctx)
	if err != nil {
		p.logger.Errorw("Error getting existing tasks, duplicate check disabled", "error", err)
		return
	}

	p.logger.Infof("Found %d existing tasks in the todo list", len(todos))
	p.index = caldav.NewIndex(todos)
}

// ProcessNote handles one note: load, extract, resolve, insert
func (p *Pipeline) ProcessNote(ctx context.Context, path string) model.NoteOutcome {
	outcome := model.NoteOutcome{Path: path}
	progress := fmt.Sprintf("[%d/%d]", p.started.Add(1), p.total)
	log := p.logger.With("file", path)

	log.Infof("%s Processing file", progress)

	if err := ctx.Err(); err != nil {
		outcome.Err = err
		return outcome
	}

	note, err := p.load(path)
	if err != nil {
		log.Errorw(progress+" Error processing file", "error", err)
		outcome.Err = err
		return outcome
	}

	extraction, err := p.extractor.Extract(ctx, note)
	if err != nil {
		log.Errorw(progress+" Task extraction failed", "error", err)
		outcome.Err = err
		return outcome
	}

	for _, raw := range extraction.Invalid {
		log.Warnw("Invalid task format", "item", raw)
	}
	outcome.Skipped += len(extraction.Invalid)

	if len(extraction.Tasks) == 0 {
		log.Infof("%s No tasks extracted", progress)
		return outcome
	}
	log.Infof("%s Extracted %d tasks", progress, len(extraction.Tasks))
	outcome.Extracted = len(extraction.Tasks)

	for _, task := range extraction.Tasks {
		if err := ctx.Err(); err != nil {
			outcome.Err = err
			return outcome
		}
		p.addTask(ctx, note, task, &outcome, log)
	}

	return outcome
}

func (p *Pipeline) addTask(ctx context.Context, note *model.Note, task model.ExtractedTask, outcome *model.NoteOutcome, log *zap.SugaredLogger) {
	text := strings.TrimSpace(task.Text)
	if text == "" {
		outcome.Skipped++
		return
	}

	if p.index != nil && !p.index.Reserve(text) {
		log.Infow("Task already exists, skipping", "task", text)
		outcome.Skipped++
		return
	}

	phrase := strings.TrimSpace(task.DatePhrase)
	if dates.IsBlank(phrase) {
		phrase = ""
	}

	var due *time.Time
	if phrase != "" {
		if d, ok := p.resolve(phrase, note.ModTime); ok {
			due = &d
			log.Debugw("Resolved date phrase", "phrase", phrase, "due", d.Format("2006-01-02"))
		} else {
			log.Warnw("Could not resolve date phrase", "phrase", phrase, "task", text)
			outcome.Unresolved++
		}
	}

	priority := task.NormalizedPriority()
	cal := caldav.BuildTodo(caldav.TaskSpec{
		Text:       text,
		Priority:   priority,
		Due:        due,
		DatePhrase: phrase,
	}, p.opts.Now())

	if err := p.list.Add(ctx, cal); err != nil {
		log.Errorw("Error adding task to todo list", "task", text, "error", err)
		if p.index != nil {
			p.index.Release(text)
		}
		outcome.Skipped++
		return
	}

	fields := []interface{}{"task", text, "priority", priority}
	if phrase != "" {
		fields = append(fields, "phrase", phrase)
	}
	if due != nil {
		fields = append(fields, "due", due.Format("2006-01-02"))
	}
	log.Infow("Added task", fields...)

	outcome.Added = append(outcome.Added, model.AddedTask{
		Text:       text,
		DatePhrase: phrase,
		Priority:   priority,
		Due:        due,
		Note:       note.Path,
	})
}

// resolve memoizes phrase resolution per reference time
func (p *Pipeline) resolve(phrase string, base time.Time) (time.Time, bool) {
	key := memoKey{phrase: phrase, at: base.UnixNano(), loc: base.Location().String()}
	if e, ok := p.memo.Get(key); ok {
		return e.due, e.ok
	}

	due, ok := p.resolver.Resolve(phrase, base)
	p.memo.Add(key, memoEntry{due: due, ok: ok})
	return due, ok
}
