package caldav

import (
	"context"
	"sync"

	"github.com/emersion/go-ical"
)

// MemoryList is an in-process TodoList. Dry runs use it in place of the
// server so nothing is written remotely.
type MemoryList struct {
	name  string
	mu    sync.Mutex
	todos []Todo
	cals  []*ical.Calendar
}

// NewMemoryList creates an empty list, optionally seeded with todos
func NewMemoryList(name string, seed ...Todo) *MemoryList {
	return &MemoryList{name: name, todos: append([]Todo(nil), seed...)}
}

// Name returns the list name
func (l *MemoryList) Name() string {
	return l.name
}

// Todos returns the stored todos
func (l *MemoryList) Todos(ctx context.Context) ([]Todo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Todo(nil), l.todos...), nil
}

// Add stores the calendar's VTODOs
func (l *MemoryList) Add(ctx context.Context, cal *ical.Calendar) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cals = append(l.cals, cal)
	l.todos = append(l.todos, todosFromCalendar("", cal)...)
	return nil
}

// Calendars returns everything added so far
func (l *MemoryList) Calendars() []*ical.Calendar {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*ical.Calendar(nil), l.cals...)
}
