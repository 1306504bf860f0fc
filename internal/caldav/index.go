package caldav

import "sync"

// Index answers "is this task already on the list?" for one run
type Index struct {
	mu        sync.Mutex
	summaries map[string]struct{}
	hashes    map[string]struct{}
}

// NewIndex builds an index from existing todos
func NewIndex(todos []Todo) *Index {
	idx := &Index{
		summaries: make(map[string]struct{}, len(todos)),
		hashes:    make(map[string]struct{}, len(todos)),
	}
	for _, t := range todos {
		if s := Normalize(t.Summary); s != "" {
			idx.summaries[s] = struct{}{}
		}
		if t.Hash != "" {
			idx.hashes[t.Hash] = struct{}{}
		}
	}
	return idx
}

// Contains reports whether text matches an existing summary or task hash
func (i *Index) Contains(text string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.containsLocked(text)
}

// Add records text as present
func (i *Index) Add(text string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.addLocked(text)
}

// Reserve atomically adds text unless it is already present. It returns
// false for duplicates.
func (i *Index) Reserve(text string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.containsLocked(text) {
		return false
	}
	i.addLocked(text)
	return true
}

// Release forgets a reservation whose insert failed
func (i *Index) Release(text string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.summaries, Normalize(text))
	delete(i.hashes, TaskHash(text))
}

// Len returns the number of known summaries
func (i *Index) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.summaries)
}

func (i *Index) containsLocked(text string) bool {
	if _, ok := i.summaries[Normalize(text)]; ok {
		return true
	}
	_, ok := i.hashes[TaskHash(text)]
	return ok
}

func (i *Index) addLocked(text string) {
	i.summaries[Normalize(text)] = struct{}{}
	i.hashes[TaskHash(text)] = struct{}{}
}
