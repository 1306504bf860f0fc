package model

// Summary is the outcome of one extraction run
type Summary struct {
	FilesProcessed  int         `json:"files_processed"`
	FilesWithErrors int         `json:"files_with_errors"`
	TasksExtracted  int         `json:"tasks_extracted"`
	TasksAdded      int         `json:"tasks_added"`
	TasksSkipped    int         `json:"tasks_skipped"` // duplicates and invalid entries
	DatesUnresolved int         `json:"dates_unresolved"`
	Added           []AddedTask `json:"added,omitempty"`
}

// NoteOutcome is the per-note result produced by the pipeline
type NoteOutcome struct {
	Path       string
	Extracted  int
	Added      []AddedTask
	Skipped    int
	Unresolved int
	Err        error
}

// Merge folds a note outcome into the summary
func (s *Summary) Merge(o NoteOutcome) {
	s.FilesProcessed++
	if o.Err != nil {
		s.FilesWithErrors++
	}
	s.TasksExtracted += o.Extracted
	s.TasksAdded += len(o.Added)
	s.TasksSkipped += o.Skipped
	s.DatesUnresolved += o.Unresolved
	s.Added = append(s.Added, o.Added...)
}
