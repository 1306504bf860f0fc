package model

import (
	"strings"
	"time"
)

// Priority levels accepted from the language model
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Note is a Markdown note prepared for task extraction
type Note struct {
	Path        string                 `json:"path"`
	Title       string                 `json:"title"`
	Body        string                 `json:"body"`                  // cleaned content without frontmatter
	ModTime     time.Time              `json:"mod_time"`              // reference date for due-date phrases
	Frontmatter map[string]interface{} `json:"frontmatter,omitempty"` // parsed YAML header
}

// LLMContent is the text sent to the model for this note
func (n Note) LLMContent() string {
	return "# " + n.Title + "\n\n" + n.Body
}

// ExtractedTask is one action item returned by the language model
type ExtractedTask struct {
	Text       string `json:"task"`
	DatePhrase string `json:"date_phrase,omitempty"` // empty when the model returned null
	Priority   string `json:"priority"`
}

// NormalizedPriority lowercases the priority and defaults it to medium
func (t ExtractedTask) NormalizedPriority() string {
	p := strings.ToLower(strings.TrimSpace(t.Priority))
	if p == "" {
		return PriorityMedium
	}
	return p
}

// AddedTask records a task inserted into the task list
type AddedTask struct {
	Text       string     `json:"text"`
	DatePhrase string     `json:"date_phrase,omitempty"`
	Priority   string     `json:"priority"`
	Due        *time.Time `json:"due,omitempty"`
	Note       string     `json:"note"`
}
