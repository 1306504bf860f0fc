package llm

import (
	"fmt"
	"os"
	"strings"
)

// DefaultPrompt is the built-in extraction instruction
const DefaultPrompt = `You extract action items from a personal note.

Return ONLY a JSON array. Each element is an object with these keys:
- "task": a short imperative description of the action item
- "date_phrase": the exact words in the note that say when it is due
  (for example "tomorrow", "next monday", "on the 5th", "in 3 days"),
  or null when the note gives no timing
- "priority": "high", "medium" or "low"

Only include things the author intends to do. Do not invent tasks.
Copy date phrases verbatim; do not convert them to dates.
If the note contains no tasks, return [].`

// LoadPrompt returns the prompt stored at path, or DefaultPrompt when path is
// empty. A configured file that cannot be read is an error.
func LoadPrompt(path string) (string, error) {
	if path == "" {
		return DefaultPrompt, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}
	return prompt, nil
}
