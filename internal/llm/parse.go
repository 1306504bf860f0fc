package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/notetasks/internal/model"
)

// ParseResult is what ParseTasks recovered from a model reply
type ParseResult struct {
	Tasks []model.ExtractedTask

	// Invalid holds the raw JSON of elements that were not usable tasks
	Invalid []string
}

// ParseTasks decodes the model's reply into tasks. Code fences are stripped
// and, if the whole reply is not JSON, the outermost [...] span is tried.
func ParseTasks(text string) (ParseResult, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return ParseResult{}, nil
	}
	cleaned = stripFence(cleaned)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		start := strings.Index(text, "[")
		end := strings.LastIndex(text, "]")
		if start < 0 || end <= start {
			return ParseResult{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &items); err != nil {
			return ParseResult{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	var result ParseResult
	for _, raw := range items {
		task, ok := decodeTask(raw)
		if !ok {
			result.Invalid = append(result.Invalid, string(raw))
			continue
		}
		result.Tasks = append(result.Tasks, task)
	}
	return result, nil
}

// stripFence removes a ```lang ... ``` wrapper
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	start := strings.Index(s, "\n")
	if start < 0 {
		return strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	start++
	end := strings.LastIndex(s, "```")
	if end > start {
		return strings.TrimSpace(s[start:end])
	}
	return strings.TrimSpace(s[start:])
}

func decodeTask(raw json.RawMessage) (model.ExtractedTask, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return model.ExtractedTask{}, false
	}

	text, ok := obj["task"].(string)
	if !ok {
		return model.ExtractedTask{}, false
	}

	task := model.ExtractedTask{Text: text, Priority: model.PriorityMedium}

	switch v := obj["date_phrase"].(type) {
	case nil:
	case string:
		task.DatePhrase = v
	default:
		task.DatePhrase = fmt.Sprint(v)
	}

	if p, ok := obj["priority"].(string); ok && strings.TrimSpace(p) != "" {
		task.Priority = p
	}
	return task, true
}
