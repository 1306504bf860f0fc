package llm

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/notetasks/internal/model"
)

func TestParseTasks(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantTasks   []model.ExtractedTask
		wantInvalid int
		wantErr     bool
	}{
		{
			name:  "empty",
			input: "   ",
		},
		{
			name:  "empty array",
			input: "[]",
		},
		{
			name:  "plain array",
			input: `[{"task": "Call Bob", "date_phrase": "tomorrow", "priority": "high"}]`,
			wantTasks: []model.ExtractedTask{
				{Text: "Call Bob", DatePhrase: "tomorrow", Priority: "high"},
			},
		},
		{
			name:  "fenced with language",
			input: "```json\n[{\"task\": \"Pay rent\", \"date_phrase\": null}]\n```",
			wantTasks: []model.ExtractedTask{
				{Text: "Pay rent", Priority: "medium"},
			},
		},
		{
			name:  "fence without closing",
			input: "```\n[{\"task\": \"Pay rent\"}]",
			wantTasks: []model.ExtractedTask{
				{Text: "Pay rent", Priority: "medium"},
			},
		},
		{
			name:  "surrounding prose",
			input: "Here are the tasks:\n[{\"task\": \"Email Ann\", \"priority\": \"low\"}]\nLet me know!",
			wantTasks: []model.ExtractedTask{
				{Text: "Email Ann", Priority: "low"},
			},
		},
		{
			name:  "non-string date phrase",
			input: `[{"task": "Renew passport", "date_phrase": 5}]`,
			wantTasks: []model.ExtractedTask{
				{Text: "Renew passport", DatePhrase: "5", Priority: "medium"},
			},
		},
		{
			name:  "invalid elements skipped",
			input: `[{"task": "Buy milk"}, "just a string", {"title": "no task key"}, {"task": 42}]`,
			wantTasks: []model.ExtractedTask{
				{Text: "Buy milk", Priority: "medium"},
			},
			wantInvalid: 3,
		},
		{
			name:    "object not array",
			input:   `{"task": "Buy milk"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			input:   "I could not find any tasks.",
			wantErr: true,
		},
		{
			name:    "broken brackets",
			input:   "[this is not json]",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTasks(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidResponse) {
					t.Fatalf("Expected ErrInvalidResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTasks failed: %v", err)
			}

			if len(got.Tasks) != len(tt.wantTasks) {
				t.Fatalf("Expected %d tasks, got %d: %+v", len(tt.wantTasks), len(got.Tasks), got.Tasks)
			}
			for i, want := range tt.wantTasks {
				if got.Tasks[i] != want {
					t.Errorf("Task %d: expected %+v, got %+v", i, want, got.Tasks[i])
				}
			}
			if len(got.Invalid) != tt.wantInvalid {
				t.Errorf("Expected %d invalid items, got %d", tt.wantInvalid, len(got.Invalid))
			}
		})
	}
}

func TestLoadPrompt(t *testing.T) {
	prompt, err := LoadPrompt("")
	if err != nil || prompt != DefaultPrompt {
		t.Fatalf("Expected default prompt, got %q, %v", prompt, err)
	}

	path := filepath.Join(t.TempDir(), "prompt.md")
	if err := os.WriteFile(path, []byte("  Find the tasks.\n"), 0644); err != nil {
		t.Fatal(err)
	}
	prompt, err = LoadPrompt(path)
	if err != nil {
		t.Fatalf("LoadPrompt failed: %v", err)
	}
	if prompt != "Find the tasks." {
		t.Errorf("Unexpected prompt: %q", prompt)
	}

	if _, err := LoadPrompt(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("Expected error for missing prompt file")
	}
}
