package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/notetasks/internal/model"
)

// Load reads a note, splits off its frontmatter, and cleans the body. The
// file's modification time becomes the note's reference date.
func Load(path string) (*model.Note, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat note: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read note: %w", err)
	}

	fm, body := SplitFrontmatter(string(content))

	title := stringField(fm, "title")
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &model.Note{
		Path:        path,
		Title:       title,
		Body:        Clean(body),
		ModTime:     info.ModTime(),
		Frontmatter: fm,
	}, nil
}
