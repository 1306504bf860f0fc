package notes

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/notetasks/internal/dates"
)

var frontmatterPattern = regexp.MustCompile(`(?s)\A---\r?\n(.*?)\r?\n---\r?\n`)

// frontmatterDateFields are checked in order when matching notes by date
var frontmatterDateFields = []string{"created", "date", "creation_date", "createdAt"}

var frontmatterLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
}

// SplitFrontmatter separates a YAML header from the note body. Content
// without a header, or with a header that is not valid YAML, is returned
// whole with an empty map.
func SplitFrontmatter(content string) (map[string]interface{}, string) {
	loc := frontmatterPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return map[string]interface{}{}, content
	}

	fm := map[string]interface{}{}
	if err := yaml.Unmarshal([]byte(content[loc[2]:loc[3]]), &fm); err != nil {
		return map[string]interface{}{}, content
	}
	if fm == nil {
		fm = map[string]interface{}{}
	}
	return fm, content[loc[1]:]
}

// FrontmatterDates returns every parseable date among the known date fields.
// Values that are not recognised layouts go through the fallback parser
// when one is given.
func FrontmatterDates(fm map[string]interface{}, fallback dates.FallbackParser, ref time.Time) []time.Time {
	var out []time.Time
	for _, field := range frontmatterDateFields {
		raw, ok := fm[field]
		if !ok || raw == nil {
			continue
		}
		if t, ok := parseFrontmatterDate(raw, fallback, ref); ok {
			out = append(out, t)
		}
	}
	return out
}

func parseFrontmatterDate(raw interface{}, fallback dates.FallbackParser, ref time.Time) (time.Time, bool) {
	if t, ok := raw.(time.Time); ok {
		return t, true
	}

	s := strings.TrimSpace(fmt.Sprint(raw))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range frontmatterLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	if fallback != nil {
		return fallback.Parse(s, ref, false)
	}
	return time.Time{}, false
}

// stringField returns a frontmatter value as a string
func stringField(fm map[string]interface{}, key string) string {
	v, ok := fm[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
