package notes

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var templatePatterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)```dataview(?:js)?\n.*?```"),
	regexp.MustCompile(`(?s)<%.*?%>`),
	regexp.MustCompile(`(?s)<<.*?>>`),
	regexp.MustCompile(`(?s)\{\{.*?\}\}`),
}

// Clean strips Obsidian dataview blocks, templating fragments, HTML comments
// and script/style elements from note content.
func Clean(content string) string {
	for _, re := range templatePatterns {
		content = re.ReplaceAllString(content, "")
	}
	return stripHTMLNoise(content)
}

// stripHTMLNoise drops comments and script/style elements, keeping every
// other token byte-for-byte.
func stripHTMLNoise(content string) string {
	lower := strings.ToLower(content)
	if !strings.Contains(lower, "<!--") && !strings.Contains(lower, "<script") && !strings.Contains(lower, "<style") {
		return content
	}

	var buf strings.Builder
	z := html.NewTokenizer(strings.NewReader(content))
	skipping := ""

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// an unterminated tag at EOF is kept as text
			if skipping == "" && z.Err() == io.EOF {
				buf.Write(z.Raw())
			}
			break
		}

		switch tt {
		case html.CommentToken:
			continue
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); skipping == "" && (tag == "script" || tag == "style") {
				skipping = tag
				continue
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skipping != "" && string(name) == skipping {
				skipping = ""
				continue
			}
		}

		if skipping == "" {
			buf.Write(z.Raw())
		}
	}

	return buf.String()
}
