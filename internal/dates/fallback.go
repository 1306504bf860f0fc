package dates

import (
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

// FallbackParser is a general natural-language date parser consulted when
// no rule matches. It returns false when the text holds no date.
type FallbackParser interface {
	Parse(text string, reference time.Time, preferFuture bool) (time.Time, bool)
}

// FallbackFunc adapts a function to FallbackParser.
type FallbackFunc func(text string, reference time.Time, preferFuture bool) (time.Time, bool)

// Parse calls f.
func (f FallbackFunc) Parse(text string, reference time.Time, preferFuture bool) (time.Time, bool) {
	return f(text, reference, preferFuture)
}

// DateParser is the default FallbackParser, backed by go-dateparser.
type DateParser struct{}

// NewDateParser creates the default fallback parser.
func NewDateParser() *DateParser {
	return &DateParser{}
}

// Parse interprets text relative to reference. Ambiguous phrases ("friday",
// "march 3") resolve forward when preferFuture is set, backward otherwise.
func (p *DateParser) Parse(text string, reference time.Time, preferFuture bool) (time.Time, bool) {
	cfg := &dps.Configuration{
		CurrentTime:         reference,
		PreferredDateSource: dps.Past,
	}
	if preferFuture {
		cfg.PreferredDateSource = dps.Future
	}

	dt, err := dps.Parse(cfg, text)
	if err != nil || dt.Time.IsZero() {
		return time.Time{}, false
	}
	return dt.Time, true
}
