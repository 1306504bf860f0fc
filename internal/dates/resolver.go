// Package dates turns free-text due-date phrases such as "next friday" or
// "on the 15th" into calendar dates relative to a reference date.
package dates

import (
	"strings"
	"time"
)

// NullMarker is the literal a language model emits for "no due date".
const NullMarker = "null"

// SourceFallback names the fallback parser in a Resolution.
const SourceFallback = "fallback"

// Resolution describes how a phrase was resolved.
type Resolution struct {
	Date   time.Time
	Source string // rule name, or SourceFallback
}

// Resolver maps date phrases to dates. The zero value is not usable; create
// one with NewResolver. A Resolver holds no mutable state and is safe for
// concurrent use.
type Resolver struct {
	rules    []Rule
	fallback FallbackParser
}

// NewResolver creates a resolver over the built-in rule table. fallback may
// be nil, in which case phrases no rule recognizes stay unresolved.
func NewResolver(fallback FallbackParser) *Resolver {
	return &Resolver{
		rules:    defaultRules,
		fallback: fallback,
	}
}

// Resolve returns the date a phrase refers to, relative to base. The boolean
// is false when the phrase is empty, the null marker, or not understood.
func (r *Resolver) Resolve(phrase string, base time.Time) (time.Time, bool) {
	res, ok := r.Explain(phrase, base)
	return res.Date, ok
}

// Explain is Resolve plus the name of the rule that produced the date.
func (r *Resolver) Explain(phrase string, base time.Time) (Resolution, bool) {
	if IsBlank(phrase) {
		return Resolution{}, false
	}

	for _, rule := range r.rules {
		m := rule.Pattern.FindStringSubmatch(phrase)
		if m == nil {
			continue
		}
		date, err := rule.Resolve(m, base)
		if err != nil {
			// a matched but malformed phrase falls through to later rules
			continue
		}
		return Resolution{Date: date, Source: rule.Name}, true
	}

	if r.fallback == nil {
		return Resolution{}, false
	}
	parsed, ok := r.fallback.Parse(phrase, base, true)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Date: dateOf(parsed.In(base.Location())), Source: SourceFallback}, true
}

// IsBlank reports whether phrase requests no due date at all.
func IsBlank(phrase string) bool {
	trimmed := strings.TrimSpace(phrase)
	return trimmed == "" || strings.EqualFold(trimmed, NullMarker)
}
