package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// maxDayOffset bounds "in N days" style offsets to keep date arithmetic sane
const maxDayOffset = 36500

const weekdayAlternation = `(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`

// Rule pairs a phrase-shape recognizer with the function that resolves it.
// Patterns are searched, not anchored, so surrounding words are allowed.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Resolve func(match []string, base time.Time) (time.Time, error)
}

// defaultRules is evaluated top to bottom and the first match wins.
// It is built once and never modified.
var defaultRules = []Rule{
	{
		Name:    "day-of-month",
		Pattern: regexp.MustCompile(`(?i)(?:on|the)\s+(?:the\s+)?(\d+)(?:st|nd|rd|th)?`),
		Resolve: func(m []string, base time.Time) (time.Time, error) {
			day, err := strconv.Atoi(m[1])
			if err != nil {
				return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidNumber, m[1])
			}
			return DayInSameOrNextMonth(base, day)
		},
	},
	{
		Name:    "end-of-month",
		Pattern: regexp.MustCompile(`(?i)end\s+of\s+(?:the\s+)?month`),
		Resolve: func(_ []string, base time.Time) (time.Time, error) {
			return MonthEnd(base), nil
		},
	},
	{
		Name:    "beginning-of-next-month",
		Pattern: regexp.MustCompile(`(?i)beginning\s+of\s+(?:the\s+)?next\s+month`),
		Resolve: func(_ []string, base time.Time) (time.Time, error) {
			return NextMonthStart(base), nil
		},
	},
	{
		Name:    "next-weekday",
		Pattern: regexp.MustCompile(`(?i)next\s+` + weekdayAlternation),
		Resolve: func(m []string, base time.Time) (time.Time, error) {
			return NextWeekdayOccurrence(base, m[1], true)
		},
	},
	{
		Name:    "this-weekday",
		Pattern: regexp.MustCompile(`(?i)this\s+` + weekdayAlternation),
		Resolve: func(m []string, base time.Time) (time.Time, error) {
			return NextWeekdayOccurrence(base, m[1], false)
		},
	},
	{
		Name:    "tomorrow",
		Pattern: regexp.MustCompile(`(?i)\btomorrow\b`),
		Resolve: func(_ []string, base time.Time) (time.Time, error) {
			return dateOf(base).AddDate(0, 0, 1), nil
		},
	},
	{
		Name:    "today",
		Pattern: regexp.MustCompile(`(?i)\btoday\b`),
		Resolve: func(_ []string, base time.Time) (time.Time, error) {
			return dateOf(base), nil
		},
	},
	{
		Name:    "days-from-now",
		Pattern: regexp.MustCompile(`(?i)(\d+)\s+days?\s+from\s+now`),
		Resolve: addCapturedDays,
	},
	{
		Name:    "next-week",
		Pattern: regexp.MustCompile(`(?i)next\s+week`),
		Resolve: func(_ []string, base time.Time) (time.Time, error) {
			return dateOf(base).AddDate(0, 0, 7), nil
		},
	},
	{
		Name:    "in-days",
		Pattern: regexp.MustCompile(`(?i)in\s+(\d+)\s+days?`),
		Resolve: addCapturedDays,
	},
}

// Rules returns a copy of the built-in rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

func addCapturedDays(m []string, base time.Time) (time.Time, error) {
	n, err := strconv.Atoi(m[1])
	if err != nil || n > maxDayOffset {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidNumber, m[1])
	}
	return dateOf(base).AddDate(0, 0, n), nil
}
