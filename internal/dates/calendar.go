package dates

import (
	"fmt"
	"strings"
	"time"
)

// weekdayOrdinals maps weekday names to Monday=0..Sunday=6.
var weekdayOrdinals = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

// ordinal converts a time.Weekday (Sunday=0) to Monday=0..Sunday=6
func ordinal(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// dateOf truncates t to midnight in its own location
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysIn returns the number of days in the given month
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// civil builds a date and rejects days that do not exist in the month
func civil(year int, month time.Month, day int, loc *time.Location) (time.Time, error) {
	if day < 1 || day > daysIn(year, month) {
		return time.Time{}, fmt.Errorf("%w: %d-%02d-%02d", ErrInvalidDay, year, month, day)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc), nil
}

// DayInSameOrNextMonth returns the given day of base's month, or of the
// following month when that date is already behind base.
func DayInSameOrNextMonth(base time.Time, day int) (time.Time, error) {
	today := dateOf(base)

	result, err := civil(base.Year(), base.Month(), day, base.Location())
	if err != nil {
		return time.Time{}, err
	}
	if !result.Before(today) {
		return result, nil
	}

	year, month := base.Year(), base.Month()+1
	if month > time.December {
		year, month = year+1, time.January
	}
	return civil(year, month, day, base.Location())
}

// MonthEnd returns the last day of base's month.
func MonthEnd(base time.Time) time.Time {
	return time.Date(base.Year(), base.Month(), daysIn(base.Year(), base.Month()), 0, 0, 0, 0, base.Location())
}

// NextMonthStart returns the first day of the month after base's month.
func NextMonthStart(base time.Time) time.Time {
	if base.Month() == time.December {
		return time.Date(base.Year()+1, time.January, 1, 0, 0, 0, 0, base.Location())
	}
	return time.Date(base.Year(), base.Month()+1, 1, 0, 0, 0, 0, base.Location())
}

// NextWeekdayOccurrence returns the next date falling on the named weekday.
// With forceNextWeek unset, a base already on that weekday is returned as is.
// With forceNextWeek set, exactly seven days are added on top of the plain
// occurrence, so "next monday" on a Monday is one week out, not two.
func NextWeekdayOccurrence(base time.Time, weekday string, forceNextWeek bool) (time.Time, error) {
	target, ok := weekdayOrdinals[strings.ToLower(weekday)]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownWeekday, weekday)
	}

	delta := (target - ordinal(base.Weekday()) + 7) % 7
	if delta == 0 && !forceNextWeek {
		return dateOf(base), nil
	}
	if forceNextWeek {
		delta += 7
	}
	return dateOf(base).AddDate(0, 0, delta), nil
}
