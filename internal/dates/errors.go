package dates

import "errors"

var (
	// ErrInvalidDay is returned when a day-of-month does not exist in the target month
	ErrInvalidDay = errors.New("day out of range for month")

	// ErrUnknownWeekday is returned for weekday names outside the English vocabulary
	ErrUnknownWeekday = errors.New("unknown weekday")

	// ErrInvalidNumber is returned when a numeric capture cannot be used as a day count
	ErrInvalidNumber = errors.New("invalid number in phrase")
)
