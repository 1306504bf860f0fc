package caldav

import "errors"

var (
	// ErrMissingCredentials is returned when URL, username or password is empty
	ErrMissingCredentials = errors.New("missing CalDAV connection details")

	// ErrNoCalendars is returned when the server exposes no calendars
	ErrNoCalendars = errors.New("no calendars found on the CalDAV server")
)
