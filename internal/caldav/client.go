// Package caldav stores extracted tasks as VTODO items on a CalDAV server.
package caldav

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"go.uber.org/zap"

	"github.com/ppiankov/notetasks/internal/model"
	"github.com/ppiankov/notetasks/internal/util"
)

// TodoList is a task list that can be read and appended to
type TodoList interface {
	Name() string
	Todos(ctx context.Context) ([]Todo, error)
	Add(ctx context.Context, cal *ical.Calendar) error
}

// Config holds CalDAV connection settings
type Config struct {
	URL              string
	Username         string
	Password         string
	TodoList         string
	InsecureFallback bool
	Timeout          time.Duration

	// Empty proxies fall back to HTTP_PROXY/HTTPS_PROXY/NO_PROXY
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// ConfigFromModel converts model.CalDAVConfig to caldav.Config
func ConfigFromModel(c model.CalDAVConfig) Config {
	return Config{
		URL:              c.URL,
		Username:         c.Username,
		Password:         c.Password,
		TodoList:         c.TodoList,
		InsecureFallback: c.InsecureFallback,
		Timeout:          time.Duration(c.Timeout) * time.Second,
		HTTPProxy:        c.HTTPProxy,
		HTTPSProxy:       c.HTTPSProxy,
		NoProxy:          c.NoProxy,
	}
}

// RemoteList is a calendar collection on a CalDAV server
type RemoteList struct {
	client   *caldav.Client
	calendar caldav.Calendar
}

// Connect discovers the user's calendars and selects the configured list
func Connect(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (*RemoteList, error) {
	if cfg.URL == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, ErrMissingCredentials
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	endpoint := NormalizeURL(cfg.URL)
	logger.Infow("Connecting to CalDAV server", "url", endpoint)

	client, calendars, err := discover(ctx, newHTTPClient(cfg, false), endpoint, cfg)
	if err != nil {
		if !cfg.InsecureFallback {
			return nil, err
		}
		logger.Warnw("CalDAV discovery failed, retrying with TLS verification disabled", "error", err)
		client, calendars, err = discover(ctx, newHTTPClient(cfg, true), endpoint, cfg)
		if err != nil {
			return nil, err
		}
		logger.Infow("Connected to CalDAV server with SSL verification disabled")
	} else {
		logger.Infow("Connected to CalDAV server successfully")
	}

	calendar, exact, err := SelectCalendar(calendars, cfg.TodoList)
	if err != nil {
		return nil, err
	}
	if exact {
		logger.Infow("Using todo list", "name", calendar.Name)
	} else {
		logger.Warnw("Todo list not found, using fallback", "wanted", cfg.TodoList, "using", calendar.Name)
	}

	return &RemoteList{client: client, calendar: calendar}, nil
}

// NormalizeURL prepends https:// when no scheme is given
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// SelectCalendar picks the calendar whose name matches want case-insensitively.
// Without a match it falls back to the first calendar that holds VTODOs, then
// to the first calendar; exact reports whether the name matched.
func SelectCalendar(calendars []caldav.Calendar, want string) (caldav.Calendar, bool, error) {
	if len(calendars) == 0 {
		return caldav.Calendar{}, false, ErrNoCalendars
	}

	for _, c := range calendars {
		if strings.EqualFold(c.Name, want) {
			return c, true, nil
		}
	}

	for _, c := range calendars {
		for _, comp := range c.SupportedComponentSet {
			if strings.EqualFold(comp, ical.CompToDo) {
				return c, false, nil
			}
		}
	}
	return calendars[0], false, nil
}

func newHTTPClient(cfg Config, insecure bool) webdav.HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	httpClient := &http.Client{Timeout: timeout, Transport: transport}
	return webdav.HTTPClientWithBasicAuth(httpClient, cfg.Username, cfg.Password)
}

func discover(ctx context.Context, httpClient webdav.HTTPClient, endpoint string, cfg Config) (*caldav.Client, []caldav.Calendar, error) {
	client, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("create CalDAV client: %w", err)
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, nil, fmt.Errorf("find calendar home set: %w", err)
	}

	calendars, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, nil, fmt.Errorf("list calendars: %w", err)
	}

	return client, calendars, nil
}

// Name returns the calendar's display name
func (l *RemoteList) Name() string {
	return l.calendar.Name
}

// Todos lists the VTODOs in the calendar
func (l *RemoteList) Todos(ctx context.Context) ([]Todo, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: ical.CompCalendar,
			Comps: []caldav.CalendarCompRequest{{
				Name:     ical.CompToDo,
				AllProps: true,
			}},
		},
		CompFilter: caldav.CompFilter{
			Name:  ical.CompCalendar,
			Comps: []caldav.CompFilter{{Name: ical.CompToDo}},
		},
	}

	objects, err := l.client.QueryCalendar(ctx, l.calendar.Path, query)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}

	var todos []Todo
	for _, obj := range objects {
		todos = append(todos, todosFromCalendar(obj.Path, obj.Data)...)
	}
	return todos, nil
}

// Add uploads cal as a new object named after its VTODO UID
func (l *RemoteList) Add(ctx context.Context, cal *ical.Calendar) error {
	uid := todoUID(cal)
	if uid == "" {
		return fmt.Errorf("calendar has no VTODO with a UID")
	}

	objPath := path.Join(l.calendar.Path, uid+".ics")
	if _, err := l.client.PutCalendarObject(ctx, objPath, cal); err != nil {
		return fmt.Errorf("put %s: %w", objPath, err)
	}
	return nil
}
