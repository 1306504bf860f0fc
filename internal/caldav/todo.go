package caldav

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/ppiankov/notetasks/internal/model"
)

const (
	// ProductID identifies calendars written by notetasks
	ProductID = "-//notetasks//EN"

	// PropTaskHash carries the dedup hash of the task text
	PropTaskHash = "X-TASK-HASH"

	// PropDatePhrase keeps the phrase the due date was resolved from
	PropDatePhrase = "X-DATE-PHRASE"
)

// TaskSpec describes a VTODO to create
type TaskSpec struct {
	Text       string
	Priority   string
	Due        *time.Time
	DatePhrase string
}

// Todo is an existing VTODO on the server
type Todo struct {
	Path    string
	UID     string
	Summary string
	Hash    string
}

// Normalize lowercases and trims task text for comparison
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// TaskHash is the md5 hex digest of the normalized text
func TaskHash(text string) string {
	sum := md5.Sum([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// PriorityValue maps a priority name to the iCalendar scale
func PriorityValue(priority string) int {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case model.PriorityHigh:
		return 1
	case model.PriorityLow:
		return 9
	default:
		return 5
	}
}

// BuildTodo creates a calendar holding one VTODO for spec
func BuildTodo(spec TaskSpec, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	todo := ical.NewComponent(ical.CompToDo)
	todo.Props.SetText(ical.PropUID, uuid.NewString())
	todo.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	todo.Props.SetText(ical.PropSummary, spec.Text)
	todo.Props.SetText(ical.PropStatus, "NEEDS-ACTION")

	priority := ical.NewProp(ical.PropPriority)
	priority.Value = strconv.Itoa(PriorityValue(spec.Priority))
	todo.Props.Set(priority)

	todo.Props.SetText(PropTaskHash, TaskHash(spec.Text))

	if spec.Due != nil {
		todo.Props.SetDate(ical.PropDue, *spec.Due)
		if spec.DatePhrase != "" {
			todo.Props.SetText(PropDatePhrase, spec.DatePhrase)
		}
	}

	cal.Children = append(cal.Children, todo)
	return cal
}

// todoUID returns the UID of the first VTODO in cal
func todoUID(cal *ical.Calendar) string {
	for _, child := range cal.Children {
		if child.Name != ical.CompToDo {
			continue
		}
		if prop := child.Props.Get(ical.PropUID); prop != nil {
			return prop.Value
		}
	}
	return ""
}

// todosFromCalendar extracts every VTODO in cal
func todosFromCalendar(objPath string, cal *ical.Calendar) []Todo {
	if cal == nil {
		return nil
	}

	var todos []Todo
	for _, child := range cal.Children {
		if child.Name != ical.CompToDo {
			continue
		}
		todo := Todo{Path: objPath}
		if prop := child.Props.Get(ical.PropUID); prop != nil {
			todo.UID = prop.Value
		}
		if summary, err := child.Props.Text(ical.PropSummary); err == nil {
			todo.Summary = summary
		}
		if prop := child.Props.Get(PropTaskHash); prop != nil {
			todo.Hash = strings.TrimSpace(prop.Value)
		}
		todos = append(todos, todo)
	}
	return todos
}
