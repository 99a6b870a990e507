package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type EventStatus string

const (
	EventPlanned   EventStatus = "planned"
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
	EventCanceled  EventStatus = "canceled"
)

func (s EventStatus) Valid() bool {
	return s == EventPlanned || s == EventActive || s == EventCompleted || s == EventCanceled
}

type EventFormat string

const (
	FormatOpen   EventFormat = "open"
	FormatClosed EventFormat = "closed"
)

// DateLayout is the wire and storage granularity for event dates (date-only).
const DateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

func DateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// EventFields is the value object shared by a request and its materialized
// event. The request keeps its own copy of every field so the proposal
// history survives later edits to the published event.
type EventFields struct {
	Title             string
	DateStart         time.Time // date-only
	DateEnd           time.Time // date-only
	TimeStart         string    // HH:MM
	TimeEnd           string    // HH:MM
	Place             string
	Format            EventFormat
	DepartmentID      *int64  // derived: always DepartmentIDs[0] or nil
	DepartmentIDs     []int64 // ordered, first = primary
	Labels            []string
	LimitParticipants *int // nil = unlimited
	Description       string
	PostLink          *string
	RegLink           *string
	ResponsibleLink   *string
	Repeat            json.RawMessage // opaque repeat rule, not expanded here
}

// NormalizeDepartments keeps the departmentId cache consistent with the list.
// The list is the source of truth; the scalar is only ever derived from it.
func (f *EventFields) NormalizeDepartments() {
	if len(f.DepartmentIDs) > 0 {
		id := f.DepartmentIDs[0]
		f.DepartmentID = &id
		return
	}
	if f.DepartmentID != nil {
		f.DepartmentIDs = []int64{*f.DepartmentID}
		return
	}
	f.DepartmentID = nil
	f.DepartmentIDs = nil
}

// SetDepartmentIDs replaces the list outright and re-derives the scalar.
// An explicit empty list clears both (unlike NormalizeDepartments, which
// backfills the list from a lone scalar at creation time).
func (f *EventFields) SetDepartmentIDs(ids []int64) {
	if len(ids) == 0 {
		f.DepartmentIDs = nil
		f.DepartmentID = nil
		return
	}
	f.DepartmentIDs = ids
	id := ids[0]
	f.DepartmentID = &id
}

func (f *EventFields) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return ErrValidation("title is required")
	}
	if f.DateStart.IsZero() {
		return ErrValidation("dateStart is required")
	}
	if f.DateEnd.IsZero() {
		f.DateEnd = f.DateStart
	}
	if f.DateEnd.Before(f.DateStart) {
		return ErrValidation("dateEnd must not be before dateStart")
	}
	if f.TimeStart != "" {
		if _, err := minutesOfDay(f.TimeStart); err != nil {
			return ErrValidationMeta("invalid time", map[string]string{"timeStart": "must be HH:MM"})
		}
	}
	if f.TimeEnd != "" {
		if _, err := minutesOfDay(f.TimeEnd); err != nil {
			return ErrValidationMeta("invalid time", map[string]string{"timeEnd": "must be HH:MM"})
		}
	}
	return nil
}

// Event is the published, calendar-visible record. It is independently owned
// once created: the request back-reference is clearable without deleting it.
type Event struct {
	ID int64

	EventFields

	Status    EventStatus
	RequestID *int64

	// Resolved from DepartmentIDs for display; not persisted on the row.
	Departments []Department

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InConflictPool reports whether the event participates in conflict
// detection. Only planned events do.
func (e *Event) InConflictPool() bool {
	return e.Status == EventPlanned
}
