package domain

import (
	"encoding/json"
	"time"
)

type RequestStatus string

const (
	RequestDraft     RequestStatus = "draft"
	RequestPending   RequestStatus = "pending"
	RequestNeedsWork RequestStatus = "needsWork"
	RequestRejected  RequestStatus = "rejected"
	RequestApproved  RequestStatus = "approved"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestDraft, RequestPending, RequestNeedsWork, RequestRejected, RequestApproved:
		return true
	}
	return false
}

// Submittable reports whether an explicit submit moves the request to
// pending. Submit on any other status is a silent no-op.
func (s RequestStatus) Submittable() bool {
	return s == RequestDraft || s == RequestNeedsWork
}

// ModerationOutcome reports whether s is a status an admin may set via
// moderate.
func (s RequestStatus) ModerationOutcome() bool {
	return s == RequestApproved || s == RequestRejected || s == RequestNeedsWork
}

// EventRequest is the proposal form of an event, owned by one organizer and
// mutable until it leaves moderation. It carries a full snapshot of the event
// fields plus the workflow state.
type EventRequest struct {
	ID          int64
	OrganizerID int64

	EventFields

	Status   RequestStatus
	Comments *string // moderator feedback

	// Snapshot of the fields taken when the request was sent back for
	// rework, so the UI can show what changed on resubmit.
	RevisionSnapshot json.RawMessage

	HasConflict bool
	EventID     *int64 // set once an event is materialized

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RequestHead is the cheap projection used for permission checks and the
// submit fast path.
type RequestHead struct {
	ID          int64
	OrganizerID int64
	Status      RequestStatus
	EventID     *int64
}
