package dto

import (
	"encoding/json"
	"time"

	"github.com/baechuer/org-calendar/internal/application/request"
	"github.com/baechuer/org-calendar/internal/domain"
)

type CreateRequestReq struct {
	Title             string          `json:"title"`
	DateStart         string          `json:"dateStart"`
	DateEnd           string          `json:"dateEnd,omitempty"`
	TimeStart         string          `json:"timeStart,omitempty"`
	TimeEnd           string          `json:"timeEnd,omitempty"`
	Place             string          `json:"place,omitempty"`
	Format            string          `json:"format,omitempty"`
	DepartmentIDs     []int64         `json:"departmentIds,omitempty"`
	DepartmentID      *int64          `json:"departmentId,omitempty"`
	Labels            []string        `json:"labels,omitempty"`
	LimitParticipants *int            `json:"limitParticipants,omitempty"`
	Description       string          `json:"description,omitempty"`
	PostLink          *string         `json:"postLink,omitempty"`
	RegLink           *string         `json:"regLink,omitempty"`
	ResponsibleLink   *string         `json:"responsibleLink,omitempty"`
	Repeat            json.RawMessage `json:"repeat,omitempty"`
}

func (q *CreateRequestReq) ToFields() (domain.EventFields, error) {
	f := domain.EventFields{
		Title:             q.Title,
		TimeStart:         q.TimeStart,
		TimeEnd:           q.TimeEnd,
		Place:             q.Place,
		Format:            domain.EventFormat(q.Format),
		DepartmentID:      q.DepartmentID,
		DepartmentIDs:     q.DepartmentIDs,
		Labels:            q.Labels,
		LimitParticipants: q.LimitParticipants,
		Description:       q.Description,
		PostLink:          q.PostLink,
		RegLink:           q.RegLink,
		ResponsibleLink:   q.ResponsibleLink,
		Repeat:            q.Repeat,
	}
	if q.DateStart != "" {
		d, err := domain.ParseDate(q.DateStart)
		if err != nil {
			return f, domain.ErrValidationMeta("invalid date", map[string]string{"dateStart": "must be YYYY-MM-DD"})
		}
		f.DateStart = d
	}
	if q.DateEnd != "" {
		d, err := domain.ParseDate(q.DateEnd)
		if err != nil {
			return f, domain.ErrValidationMeta("invalid date", map[string]string{"dateEnd": "must be YYYY-MM-DD"})
		}
		f.DateEnd = d
	}
	return f, nil
}

type ModerateReq struct {
	Status   string  `json:"status"`
	Comments *string `json:"comments,omitempty"`
}

// ParseUpdate builds a field-presence-aware patch from a raw JSON body. A key
// that is absent leaves the field alone; an explicit null clears nullable
// fields.
func ParseUpdate(requestID int64, body []byte) (request.UpdateCmd, error) {
	cmd := request.UpdateCmd{RequestID: requestID}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return cmd, domain.ErrValidationMeta("invalid json body", map[string]string{"body": "malformed JSON"})
	}

	isNull := func(v json.RawMessage) bool { return string(v) == "null" }
	badField := func(name, hint string) error {
		return domain.ErrValidationMeta("invalid field", map[string]string{name: hint})
	}

	for key, val := range raw {
		switch key {
		case "title":
			var s string
			if isNull(val) || json.Unmarshal(val, &s) != nil {
				return cmd, badField(key, "must be a string")
			}
			cmd.Title = &s
		case "dateStart", "dateEnd":
			var s string
			if isNull(val) || json.Unmarshal(val, &s) != nil {
				return cmd, badField(key, "must be YYYY-MM-DD")
			}
			d, err := domain.ParseDate(s)
			if err != nil {
				return cmd, badField(key, "must be YYYY-MM-DD")
			}
			if key == "dateStart" {
				cmd.DateStart = &d
			} else {
				cmd.DateEnd = &d
			}
		case "timeStart":
			cmd.TimeStart = new(string)
			if !isNull(val) && json.Unmarshal(val, cmd.TimeStart) != nil {
				return cmd, badField(key, "must be HH:MM")
			}
		case "timeEnd":
			cmd.TimeEnd = new(string)
			if !isNull(val) && json.Unmarshal(val, cmd.TimeEnd) != nil {
				return cmd, badField(key, "must be HH:MM")
			}
		case "place":
			cmd.Place = new(string)
			if !isNull(val) && json.Unmarshal(val, cmd.Place) != nil {
				return cmd, badField(key, "must be a string")
			}
		case "format":
			var s string
			if isNull(val) || json.Unmarshal(val, &s) != nil {
				return cmd, badField(key, "must be a string")
			}
			format := domain.EventFormat(s)
			cmd.Format = &format
		case "departmentIds":
			ids := []int64{}
			if !isNull(val) && json.Unmarshal(val, &ids) != nil {
				return cmd, badField(key, "must be a list of ids")
			}
			cmd.DepartmentIDs = &ids
		case "labels":
			labels := []string{}
			if !isNull(val) && json.Unmarshal(val, &labels) != nil {
				return cmd, badField(key, "must be a list of strings")
			}
			cmd.Labels = &labels
		case "limitParticipants":
			var p *int
			if !isNull(val) {
				var n int
				if json.Unmarshal(val, &n) != nil {
					return cmd, badField(key, "must be a number or null")
				}
				p = &n
			}
			cmd.LimitParticipants = &p
		case "description":
			cmd.Description = new(string)
			if !isNull(val) && json.Unmarshal(val, cmd.Description) != nil {
				return cmd, badField(key, "must be a string")
			}
		case "postLink", "regLink", "responsibleLink":
			var p *string
			if !isNull(val) {
				var s string
				if json.Unmarshal(val, &s) != nil {
					return cmd, badField(key, "must be a string or null")
				}
				p = &s
			}
			switch key {
			case "postLink":
				cmd.PostLink = &p
			case "regLink":
				cmd.RegLink = &p
			case "responsibleLink":
				cmd.ResponsibleLink = &p
			}
		case "repeat":
			rule := json.RawMessage(nil)
			if !isNull(val) {
				rule = append(json.RawMessage{}, val...)
			}
			cmd.Repeat = &rule
		case "status":
			var s string
			if isNull(val) || json.Unmarshal(val, &s) != nil {
				return cmd, badField(key, "must be a string")
			}
			status := domain.RequestStatus(s)
			cmd.Status = &status
		default:
			return cmd, badField(key, "unknown field")
		}
	}
	return cmd, nil
}

type RequestResp struct {
	ID          int64 `json:"id"`
	OrganizerID int64 `json:"organizerId"`

	Title     string `json:"title"`
	DateStart string `json:"dateStart"`
	DateEnd   string `json:"dateEnd"`
	TimeStart string `json:"timeStart,omitempty"`
	TimeEnd   string `json:"timeEnd,omitempty"`
	Place     string `json:"place,omitempty"`
	Format    string `json:"format,omitempty"`

	DepartmentID  *int64  `json:"departmentId"`
	DepartmentIDs []int64 `json:"departmentIds"`

	Labels            []string        `json:"labels,omitempty"`
	LimitParticipants *int            `json:"limitParticipants"`
	Description       string          `json:"description,omitempty"`
	PostLink          *string         `json:"postLink"`
	RegLink           *string         `json:"regLink"`
	ResponsibleLink   *string         `json:"responsibleLink"`
	Repeat            json.RawMessage `json:"repeat,omitempty"`

	Status           string          `json:"status"`
	Comments         *string         `json:"comments,omitempty"`
	RevisionSnapshot json.RawMessage `json:"revisionSnapshot,omitempty"`
	HasConflict      bool            `json:"hasConflict"`
	EventID          *int64          `json:"eventId"`

	ConflictingEvents []EventResp `json:"conflictingEvents,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ConflictCheckResp struct {
	HasConflict       bool        `json:"hasConflict"`
	ConflictingEvents []EventResp `json:"conflictingEvents"`
}

type ModerationResp struct {
	ID      int64  `json:"id"`
	Status  string `json:"status"`
	EventID *int64 `json:"eventId,omitempty"`
}

type PendingCountResp struct {
	Count int `json:"count"`
}
