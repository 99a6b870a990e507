package dto

import (
	"github.com/baechuer/org-calendar/internal/application/request"
	"github.com/baechuer/org-calendar/internal/domain"
)

func ToDepartmentResp(d domain.Department) DepartmentResp {
	return DepartmentResp{ID: d.ID, Name: d.Name, Color: d.Color}
}

func ToEventResp(e *domain.Event) EventResp {
	resp := EventResp{
		ID:                e.ID,
		Title:             e.Title,
		DateStart:         domain.DateString(e.DateStart),
		DateEnd:           domain.DateString(e.DateEnd),
		TimeStart:         e.TimeStart,
		TimeEnd:           e.TimeEnd,
		Place:             e.Place,
		Format:            string(e.Format),
		DepartmentID:      e.DepartmentID,
		DepartmentIDs:     e.DepartmentIDs,
		Labels:            e.Labels,
		LimitParticipants: e.LimitParticipants,
		Description:       e.Description,
		PostLink:          e.PostLink,
		RegLink:           e.RegLink,
		ResponsibleLink:   e.ResponsibleLink,
		Repeat:            e.Repeat,
		Status:            string(e.Status),
		RequestID:         e.RequestID,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
	for _, d := range e.Departments {
		resp.Departments = append(resp.Departments, ToDepartmentResp(d))
	}
	return resp
}

func ToEventResps(events []*domain.Event) []EventResp {
	out := make([]EventResp, 0, len(events))
	for _, e := range events {
		out = append(out, ToEventResp(e))
	}
	return out
}

func ToRequestResp(r *domain.EventRequest, conflicts []*domain.Event) RequestResp {
	return RequestResp{
		ID:                r.ID,
		OrganizerID:       r.OrganizerID,
		Title:             r.Title,
		DateStart:         domain.DateString(r.DateStart),
		DateEnd:           domain.DateString(r.DateEnd),
		TimeStart:         r.TimeStart,
		TimeEnd:           r.TimeEnd,
		Place:             r.Place,
		Format:            string(r.Format),
		DepartmentID:      r.DepartmentID,
		DepartmentIDs:     r.DepartmentIDs,
		Labels:            r.Labels,
		LimitParticipants: r.LimitParticipants,
		Description:       r.Description,
		PostLink:          r.PostLink,
		RegLink:           r.RegLink,
		ResponsibleLink:   r.ResponsibleLink,
		Repeat:            r.Repeat,
		Status:            string(r.Status),
		Comments:          r.Comments,
		RevisionSnapshot:  r.RevisionSnapshot,
		HasConflict:       r.HasConflict,
		EventID:           r.EventID,
		ConflictingEvents: ToEventResps(conflicts),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func ToRequestDetailResp(d *request.RequestDetail) RequestResp {
	return ToRequestResp(d.EventRequest, d.ConflictingEvents)
}

func ToModerationResp(m *request.ModerationResult) ModerationResp {
	return ModerationResp{ID: m.ID, Status: string(m.Status), EventID: m.EventID}
}
