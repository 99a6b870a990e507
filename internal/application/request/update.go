package request

import (
	"context"
	"encoding/json"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/org-calendar/internal/domain"
)

type UpdateCmd struct {
	RequestID int64

	Title             *string
	DateStart         *time.Time
	DateEnd           *time.Time
	TimeStart         *string
	TimeEnd           *string
	Place             *string
	Format            *domain.EventFormat
	DepartmentIDs     *[]int64
	Labels            *[]string
	LimitParticipants **int
	Description       *string
	PostLink          **string
	RegLink           **string
	ResponsibleLink   **string
	Repeat            *json.RawMessage

	Status *domain.RequestStatus
}

func (cmd *UpdateCmd) apply(r *domain.EventRequest) error {
	if cmd.Title != nil {
		r.Title = *cmd.Title
	}
	if cmd.DateStart != nil {
		r.DateStart = *cmd.DateStart
	}
	if cmd.DateEnd != nil {
		r.DateEnd = *cmd.DateEnd
	}
	if cmd.TimeStart != nil {
		r.TimeStart = *cmd.TimeStart
	}
	if cmd.TimeEnd != nil {
		r.TimeEnd = *cmd.TimeEnd
	}
	if cmd.Place != nil {
		r.Place = *cmd.Place
	}
	if cmd.Format != nil {
		r.Format = *cmd.Format
	}
	if cmd.DepartmentIDs != nil {
		r.SetDepartmentIDs(*cmd.DepartmentIDs)
	}
	if cmd.Labels != nil {
		r.Labels = *cmd.Labels
	}
	if cmd.LimitParticipants != nil {
		r.LimitParticipants = *cmd.LimitParticipants
	}
	if cmd.Description != nil {
		r.Description = *cmd.Description
	}
	if cmd.PostLink != nil {
		r.PostLink = *cmd.PostLink
	}
	if cmd.RegLink != nil {
		r.RegLink = *cmd.RegLink
	}
	if cmd.ResponsibleLink != nil {
		r.ResponsibleLink = *cmd.ResponsibleLink
	}
	if cmd.Repeat != nil {
		r.Repeat = *cmd.Repeat
	}
	if cmd.Status != nil {
		if !cmd.Status.Valid() {
			return domain.ErrValidationMeta("invalid status", map[string]string{"status": string(*cmd.Status)})
		}
		r.Status = *cmd.Status
	}
	return r.Validate()
}

// Update patches arbitrary request fields. A plain update never auto-resets
// status; only the explicit approved→pending transition (how a non-admin
// reopen is modeled) additionally pushes the fresh snapshot into the linked
// event so the calendar reflects the edit before re-review.
func (s *Service) Update(ctx context.Context, cmd UpdateCmd) (*RequestDetail, error) {
	existing, err := s.repo.GetByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	wasApproved := existing.Status == domain.RequestApproved

	if err := cmd.apply(existing); err != nil {
		return nil, err
	}
	existing.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Save(ctx, existing); err != nil {
		return nil, err
	}
	s.invalidatePendingCount(ctx)

	if wasApproved &&
		cmd.Status != nil && *cmd.Status == domain.RequestPending &&
		existing.EventID != nil {
		ev, err := s.events.UpdateFromRequest(ctx, *existing.EventID, existing.EventFields)
		if err != nil {
			return nil, err
		}
		s.notify(ctx, RoutingKeyEventUpdated, EventUpdatedPayload{
			EventID:   ev.ID,
			RequestID: existing.ID,
			Title:     ev.Title,
		})
		zlog.Info().Int64("request_id", existing.ID).Int64("event_id", ev.ID).
			Msg("approved request reopened, event synced")
	}

	return s.FindOne(ctx, cmd.RequestID)
}
