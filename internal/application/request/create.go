package request

import (
	"context"

	"github.com/baechuer/org-calendar/internal/domain"
)

type CreateCmd struct {
	OrganizerID int64
	Fields      domain.EventFields

	// AutoApprove skips moderation: admin-authored requests are approved and
	// materialized at creation.
	AutoApprove bool
}

type CreateResult struct {
	Request           *domain.EventRequest
	ConflictingEvents []*domain.Event
}

func (s *Service) Create(ctx context.Context, cmd CreateCmd) (*CreateResult, error) {
	if cmd.OrganizerID == 0 {
		return nil, domain.ErrValidation("organizerId is required")
	}

	f := cmd.Fields
	f.NormalizeDepartments()
	if err := f.Validate(); err != nil {
		return nil, err
	}

	ds, de, ts, te := s.probeWindow(f.DateStart, f.DateEnd, f.TimeStart, f.TimeEnd)
	conflicts, err := s.events.GetConflictingEvents(ctx, ds, de, ts, te, nil)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	req := &domain.EventRequest{
		OrganizerID: cmd.OrganizerID,
		EventFields: f,
		HasConflict: len(conflicts) > 0,
		Status:      domain.RequestDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if cmd.AutoApprove {
		req.Status = domain.RequestApproved
		eventID, err := s.repo.CreateApproved(ctx, req)
		if err != nil {
			return nil, err
		}
		req.EventID = &eventID
	} else if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.invalidatePendingCount(ctx)
	return &CreateResult{Request: req, ConflictingEvents: conflicts}, nil
}
