package event

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/org-calendar/internal/domain"
)

type Service struct {
	repo  EventRepo
	depts DepartmentRepo
	clock Clock
}

func New(repo EventRepo, depts DepartmentRepo, clock Clock) *Service {
	return &Service{repo: repo, depts: depts, clock: clock}
}

// Create persists a new published event. Status is always forced to planned
// regardless of what the caller supplies.
func (s *Service) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	e.NormalizeDepartments()
	if err := e.Validate(); err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	e.Status = domain.EventPlanned
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateFromRequest overwrites the whitelisted event fields with the request
// snapshot. Nullable fields are coalesced to null, not left untouched.
func (s *Service) UpdateFromRequest(ctx context.Context, eventID int64, f domain.EventFields) (*domain.Event, error) {
	f.NormalizeDepartments()
	if err := s.repo.UpdateFields(ctx, eventID, f); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, eventID)
}

func (s *Service) ClearRequestLink(ctx context.Context, eventID int64) error {
	return s.repo.ClearRequestLink(ctx, eventID)
}

// Remove cascades: subscriptions, then change logs, then the event itself.
func (s *Service) Remove(ctx context.Context, eventID int64) error {
	return s.repo.RemoveCascade(ctx, eventID)
}

func (s *Service) annotateDepartments(ctx context.Context, events []*domain.Event) {
	for _, ev := range events {
		if len(ev.DepartmentIDs) == 0 {
			continue
		}
		depts, err := s.depts.ResolveIDs(ctx, ev.DepartmentIDs)
		if err != nil {
			zlog.Warn().Err(err).Int64("event_id", ev.ID).Msg("department resolve failed")
			continue
		}
		ev.Departments = depts
	}
}
