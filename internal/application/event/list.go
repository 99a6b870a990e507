package event

import (
	"context"
	"time"

	"github.com/baechuer/org-calendar/internal/domain"
)

// ListVisible returns non-canceled events, optionally narrowed to a date
// window, each annotated with its resolved departments.
func (s *Service) ListVisible(ctx context.Context, from, to *time.Time) ([]*domain.Event, error) {
	events, err := s.repo.ListVisible(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.annotateDepartments(ctx, events)
	return events, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	ev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.annotateDepartments(ctx, []*domain.Event{ev})
	return ev, nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return s.depts.ListAll(ctx)
}
