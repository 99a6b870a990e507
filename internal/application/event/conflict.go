package event

import (
	"context"
	"time"

	"github.com/baechuer/org-calendar/internal/domain"
)

// GetConflictingEvents returns every planned event whose date range falls in
// the probe window and whose time range overlaps the probe times.
// excludeEventID removes that event from the candidate set (used when a
// request is checked against its own materialized event).
//
// The date prefilter only catches events with an endpoint inside the probe
// window; an event fully spanning the window is not considered a candidate.
// Existing clients depend on this, do not widen it without a migration plan.
func (s *Service) GetConflictingEvents(ctx context.Context, dateStart, dateEnd time.Time, timeStart, timeEnd string, excludeEventID *int64) ([]*domain.Event, error) {
	candidates, err := s.repo.ConflictCandidates(ctx, dateStart, dateEnd)
	if err != nil {
		return nil, err
	}
	conflicts := domain.FilterConflicting(candidates, timeStart, timeEnd, excludeEventID)
	s.annotateDepartments(ctx, conflicts)
	return conflicts, nil
}

// CheckTimeConflict is the boolean form of GetConflictingEvents.
func (s *Service) CheckTimeConflict(ctx context.Context, dateStart, dateEnd time.Time, timeStart, timeEnd string, excludeEventID *int64) (bool, error) {
	conflicts, err := s.GetConflictingEvents(ctx, dateStart, dateEnd, timeStart, timeEnd, excludeEventID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}
