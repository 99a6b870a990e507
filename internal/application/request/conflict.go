package request

import (
	"context"
	"time"

	"github.com/baechuer/org-calendar/internal/domain"
)

// CheckConflict is the preview endpoint behind the request form: it runs the
// same detector a create would, optionally excluding the event already
// materialized from the probing request itself.
func (s *Service) CheckConflict(ctx context.Context, dateStart, dateEnd time.Time, timeStart, timeEnd string, requestID *int64) ([]*domain.Event, error) {
	var excludeEventID *int64
	if requestID != nil {
		head, err := s.repo.Head(ctx, *requestID)
		if err != nil && !domain.IsNotFound(err) {
			return nil, err
		}
		if head != nil {
			excludeEventID = head.EventID
		}
	}
	ds, de, ts, te := s.probeWindow(dateStart, dateEnd, timeStart, timeEnd)
	return s.events.GetConflictingEvents(ctx, ds, de, ts, te, excludeEventID)
}
