package request

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/org-calendar/internal/domain"
)

// FindOne fetches a request; when the cached conflict flag is set the live
// conflicting-events list is recomputed and attached. The flag can go stale
// as other events change, so it is recomputed on read for display but never
// re-persisted.
func (s *Service) FindOne(ctx context.Context, id int64) (*RequestDetail, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &RequestDetail{EventRequest: req}

	if req.HasConflict && !req.DateStart.IsZero() && req.TimeStart != "" && req.TimeEnd != "" {
		ds, de, ts, te := s.probeWindow(req.DateStart, req.DateEnd, req.TimeStart, req.TimeEnd)
		conflicts, err := s.events.GetConflictingEvents(ctx, ds, de, ts, te, req.EventID)
		if err != nil {
			zlog.Warn().Err(err).Int64("request_id", id).Msg("conflict recompute failed")
		} else {
			detail.ConflictingEvents = conflicts
		}
	}
	return detail, nil
}

// List returns requests newest-first; a nil organizerID means all (admin
// view).
func (s *Service) List(ctx context.Context, organizerID *int64) ([]*domain.EventRequest, error) {
	return s.repo.List(ctx, organizerID)
}

// HeadForPermission exposes the ownership/link projection the controller
// layer needs for its delete and edit policy.
func (s *Service) HeadForPermission(ctx context.Context, id int64) (*domain.RequestHead, error) {
	return s.repo.Head(ctx, id)
}
