package request

import (
	"context"

	"github.com/baechuer/org-calendar/internal/domain"
)

// Submit moves a draft or needsWork request to pending. Only the owning
// organizer may submit; a mismatch or a missing request returns (nil, nil)
// rather than an error, so double submits and probing stay silent. Submit on
// any other status is a no-op returning the current state.
func (s *Service) Submit(ctx context.Context, id, organizerID int64) (*RequestDetail, error) {
	head, err := s.repo.Head(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if head.OrganizerID != organizerID {
		return nil, nil
	}
	if !head.Status.Submittable() {
		return s.FindOne(ctx, id)
	}

	if err := s.repo.SetStatus(ctx, id, domain.RequestPending, nil, nil); err != nil {
		return nil, err
	}
	s.invalidatePendingCount(ctx)
	s.notify(ctx, RoutingKeyRequestSubmitted, RequestStatusPayload{
		RequestID:   id,
		OrganizerID: head.OrganizerID,
		Status:      string(domain.RequestPending),
	})
	return s.FindOne(ctx, id)
}
