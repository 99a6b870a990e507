package request

import (
	"context"
)

// Remove deletes a request and, when one is linked, its event together with
// the event's subscriptions and change logs. Ordering (unlink, request,
// dependents, event) lives in the storage transaction. The owner/admin
// policy is the caller's job; the engine deletes unconditionally.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if _, err := s.repo.Head(ctx, id); err != nil {
		return err
	}
	if err := s.repo.RemoveCascade(ctx, id); err != nil {
		return err
	}
	s.invalidatePendingCount(ctx)
	return nil
}
