package request

import (
	"context"

	zlog "github.com/rs/zerolog/log"
)

const cacheKeyPendingCount = "requests:pending_count"

// PendingCount backs the admin moderation badge. The count is cached with a
// short TTL and invalidated on every status write; redis failures fall
// through to the database.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	if s.cache != nil {
		var cached int
		hit, err := s.cache.Get(ctx, cacheKeyPendingCount, &cached)
		if err != nil {
			zlog.Warn().Err(err).Msg("pending count cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	count, err := s.repo.PendingCount(ctx)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyPendingCount, count, s.ttlPending); err != nil {
			zlog.Warn().Err(err).Msg("pending count cache write failed")
		}
	}
	return count, nil
}

func (s *Service) invalidatePendingCount(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyPendingCount); err != nil {
		zlog.Warn().Err(err).Msg("pending count cache invalidate failed")
	}
}
