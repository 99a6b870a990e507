package request

import (
	"time"

	"github.com/baechuer/org-calendar/internal/domain"
)

const (
	defaultTimeStart = "00:00"
	defaultTimeEnd   = "23:59"
)

type Service struct {
	repo   RequestRepo
	events EventStore
	pub    Publisher
	cache  Cache
	clock  Clock

	ttlPending time.Duration
}

func New(repo RequestRepo, events EventStore, clock Clock, pub Publisher, cache Cache, ttlPending time.Duration) *Service {
	if ttlPending == 0 {
		ttlPending = 15 * time.Second
	}
	return &Service{
		repo:       repo,
		events:     events,
		pub:        pub,
		cache:      cache,
		clock:      clock,
		ttlPending: ttlPending,
	}
}

// probeWindow fills the defaults the conflict detector expects: missing
// dates collapse to today, a missing end date to the start date, missing
// times to the whole day.
func (s *Service) probeWindow(dateStart, dateEnd time.Time, timeStart, timeEnd string) (time.Time, time.Time, string, string) {
	if dateStart.IsZero() {
		dateStart = s.clock.Now().UTC().Truncate(24 * time.Hour)
	}
	if dateEnd.IsZero() {
		dateEnd = dateStart
	}
	if timeStart == "" {
		timeStart = defaultTimeStart
	}
	if timeEnd == "" {
		timeEnd = defaultTimeEnd
	}
	return dateStart, dateEnd, timeStart, timeEnd
}

// RequestDetail is a request plus the live conflicting events attached when
// the cached conflict flag is set.
type RequestDetail struct {
	*domain.EventRequest
	ConflictingEvents []*domain.Event
}
