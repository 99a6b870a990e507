package event

import (
	"context"
	"time"

	"github.com/baechuer/org-calendar/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type EventRepo interface {
	Create(ctx context.Context, e *domain.Event) error
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	UpdateFields(ctx context.Context, id int64, f domain.EventFields) error

	// ListVisible returns non-canceled events; with a window, events whose
	// date range intersects it (full-overlap test).
	ListVisible(ctx context.Context, from, to *time.Time) ([]*domain.Event, error)

	// ConflictCandidates returns planned events whose dateStart or dateEnd
	// falls inside the window. Events spanning the whole window are excluded
	// on purpose, see GetConflictingEvents.
	ConflictCandidates(ctx context.Context, dateStart, dateEnd time.Time) ([]*domain.Event, error)

	ClearRequestLink(ctx context.Context, id int64) error

	// RemoveCascade deletes subscriptions, change logs and the event row in
	// one transaction.
	RemoveCascade(ctx context.Context, id int64) error
}

type DepartmentRepo interface {
	ListAll(ctx context.Context) ([]domain.Department, error)
	ResolveIDs(ctx context.Context, ids []int64) ([]domain.Department, error)
}
