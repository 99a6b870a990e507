package request

import (
	"context"
	"encoding/json"
	"time"

	"github.com/baechuer/org-calendar/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type RequestRepo interface {
	Create(ctx context.Context, r *domain.EventRequest) error

	// CreateApproved persists an auto-approved request, materializes its
	// event and backfills eventId, all in one transaction. Returns the new
	// event id.
	CreateApproved(ctx context.Context, r *domain.EventRequest) (int64, error)

	GetByID(ctx context.Context, id int64) (*domain.EventRequest, error)
	Head(ctx context.Context, id int64) (*domain.RequestHead, error)
	Save(ctx context.Context, r *domain.EventRequest) error

	// SetStatus updates status and, when non-nil, comments and the revision
	// snapshot.
	SetStatus(ctx context.Context, id int64, status domain.RequestStatus, comments *string, snapshot json.RawMessage) error

	// ApproveAndMaterialize sets status/comments and creates-or-updates the
	// linked event in one transaction, backfilling eventId when a new event
	// is created. Returns the event id.
	ApproveAndMaterialize(ctx context.Context, id int64, comments *string, f domain.EventFields) (int64, error)

	// RemoveCascade unlinks and deletes the request plus its event (with the
	// event's subscriptions and change logs) in one transaction.
	RemoveCascade(ctx context.Context, id int64) error

	List(ctx context.Context, organizerID *int64) ([]*domain.EventRequest, error)
	PendingCount(ctx context.Context) (int, error)
}

// EventStore is the slice of the event service the lifecycle engine needs.
type EventStore interface {
	GetConflictingEvents(ctx context.Context, dateStart, dateEnd time.Time, timeStart, timeEnd string, excludeEventID *int64) ([]*domain.Event, error)
	UpdateFromRequest(ctx context.Context, eventID int64, f domain.EventFields) (*domain.Event, error)
}

// Publisher emits notification envelopes for the external notification
// service. Wired to rabbitmq in production, noop in dev.
type Publisher interface {
	PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
