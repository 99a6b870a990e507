package request

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	appCtx "github.com/baechuer/org-calendar/internal/pkg/context"
)

const (
	EnvelopeVersion  = 1
	EnvelopeProducer = "calendar-service"

	RoutingKeyRequestSubmitted = "request.submitted"
	RoutingKeyRequestApproved  = "request.approved"
	RoutingKeyRequestRejected  = "request.rejected"
	RoutingKeyRequestNeedsWork = "request.needs_work"
	RoutingKeyEventUpdated     = "event.updated"
)

// Envelope is the stable contract consumed by the notification service.
type Envelope[T any] struct {
	Version    int       `json:"version"`
	Producer   string    `json:"producer"`
	MessageID  string    `json:"message_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    T         `json:"payload"`
}

// RequestStatusPayload covers the request.* routing keys.
type RequestStatusPayload struct {
	RequestID   int64  `json:"request_id"`
	OrganizerID int64  `json:"organizer_id"`
	Status      string `json:"status"`
	Comments    string `json:"comments,omitempty"`
	EventID     *int64 `json:"event_id,omitempty"`
}

// EventUpdatedPayload covers event.updated (subscribers are told the
// calendar entry changed).
type EventUpdatedPayload struct {
	EventID   int64  `json:"event_id"`
	RequestID int64  `json:"request_id"`
	Title     string `json:"title"`
}

// notify publishes best-effort: a broker hiccup must not fail the workflow
// that already committed.
func (s *Service) notify(ctx context.Context, routingKey string, payload any) {
	if s.pub == nil {
		return
	}
	env := Envelope[any]{
		Version:    EnvelopeVersion,
		Producer:   EnvelopeProducer,
		MessageID:  uuid.NewString(),
		TraceID:    appCtx.GetRequestID(ctx),
		OccurredAt: s.clock.Now().UTC(),
		Payload:    payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		zlog.Warn().Err(err).Str("routing_key", routingKey).Msg("envelope marshal failed")
		return
	}
	if err := s.pub.PublishEvent(ctx, routingKey, env.MessageID, body); err != nil {
		zlog.Warn().Err(err).Str("routing_key", routingKey).Msg("notification publish failed")
	}
}
