package request

import (
	"context"
	"encoding/json"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/org-calendar/internal/domain"
)

type ModerationResult struct {
	ID      int64
	Status  domain.RequestStatus
	EventID *int64
}

// Moderate is the admin decision on a pending request. Rejection requires a
// reason. Approval materializes the event: an already-linked event is
// updated in place, otherwise a new one is created and eventId backfilled,
// both inside one transaction at the storage boundary.
func (s *Service) Moderate(ctx context.Context, id int64, status domain.RequestStatus, comments *string) (*ModerationResult, error) {
	if !status.ModerationOutcome() {
		return nil, domain.ErrValidationMeta("invalid moderation status", map[string]string{"status": string(status)})
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if status == domain.RequestRejected && (comments == nil || strings.TrimSpace(*comments) == "") {
		return nil, domain.ErrValidation("a reason is required when rejecting a request")
	}

	res := &ModerationResult{ID: id, Status: status, EventID: req.EventID}

	switch status {
	case domain.RequestApproved:
		eventID, err := s.repo.ApproveAndMaterialize(ctx, id, comments, req.EventFields)
		if err != nil {
			return nil, err
		}
		res.EventID = &eventID
		s.notify(ctx, RoutingKeyRequestApproved, RequestStatusPayload{
			RequestID:   id,
			OrganizerID: req.OrganizerID,
			Status:      string(status),
			EventID:     &eventID,
		})

	case domain.RequestNeedsWork:
		snapshot := s.fieldsSnapshot(req)
		if err := s.repo.SetStatus(ctx, id, status, comments, snapshot); err != nil {
			return nil, err
		}
		s.notify(ctx, RoutingKeyRequestNeedsWork, RequestStatusPayload{
			RequestID:   id,
			OrganizerID: req.OrganizerID,
			Status:      string(status),
			Comments:    strOrEmpty(comments),
		})

	case domain.RequestRejected:
		// the linked event, if any, is never touched on rejection
		if err := s.repo.SetStatus(ctx, id, status, comments, nil); err != nil {
			return nil, err
		}
		s.notify(ctx, RoutingKeyRequestRejected, RequestStatusPayload{
			RequestID:   id,
			OrganizerID: req.OrganizerID,
			Status:      string(status),
			Comments:    strOrEmpty(comments),
		})
	}

	s.invalidatePendingCount(ctx)
	return res, nil
}

// fieldsSnapshot freezes the current field values so the UI can diff the
// resubmission against what the moderator saw.
func (s *Service) fieldsSnapshot(req *domain.EventRequest) json.RawMessage {
	snap := map[string]any{
		"title":             req.Title,
		"dateStart":         domain.DateString(req.DateStart),
		"dateEnd":           domain.DateString(req.DateEnd),
		"timeStart":         req.TimeStart,
		"timeEnd":           req.TimeEnd,
		"place":             req.Place,
		"format":            req.Format,
		"departmentIds":     req.DepartmentIDs,
		"labels":            req.Labels,
		"limitParticipants": req.LimitParticipants,
		"description":       req.Description,
	}
	b, err := json.Marshal(snap)
	if err != nil {
		zlog.Warn().Err(err).Int64("request_id", req.ID).Msg("revision snapshot marshal failed")
		return nil
	}
	return b
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
