package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/org-calendar/internal/application/request"
	"github.com/baechuer/org-calendar/internal/domain"
	"github.com/baechuer/org-calendar/internal/transport/http/dto"
	"github.com/baechuer/org-calendar/internal/transport/http/middleware"
	"github.com/baechuer/org-calendar/internal/transport/http/response"
	"github.com/baechuer/org-calendar/internal/transport/http/validate"
)

type RequestsHandler struct {
	svc *request.Service
}

func NewRequestsHandler(svc *request.Service) *RequestsHandler {
	return &RequestsHandler{svc: svc}
}

func requestIDParam(r *http.Request) (int64, error) {
	id, ok := validate.ParseID(chi.URLParam(r, "request_id"))
	if !ok {
		return 0, domain.ErrValidationMeta("invalid path param", map[string]string{
			"request_id": "must be a positive integer",
		})
	}
	return id, nil
}

// Create makes a new request owned by the caller. Admin authors skip
// moderation entirely.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRequestReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, domain.ErrValidationMeta("invalid json body", map[string]string{
			"body": "malformed JSON or unknown fields",
		}))
		return
	}
	fields, err := req.ToFields()
	if err != nil {
		response.Err(w, r, err)
		return
	}

	res, err := h.svc.Create(r.Context(), request.CreateCmd{
		OrganizerID: middleware.UserID(r),
		Fields:      fields,
		AutoApprove: middleware.IsAdmin(r),
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToRequestResp(res.Request, res.ConflictingEvents))
}

// List returns the caller's requests; admins see everything unless they ask
// for mine=true.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	var organizerID *int64
	uid := middleware.UserID(r)
	if !middleware.IsAdmin(r) || r.URL.Query().Get("mine") == "true" {
		organizerID = &uid
	}

	items, err := h.svc.List(r.Context(), organizerID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	out := make([]dto.RequestResp, 0, len(items))
	for _, it := range items {
		out = append(out, dto.ToRequestResp(it, nil))
	}
	response.Data(w, http.StatusOK, out)
}

func (h *RequestsHandler) PendingCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.PendingCount(r.Context())
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.PendingCountResp{Count: count})
}

func (h *RequestsHandler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// zero dates mean "not given" and let the engine default them
	parseDate := func(name string) (time.Time, error) {
		v := q.Get(name)
		if v == "" {
			return time.Time{}, nil
		}
		t, err := domain.ParseDate(v)
		if err != nil {
			return time.Time{}, domain.ErrValidationMeta("invalid query param", map[string]string{name: "must be YYYY-MM-DD"})
		}
		return t, nil
	}

	dateStart, err := parseDate("dateStart")
	if err != nil {
		response.Err(w, r, err)
		return
	}
	dateEnd, err := parseDate("dateEnd")
	if err != nil {
		response.Err(w, r, err)
		return
	}

	var requestID *int64
	if v := q.Get("requestId"); v != "" {
		id, ok := validate.ParseID(v)
		if !ok {
			response.Err(w, r, domain.ErrValidationMeta("invalid query param", map[string]string{
				"requestId": "must be a positive integer",
			}))
			return
		}
		requestID = &id
	}

	conflicts, err := h.svc.CheckConflict(r.Context(), dateStart, dateEnd, q.Get("timeStart"), q.Get("timeEnd"), requestID)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ConflictCheckResp{
		HasConflict:       len(conflicts) > 0,
		ConflictingEvents: dto.ToEventResps(conflicts),
	})
}

func (h *RequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	detail, err := h.svc.FindOne(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if detail.OrganizerID != middleware.UserID(r) && !middleware.IsAdmin(r) {
		response.Err(w, r, domain.ErrForbidden("not your request"))
		return
	}
	response.Data(w, http.StatusOK, dto.ToRequestDetailResp(detail))
}

// Update patches a request. Owners editing an approved request are forced
// back through moderation; only admins may set an arbitrary status.
func (h *RequestsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	head, err := h.svc.HeadForPermission(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	isAdmin := middleware.IsAdmin(r)
	if head.OrganizerID != middleware.UserID(r) && !isAdmin {
		response.Err(w, r, domain.ErrForbidden("not your request"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.Err(w, r, domain.ErrValidation("unreadable body"))
		return
	}
	cmd, err := dto.ParseUpdate(id, body)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	if !isAdmin {
		if cmd.Status != nil && *cmd.Status != domain.RequestPending {
			response.Err(w, r, domain.ErrForbidden("only admins may set request status"))
			return
		}
		if head.Status == domain.RequestApproved {
			pending := domain.RequestPending
			cmd.Status = &pending
		}
	}

	detail, err := h.svc.Update(r.Context(), cmd)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToRequestDetailResp(detail))
}

func (h *RequestsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	detail, err := h.svc.Submit(r.Context(), id, middleware.UserID(r))
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if detail == nil {
		// silent no-op: not the owner or no such request
		response.Data(w, http.StatusOK, nil)
		return
	}
	response.Data(w, http.StatusOK, dto.ToRequestDetailResp(detail))
}

// Delete removes a request and its linked event. Owners may only delete
// while nothing has been materialized; admins always can.
func (h *RequestsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	head, err := h.svc.HeadForPermission(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	if !middleware.IsAdmin(r) {
		if head.OrganizerID != middleware.UserID(r) {
			response.Err(w, r, domain.ErrForbidden("not your request"))
			return
		}
		if head.EventID != nil {
			response.Err(w, r, domain.ErrForbidden("request already has a published event"))
			return
		}
	}

	if err := h.svc.Remove(r.Context(), id); err != nil {
		response.Err(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RequestsHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	var req dto.ModerateReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, domain.ErrValidationMeta("invalid json body", map[string]string{
			"body": "malformed JSON or unknown fields",
		}))
		return
	}

	res, err := h.svc.Moderate(r.Context(), id, domain.RequestStatus(req.Status), req.Comments)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToModerationResp(res))
}
