package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/org-calendar/internal/application/event"
	"github.com/baechuer/org-calendar/internal/domain"
	"github.com/baechuer/org-calendar/internal/transport/http/dto"
	"github.com/baechuer/org-calendar/internal/transport/http/response"
	"github.com/baechuer/org-calendar/internal/transport/http/validate"
)

type EventsHandler struct {
	svc *event.Service
}

func NewEventsHandler(svc *event.Service) *EventsHandler {
	return &EventsHandler{svc: svc}
}

// List returns the visible calendar, optionally narrowed to a date window.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var from, to *time.Time
	if v := q.Get("startDate"); v != "" {
		t, err := domain.ParseDate(v)
		if err != nil {
			response.Err(w, r, domain.ErrValidationMeta("invalid query param", map[string]string{
				"startDate": "must be YYYY-MM-DD",
			}))
			return
		}
		from = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := domain.ParseDate(v)
		if err != nil {
			response.Err(w, r, domain.ErrValidationMeta("invalid query param", map[string]string{
				"endDate": "must be YYYY-MM-DD",
			}))
			return
		}
		to = &t
	}

	events, err := h.svc.ListVisible(r.Context(), from, to)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResps(events))
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := validate.ParseID(chi.URLParam(r, "event_id"))
	if !ok {
		response.Err(w, r, domain.ErrValidationMeta("invalid path param", map[string]string{
			"event_id": "must be a positive integer",
		}))
		return
	}
	ev, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToEventResp(ev))
}

func (h *EventsHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	depts, err := h.svc.ListDepartments(r.Context())
	if err != nil {
		response.Err(w, r, err)
		return
	}
	out := make([]dto.DepartmentResp, 0, len(depts))
	for _, d := range depts {
		out = append(out, dto.ToDepartmentResp(d))
	}
	response.Data(w, http.StatusOK, out)
}
