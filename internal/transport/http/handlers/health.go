package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/org-calendar/internal/transport/http/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler { return &HealthHandler{db: db} }

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			response.Fail(w, http.StatusServiceUnavailable, "unavailable", "database unreachable", nil, "")
			return
		}
	}
	response.Data(w, http.StatusOK, map[string]string{"status": "ok"})
}
