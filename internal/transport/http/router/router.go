package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/baechuer/org-calendar/internal/config"
	"github.com/baechuer/org-calendar/internal/transport/http/handlers"
	authmw "github.com/baechuer/org-calendar/internal/transport/http/middleware"
)

func New(
	requests *handlers.RequestsHandler,
	events *handlers.EventsHandler,
	health *handlers.HealthHandler,
	auth *authmw.AuthMiddleware,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	r.Use(authmw.RequestID)
	r.Use(authmw.SecurityHeaders)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(authmw.AccessLog)

	if cfg.RLEnabled {
		r.Use(httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow))
	}

	r.Get("/healthz", health.Healthz)

	r.Route("/calendar/v1", func(r chi.Router) {
		// public calendar surface
		r.Get("/events", events.List)
		r.Get("/events/{event_id}", events.Get)
		r.Get("/departments", events.ListDepartments)

		r.Group(func(r chi.Router) {
			r.Use(auth.Require)

			r.Post("/event-requests", requests.Create)
			r.Get("/event-requests", requests.List)
			r.Get("/event-requests/check-conflict", requests.CheckConflict)
			r.Get("/event-requests/{request_id}", requests.Get)
			r.Patch("/event-requests/{request_id}", requests.Update)
			r.Post("/event-requests/{request_id}/submit", requests.Submit)
			r.Delete("/event-requests/{request_id}", requests.Delete)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Get("/event-requests/pending-count", requests.PendingCount)
				r.Patch("/event-requests/{request_id}/moderate", requests.Moderate)
			})
		})
	})

	return r
}
