package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
// events and metrics may be nil, which leaves their routes unmounted.
func NewRouter(h *Handler, events http.Handler, metrics http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(Logging)

	r.Get("/health", h.Health)

	r.Post("/scan", h.Scan)
	r.Post("/alias/set", h.SetAlias)
	r.Post("/alias/delete", h.DeleteAlias)

	r.Get("/presets", h.ListPresets)
	r.Post("/settings/save", h.SavePresets)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	return r
}
