package query

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers ordinance query routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/ordinances", func(r chi.Router) {
		r.Post("/query", h.Ask)
	})
}
