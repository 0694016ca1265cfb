package civics

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers structured civics routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/civics", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Answer)
	})
}
