package jurisdiction

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers jurisdiction lookup routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/jurisdictions", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/lookup", h.Lookup)
	})
}
