package decision

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers decision evaluation routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/decisions", func(r chi.Router) {
		r.Post("/evaluate", h.Evaluate)
	})
}
