package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all scoring routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/scoring", func(r chi.Router) {
		r.Post("/score", h.HandleScore)         // Gate and score supplied market data
		r.Post("/breakdown", h.HandleBreakdown) // Per-rule points, no gate
		r.Get("/rules", h.HandleGetRules)       // Active thresholds and weights
	})
}
