package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all screening routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/scan", h.HandleScan)     // Run a full scan
	r.Get("/update", h.HandleUpdate) // Reload symbols, purge stale cache
	r.Get("/results", h.HandleResults)
	r.Get("/stock/{symbol}", h.HandleStock)
	r.Get("/stock/{symbol}/history", h.HandleHistory)
}
