// Package handlers provides HTTP handlers for the scan universe.
package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/aristath/rebound/internal/clients/yahoo"
	"github.com/aristath/rebound/internal/modules/universe"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// UniverseHandlers handles universe HTTP requests
type UniverseHandlers struct {
	universe *universe.Universe
	log      zerolog.Logger
}

// NewUniverseHandlers creates a new universe handlers instance
func NewUniverseHandlers(u *universe.Universe, log zerolog.Logger) *UniverseHandlers {
	return &UniverseHandlers{
		universe: u,
		log:      log.With().Str("handler", "universe").Logger(),
	}
}

// SectorReference is a sector with its reference P/E ratio
type SectorReference struct {
	Sector string  `json:"sector"`
	PE     float64 `json:"pe_ratio"`
}

// RegisterRoutes registers all universe routes
func (h *UniverseHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/universe", func(r chi.Router) {
		r.Get("/", h.HandleGetSymbols)
		r.Get("/sectors", h.HandleGetSectors)
		r.Get("/{symbol}", h.HandleGetSymbol)
	})
}

// HandleGetSymbols handles GET /api/universe
func (h *UniverseHandlers) HandleGetSymbols(w http.ResponseWriter, r *http.Request) {
	symbols := h.universe.Symbols(0)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbols": symbols,
		"count":   len(symbols),
	})
}

// HandleGetSectors handles GET /api/universe/sectors
func (h *UniverseHandlers) HandleGetSectors(w http.ResponseWriter, r *http.Request) {
	sectors := universe.Sectors()
	refs := make([]SectorReference, 0, len(sectors))
	for _, s := range sectors {
		refs = append(refs, SectorReference{Sector: s, PE: universe.SectorPE(s)})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Sector < refs[j].Sector })

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sectors":    refs,
		"default_pe": universe.DefaultSectorPE,
	})
}

// HandleGetSymbol handles GET /api/universe/{symbol}
func (h *UniverseHandlers) HandleGetSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := yahoo.NormalizeSymbol(chi.URLParam(r, "symbol"))
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"tracked": h.universe.Contains(symbol),
	})
}

func (h *UniverseHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
