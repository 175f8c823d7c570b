package watchlist

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/rebound/internal/clients/yahoo"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers provides HTTP handlers for the watchlist
type Handlers struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandlers creates a new watchlist handlers instance
func NewHandlers(repo *Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("module", "watchlist_handlers").Logger(),
	}
}

// AddRequest is the body of POST /api/watchlist
type AddRequest struct {
	Symbol string `json:"symbol"`
	Notes  string `json:"notes"`
}

// RegisterRoutes registers all watchlist routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/watchlist", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleAdd)
		r.Delete("/{symbol}", h.HandleRemove)
	})
}

// HandleList handles GET /api/watchlist
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list watchlist")
		h.writeError(w, "Failed to list watchlist", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"watchlist": entries,
		"count":     len(entries),
	})
}

// HandleAdd handles POST /api/watchlist
func (h *Handlers) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	symbol := yahoo.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		h.writeError(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	if err := h.repo.Add(symbol, req.Notes, time.Now()); err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to add to watchlist")
		h.writeError(w, "Failed to add to watchlist", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"symbol":  symbol,
	})
}

// HandleRemove handles DELETE /api/watchlist/{symbol}
func (h *Handlers) HandleRemove(w http.ResponseWriter, r *http.Request) {
	symbol := yahoo.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if err := h.repo.Remove(symbol); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to remove from watchlist")
		h.writeError(w, "Failed to remove from watchlist", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"symbol":  symbol,
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]interface{}{"success": false, "error": message})
}
