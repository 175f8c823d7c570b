// Package handlers provides HTTP handlers for the screening API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/rebound/internal/clients/yahoo"
	"github.com/aristath/rebound/internal/modules/scoring"
	scoringdomain "github.com/aristath/rebound/internal/modules/scoring/domain"
	"github.com/aristath/rebound/internal/modules/screening"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 500
	defaultHistoryDays  = 30
)

// ScreeningService is the part of screening.Service the handlers use
type ScreeningService interface {
	Scan(ctx context.Context, trigger string) (*screening.ScanSummary, error)
	Detail(ctx context.Context, symbol string) (*scoringdomain.DetailedScoreResult, string, error)
	Results(limit int) ([]screening.StoredResult, error)
	History(symbol string, days int) ([]screening.StoredResult, error)
	Update() (int64, error)
}

// Handlers provides HTTP handlers for screening
type Handlers struct {
	service ScreeningService
	log     zerolog.Logger
}

// NewHandlers creates a new screening handlers instance
func NewHandlers(service ScreeningService, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("module", "screening_handlers").Logger(),
	}
}

// StockDetail is a detailed analysis with the company name
type StockDetail struct {
	*scoringdomain.DetailedScoreResult
	Name string `json:"name"`
}

// HandleScan handles GET /api/scan
func (h *Handlers) HandleScan(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Scan(r.Context(), "api")
	if err != nil {
		if errors.Is(err, screening.ErrScanInProgress) {
			h.writeError(w, err.Error(), http.StatusConflict)
			return
		}
		if summary == nil {
			h.log.Error().Err(err).Msg("Scan failed")
			h.writeError(w, "Scan failed", http.StatusInternalServerError)
			return
		}
		h.log.Warn().Err(err).Msg("Scan finished early")
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"scan_id":   summary.ScanID,
		"timestamp": summary.StartedAt.Format(time.RFC3339),
		"stocks":    summary.Stocks,
		"count":     len(summary.Stocks),
		"summary": map[string]interface{}{
			"scanned":     summary.Scanned,
			"scored":      summary.Scored,
			"qualified":   summary.Qualified,
			"rejected":    summary.Rejected,
			"failed":      summary.Failed,
			"malformed":   summary.Malformed,
			"duration_ms": summary.Duration.Milliseconds(),
		},
	})
}

// HandleStock handles GET /api/stock/{symbol}
func (h *Handlers) HandleStock(w http.ResponseWriter, r *http.Request) {
	symbol := yahoo.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if symbol == "" {
		h.writeError(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	res, name, err := h.service.Detail(r.Context(), symbol)
	if err != nil {
		switch {
		case errors.Is(err, screening.ErrNotFound):
			h.writeError(w, "Stock not found", http.StatusNotFound)
		case errors.Is(err, scoring.ErrMalformedInput):
			h.log.Warn().Err(err).Str("symbol", symbol).Msg("Malformed market data")
			h.writeError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to analyze stock")
			h.writeError(w, "Failed to analyze stock", http.StatusInternalServerError)
		}
		return
	}

	var stock interface{}
	if res != nil {
		stock = StockDetail{DetailedScoreResult: res, Name: name}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stock":   stock,
	})
}

// HandleUpdate handles GET /api/update
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	purged, err := h.service.Update()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to update stock list")
		h.writeError(w, "Failed to update stock list", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Stock list updated successfully",
		"purged":  purged,
	})
}

// HandleResults handles GET /api/results
func (h *Handlers) HandleResults(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.intParam(w, r, "limit", defaultResultsLimit)
	if !ok {
		return
	}
	if limit > maxResultsLimit {
		limit = maxResultsLimit
	}

	results, err := h.service.Results(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load results")
		h.writeError(w, "Failed to load results", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
		"count":   len(results),
	})
}

// HandleHistory handles GET /api/stock/{symbol}/history
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	symbol := yahoo.NormalizeSymbol(chi.URLParam(r, "symbol"))
	days, ok := h.intParam(w, r, "days", defaultHistoryDays)
	if !ok {
		return
	}

	history, err := h.service.History(symbol, days)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to load history")
		h.writeError(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"symbol":  symbol,
		"days":    days,
		"history": history,
	})
}

func (h *Handlers) intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		h.writeError(w, "Invalid "+name+" parameter", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

// writeJSON writes a JSON response with status code
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]interface{}{"success": false, "error": message})
}
