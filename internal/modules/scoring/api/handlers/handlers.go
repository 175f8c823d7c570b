// Package handlers provides HTTP handlers for scoring API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/rebound/internal/domain"
	"github.com/aristath/rebound/internal/modules/scoring"
	"github.com/rs/zerolog"
)

// Handlers provides HTTP handlers for scoring module
type Handlers struct {
	engine *scoring.Engine
	log    zerolog.Logger
}

// NewHandlers creates a new scoring handlers instance
func NewHandlers(engine *scoring.Engine, log zerolog.Logger) *Handlers {
	return &Handlers{
		engine: engine,
		log:    log.With().Str("module", "scoring_handlers").Logger(),
	}
}

// ScoreRequest carries pre-collected market data for ad-hoc scoring
type ScoreRequest struct {
	PriceDeclinePct *float64            `json:"price_decline_pct,omitempty"`
	Symbol          string              `json:"symbol"`
	Name            string              `json:"name,omitempty"`
	Historical      domain.PriceSeries  `json:"historical"`
	Recent          domain.PriceSeries  `json:"recent"`
	Fundamentals    domain.Fundamentals `json:"fundamentals"`
	CurrentPrice    float64             `json:"current_price"`
	MaxPrice2Y      float64             `json:"max_price_2y"`
	Detailed        bool                `json:"detailed,omitempty"`
}

// toInput fills in the decline when the caller left it out
func (req ScoreRequest) toInput() domain.StockInput {
	in := domain.StockInput{
		Symbol:       req.Symbol,
		Name:         req.Name,
		CurrentPrice: req.CurrentPrice,
		MaxPrice2Y:   req.MaxPrice2Y,
		Historical:   req.Historical,
		Recent:       req.Recent,
		Fundamentals: req.Fundamentals,
	}
	if req.PriceDeclinePct != nil {
		in.PriceDeclinePct = *req.PriceDeclinePct
	} else {
		in.PriceDeclinePct = domain.DeclinePct(req.MaxPrice2Y, req.CurrentPrice)
	}
	return in
}

// HandleScore handles POST /api/scoring/score
func (h *Handlers) HandleScore(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	in := req.toInput()

	var (
		result interface{}
		err    error
	)
	if req.Detailed {
		res, scoreErr := h.engine.ScoreDetailed(in)
		err = scoreErr
		if res != nil {
			result = res
		}
	} else {
		res, scoreErr := h.engine.Score(in)
		err = scoreErr
		if res != nil {
			result = res
		}
	}

	if err != nil {
		h.writeScoringError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"stock":    result,
		"rejected": result == nil,
	})
}

// HandleBreakdown handles POST /api/scoring/breakdown
func (h *Handlers) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	breakdown, err := h.engine.Breakdown(req.toInput())
	if err != nil {
		h.writeScoringError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"breakdown": breakdown,
	})
}

// HandleGetRules handles GET /api/scoring/rules
func (h *Handlers) HandleGetRules(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.engine.Rules(),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// MaxRequestBytes caps a score request body
const MaxRequestBytes = 4 << 20

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request) (ScoreRequest, bool) {
	var req ScoreRequest
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return req, false
		}
		h.log.Error().Err(err).Msg("Failed to decode score request")
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	if req.Symbol == "" {
		h.writeError(w, "Symbol is required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *Handlers) writeScoringError(w http.ResponseWriter, err error) {
	if errors.Is(err, scoring.ErrMalformedInput) {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.log.Error().Err(err).Msg("Scoring failed")
	h.writeError(w, "Scoring failed", http.StatusInternalServerError)
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
