package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/rebound/internal/domain"
	"github.com/aristath/rebound/internal/modules/scoring"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	engine, err := scoring.NewEngine(scoring.DefaultRules(), zerolog.Nop())
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandlers(engine, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func hoveringRequest() ScoreRequest {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(domain.PriceSeries, 60)
	for i := range series {
		c := 64 + float64(i%3)
		series[i] = domain.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return ScoreRequest{
		Symbol:       "INFY.NS",
		CurrentPrice: series.Last().Close,
		MaxPrice2Y:   100,
		Historical:   series,
		Recent:       series,
		Fundamentals: domain.Fundamentals{PERatio: domain.Float(12)},
	}
}

func post(t *testing.T, router http.Handler, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHandleScore_ComputesDecline(t *testing.T) {
	router := setupRouter(t)

	w, resp := post(t, router, "/scoring/score", hoveringRequest())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, false, resp["rejected"])

	stock := resp["stock"].(map[string]interface{})
	assert.Equal(t, "INFY.NS", stock["symbol"])
	assert.Equal(t, 2.0, stock["fundamental_score"])
}

func TestHandleScore_Rejected(t *testing.T) {
	router := setupRouter(t)

	req := hoveringRequest()
	decline := 10.0
	req.PriceDeclinePct = &decline

	w, resp := post(t, router, "/scoring/score", req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["rejected"])
	assert.Nil(t, resp["stock"])
}

func TestHandleScore_Detailed(t *testing.T) {
	router := setupRouter(t)

	req := hoveringRequest()
	req.Detailed = true

	_, resp := post(t, router, "/scoring/score", req)
	stock := resp["stock"].(map[string]interface{})
	assert.Contains(t, stock, "detailed_metrics")
}

func TestHandleScore_Malformed(t *testing.T) {
	router := setupRouter(t)

	req := hoveringRequest()
	req.Historical = nil

	w, resp := post(t, router, "/scoring/score", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])
}

func TestHandleScore_MissingSymbol(t *testing.T) {
	router := setupRouter(t)

	w, _ := post(t, router, "/scoring/score", ScoreRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleBreakdown(t *testing.T) {
	router := setupRouter(t)

	w, resp := post(t, router, "/scoring/breakdown", hoveringRequest())
	assert.Equal(t, http.StatusOK, w.Code)

	breakdown := resp["breakdown"].(map[string]interface{})
	technical := breakdown["technical"].(map[string]interface{})
	assert.Len(t, technical, 5)
}

func TestHandleGetRules(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/scoring/rules", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	gate := resp["data"].(map[string]interface{})["gate"].(map[string]interface{})
	assert.Equal(t, 30.0, gate["min_decline_pct"])
}

func TestHandleScore_RejectsOversizedBody(t *testing.T) {
	router := setupRouter(t)

	payload := append([]byte(`{"symbol":"`), bytes.Repeat([]byte("A"), MaxRequestBytes+1)...)
	payload = append(payload, []byte(`"}`)...)

	req := httptest.NewRequest(http.MethodPost, "/scoring/score", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
}
