package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/rebound/internal/modules/scoring"
	scoringdomain "github.com/aristath/rebound/internal/modules/scoring/domain"
	"github.com/aristath/rebound/internal/modules/screening"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	summary    *screening.ScanSummary
	scanErr    error
	detail     *scoringdomain.DetailedScoreResult
	detailErr  error
	results    []screening.StoredResult
	purged     int64
	lastLimit  int
	lastDays   int
	lastSymbol string
}

func (f *fakeService) Scan(ctx context.Context, trigger string) (*screening.ScanSummary, error) {
	return f.summary, f.scanErr
}

func (f *fakeService) Detail(ctx context.Context, symbol string) (*scoringdomain.DetailedScoreResult, string, error) {
	f.lastSymbol = symbol
	return f.detail, "Tata Consultancy Services", f.detailErr
}

func (f *fakeService) Results(limit int) ([]screening.StoredResult, error) {
	f.lastLimit = limit
	return f.results, nil
}

func (f *fakeService) History(symbol string, days int) ([]screening.StoredResult, error) {
	f.lastSymbol = symbol
	f.lastDays = days
	return f.results, nil
}

func (f *fakeService) Update() (int64, error) {
	return f.purged, nil
}

func setupRouter(svc *fakeService) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewHandlers(svc, zerolog.Nop()).RegisterRoutes(r)
	})
	return r
}

func get(t *testing.T, router http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHandleScan(t *testing.T) {
	svc := &fakeService{summary: &screening.ScanSummary{
		ScanID:    "scan-1",
		StartedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Stocks: []screening.Candidate{
			{Symbol: "TCS.NS", OverallScore: 7.5, Recommendation: scoringdomain.RecommendationBuy},
		},
		Scanned:   3,
		Scored:    2,
		Qualified: 1,
		Failed:    1,
	}}

	w, resp := get(t, setupRouter(svc), "/api/scan")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "scan-1", resp["scan_id"])
	assert.Equal(t, "2024-05-01T10:00:00Z", resp["timestamp"])
	assert.Equal(t, float64(1), resp["count"])

	stocks := resp["stocks"].([]interface{})
	require.Len(t, stocks, 1)
	assert.Equal(t, "TCS.NS", stocks[0].(map[string]interface{})["symbol"])

	summary := resp["summary"].(map[string]interface{})
	assert.Equal(t, float64(3), summary["scanned"])
	assert.Equal(t, float64(1), summary["failed"])
}

func TestHandleScan_InProgress(t *testing.T) {
	svc := &fakeService{scanErr: screening.ErrScanInProgress}

	w, resp := get(t, setupRouter(svc), "/api/scan")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, resp["success"])
}

func TestHandleStock(t *testing.T) {
	t.Run("scored stock", func(t *testing.T) {
		svc := &fakeService{detail: &scoringdomain.DetailedScoreResult{
			ScoreResult: scoringdomain.ScoreResult{Symbol: "TCS.NS", OverallScore: 6.2},
		}}

		w, resp := get(t, setupRouter(svc), "/api/stock/tcs")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "TCS.NS", svc.lastSymbol)
		stock := resp["stock"].(map[string]interface{})
		assert.Equal(t, "TCS.NS", stock["symbol"])
		assert.Equal(t, "Tata Consultancy Services", stock["name"])
		assert.Contains(t, stock, "detailed_metrics")
	})

	t.Run("rejected stock is null", func(t *testing.T) {
		w, resp := get(t, setupRouter(&fakeService{}), "/api/stock/TCS.NS")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, resp["success"])
		assert.Nil(t, resp["stock"])
	})

	t.Run("no data", func(t *testing.T) {
		svc := &fakeService{detailErr: fmt.Errorf("%w: XYZ.NS", screening.ErrNotFound)}

		w, resp := get(t, setupRouter(svc), "/api/stock/XYZ")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Stock not found", resp["error"])
	})

	t.Run("malformed data", func(t *testing.T) {
		svc := &fakeService{detailErr: fmt.Errorf("%w: empty recent series", scoring.ErrMalformedInput)}

		w, _ := get(t, setupRouter(svc), "/api/stock/XYZ")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		svc := &fakeService{detailErr: errors.New("connection reset")}

		w, _ := get(t, setupRouter(svc), "/api/stock/XYZ")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandleUpdate(t *testing.T) {
	w, resp := get(t, setupRouter(&fakeService{purged: 4}), "/api/update")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Stock list updated successfully", resp["message"])
	assert.Equal(t, float64(4), resp["purged"])
}

func TestHandleResults_Limit(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		status   int
		expected int
	}{
		{"default", "", http.StatusOK, defaultResultsLimit},
		{"explicit", "?limit=5", http.StatusOK, 5},
		{"capped", "?limit=100000", http.StatusOK, maxResultsLimit},
		{"non numeric", "?limit=abc", http.StatusBadRequest, 0},
		{"zero", "?limit=0", http.StatusBadRequest, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{}
			w, _ := get(t, setupRouter(svc), "/api/results"+tc.query)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.expected, svc.lastLimit)
		})
	}
}

func TestHandleHistory(t *testing.T) {
	svc := &fakeService{results: []screening.StoredResult{{Symbol: "INFY.NS", OverallScore: 5}}}

	w, resp := get(t, setupRouter(svc), "/api/stock/infy/history?days=7")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INFY.NS", svc.lastSymbol)
	assert.Equal(t, 7, svc.lastDays)
	assert.Len(t, resp["history"].([]interface{}), 1)
}
