package watchlist

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/rebound/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

func setupDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(database.Config{Path: ":memory:", Profile: database.ProfileStandard, Name: database.NameScreener})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertResult(t *testing.T, db *database.DB, symbol string, overall float64, at time.Time) {
	t.Helper()
	_, err := db.Conn().Exec(
		"INSERT OR IGNORE INTO stocks (symbol, name, updated_at) VALUES (?, ?, ?)",
		symbol, symbol+" Ltd", at.Format(time.RFC3339),
	)
	require.NoError(t, err)
	_, err = db.Conn().Exec(`
		INSERT INTO analysis_results (scan_id, symbol, analysis_date, current_price, max_price_2y,
			price_decline, fundamental_score, technical_score, overall_score, recommendation,
			meets_criteria, analysis_data)
		VALUES ('scan', ?, ?, 65, 100, 35, 6, 4, ?, 'Hold', 0, '{}')`,
		symbol, at.Format(time.RFC3339), overall,
	)
	require.NoError(t, err)
}

func TestRepository_AddListRemove(t *testing.T) {
	db := setupDB(t)
	repo := NewRepository(db.Conn(), zerolog.Nop())

	require.NoError(t, repo.Add("tcs.ns", "watch results", testNow))
	require.NoError(t, repo.Add("INFY.NS", "", testNow.Add(time.Hour)))
	require.NoError(t, repo.Add("TCS.NS", "updated note", testNow.Add(2*time.Hour)))

	insertResult(t, db, "TCS.NS", 5.5, testNow.AddDate(0, 0, -2))
	insertResult(t, db, "TCS.NS", 6.5, testNow.AddDate(0, 0, -1))

	entries, err := repo.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "INFY.NS", entries[0].Symbol)
	assert.Nil(t, entries[0].OverallScore)
	assert.Nil(t, entries[0].LatestAnalysis)

	tcs := entries[1]
	assert.Equal(t, "TCS.NS", tcs.Symbol)
	assert.Equal(t, "updated note", tcs.Notes)
	assert.True(t, tcs.AddedDate.Equal(testNow))
	assert.Equal(t, "TCS.NS Ltd", tcs.Name)
	require.NotNil(t, tcs.OverallScore)
	assert.Equal(t, 6.5, *tcs.OverallScore)
	assert.Equal(t, "Hold", tcs.Recommendation)

	require.NoError(t, repo.Remove("tcs.ns"))
	assert.ErrorIs(t, repo.Remove("TCS.NS"), ErrNotFound)

	entries, err = repo.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRepository_AddRequiresSymbol(t *testing.T) {
	repo := NewRepository(setupDB(t).Conn(), zerolog.Nop())
	assert.Error(t, repo.Add("  ", "", testNow))
}

func TestHandlers(t *testing.T) {
	repo := NewRepository(setupDB(t).Conn(), zerolog.Nop())
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewHandlers(repo, zerolog.Nop()).RegisterRoutes(r)
	})

	do := func(method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
		var payload []byte
		if body != nil {
			var err error
			payload, err = json.Marshal(body)
			require.NoError(t, err)
		}
		req := httptest.NewRequest(method, path, bytes.NewReader(payload))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return w, resp
	}

	w, resp := do(http.MethodPost, "/api/watchlist", AddRequest{Symbol: "reliance", Notes: "energy"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "RELIANCE.NS", resp["symbol"])

	w, _ = do(http.MethodPost, "/api/watchlist", AddRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = do(http.MethodGet, "/api/watchlist", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), resp["count"])

	w, _ = do(http.MethodDelete, "/api/watchlist/RELIANCE", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = do(http.MethodDelete, "/api/watchlist/RELIANCE", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, resp["success"])
}
