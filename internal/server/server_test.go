package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/rebound/internal/database"
	"github.com/aristath/rebound/internal/events"
	"github.com/aristath/rebound/internal/modules/screening"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

type fakeStats struct{}

func (fakeStats) Statistics() (*screening.Statistics, error) {
	return &screening.Statistics{TotalStocks: 3, TotalAnalyses: 7, Qualifying: 2}, nil
}

type fakeScans struct{ running bool }

func (f fakeScans) Running() bool { return f.running }

func openDB(t *testing.T, profile database.DatabaseProfile, name string) *database.DB {
	t.Helper()
	db, err := database.New(database.Config{Path: ":memory:", Profile: profile, Name: name})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestServer(t *testing.T, bus *events.Bus) *Server {
	t.Helper()
	return New(Config{
		Log:        zerolog.Nop(),
		ScreenerDB: openDB(t, database.ProfileStandard, database.NameScreener),
		CacheDB:    openDB(t, database.ProfileCache, database.NameCache),
		Bus:        bus,
		Statistics: fakeStats{},
		Scans:      fakeScans{running: true},
		Port:       0,
		DevMode:    true,
	})
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, events.NewBus())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "rebound", resp["service"])
}

func TestSystemStatus(t *testing.T) {
	srv := newTestServer(t, events.NewBus())

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp SystemStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.ScanRunning)
	assert.Positive(t, resp.Goroutines)
	require.Len(t, resp.Databases, 2)
	assert.Equal(t, database.NameScreener, resp.Databases[0].Name)
	assert.True(t, resp.Databases[0].Healthy)
	assert.Positive(t, resp.Databases[0].PageCount)
	require.NotNil(t, resp.Statistics)
	assert.Equal(t, 7, resp.Statistics.TotalAnalyses)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, events.NewBus())

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParseTypes(t *testing.T) {
	assert.Equal(t, events.AllEventTypes, parseTypes(""))
	assert.Equal(t,
		[]events.EventType{events.ScanCompleted, events.StockScored},
		parseTypes(" SCAN_COMPLETED,STOCK_SCORED,UNKNOWN,SCAN_COMPLETED"),
	)
	assert.Empty(t, parseTypes("UNKNOWN"))
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestEventsStream(t *testing.T) {
	bus := events.NewBus()
	srv := newTestServer(t, bus)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events/ws?types=" + string(events.ScanCompleted)
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	hello := readMessage(t, ctx, conn)
	assert.Equal(t, "connected", hello["type"])

	require.Eventually(t, func() bool {
		return bus.SubscriberCount(events.ScanCompleted) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Zero(t, bus.SubscriberCount(events.StockScored))

	bus.Emit(events.StockScored, "screening", map[string]interface{}{"symbol": "TCS.NS"})
	bus.Emit(events.ScanCompleted, "screening", map[string]interface{}{"scanned": 50})

	msg := readMessage(t, ctx, conn)
	assert.Equal(t, string(events.ScanCompleted), msg["type"])
	assert.Equal(t, "screening", msg["module"])
	assert.Equal(t, float64(50), msg["data"].(map[string]interface{})["scanned"])

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool {
		return bus.SubscriberCount(events.ScanCompleted) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
