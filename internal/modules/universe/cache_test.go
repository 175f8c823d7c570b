package universe

import (
	"testing"
	"time"

	"github.com/aristath/rebound/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCache_PutGet(t *testing.T) {
	cache := setupCache(t)

	in := &domain.StockInput{
		Symbol:       "SBIN.NS",
		CurrentPrice: 65,
		MaxPrice2Y:   100,
		Historical:   bars(testNow, 100, 65),
		Fundamentals: domain.Fundamentals{ROE: domain.Float(0.12)},
	}
	require.NoError(t, cache.Put("SBIN.NS", in, testNow))

	got, err := cache.Get("SBIN.NS", testNow.Add(-time.Minute))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0.12, *got.Fundamentals.ROE)
	assert.Nil(t, got.Fundamentals.PERatio, "absent ratios stay absent")
	assert.True(t, got.Historical[0].Date.Equal(testNow))

	stale, err := cache.Get("SBIN.NS", testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Nil(t, stale)

	missing, err := cache.Get("NOPE.NS", time.Time{})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSnapshotCache_Purge(t *testing.T) {
	cache := setupCache(t)

	require.NoError(t, cache.Put("OLD.NS", &domain.StockInput{Symbol: "OLD.NS"}, testNow.Add(-48*time.Hour)))
	require.NoError(t, cache.Put("NEW.NS", &domain.StockInput{Symbol: "NEW.NS"}, testNow))

	n, err := cache.Purge(testNow.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := cache.Get("NEW.NS", time.Time{})
	require.NoError(t, err)
	assert.NotNil(t, got)
}
