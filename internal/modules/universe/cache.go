package universe

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/rebound/internal/domain"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotCache stores collected stock inputs in the cache database,
// msgpack encoded
type SnapshotCache struct {
	cacheDB *sql.DB
	log     zerolog.Logger
}

// NewSnapshotCache creates a new snapshot cache
func NewSnapshotCache(cacheDB *sql.DB, log zerolog.Logger) *SnapshotCache {
	return &SnapshotCache{
		cacheDB: cacheDB,
		log:     log.With().Str("repo", "snapshot_cache").Logger(),
	}
}

// Get returns the cached input for symbol if it was stored after notBefore.
// A miss returns nil, nil.
func (c *SnapshotCache) Get(symbol string, notBefore time.Time) (*domain.StockInput, error) {
	var (
		payload   []byte
		fetchedAt int64
	)
	err := c.cacheDB.QueryRow(
		"SELECT payload, fetched_at FROM stock_snapshots WHERE symbol = ?", symbol,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	if time.Unix(fetchedAt, 0).Before(notBefore) {
		return nil, nil
	}

	var in domain.StockInput
	if err := msgpack.Unmarshal(payload, &in); err != nil {
		// A corrupt entry is a miss; the next Put overwrites it.
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Discarding undecodable snapshot")
		return nil, nil
	}
	return &in, nil
}

// Put stores the input for symbol, replacing any earlier snapshot
func (c *SnapshotCache) Put(symbol string, in *domain.StockInput, fetchedAt time.Time) error {
	payload, err := msgpack.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = c.cacheDB.Exec(`
		INSERT INTO stock_snapshots (symbol, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		symbol, payload, fetchedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Purge deletes snapshots stored before olderThan and returns how many were removed
func (c *SnapshotCache) Purge(olderThan time.Time) (int64, error) {
	result, err := c.cacheDB.Exec("DELETE FROM stock_snapshots WHERE fetched_at < ?", olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge snapshots: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged snapshots: %w", err)
	}
	return n, nil
}
