package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SnapshotPurger drops cached market data
type SnapshotPurger interface {
	Purge(olderThan time.Time) (int64, error)
}

// Checkpointer truncates a database write-ahead log
type Checkpointer interface {
	Name() string
	WALCheckpoint(mode string) error
}

// CacheCleanupJob purges expired market data snapshots and checkpoints the
// WAL of every database
type CacheCleanupJob struct {
	log       zerolog.Logger
	cache     SnapshotPurger
	databases []Checkpointer
	ttl       time.Duration
	now       func() time.Time
}

// NewCacheCleanupJob creates a new CacheCleanupJob
func NewCacheCleanupJob(cache SnapshotPurger, ttl time.Duration, log zerolog.Logger, databases ...Checkpointer) *CacheCleanupJob {
	return &CacheCleanupJob{
		log:       log.With().Str("job", "cache_cleanup").Logger(),
		cache:     cache,
		databases: databases,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Run purges expired snapshots, then checkpoints. A failed checkpoint is
// logged and does not stop the others.
func (j *CacheCleanupJob) Run() error {
	purged, err := j.cache.Purge(j.now().Add(-j.ttl))
	if err != nil {
		return fmt.Errorf("failed to purge snapshots: %w", err)
	}

	checkpointed := 0
	for _, db := range j.databases {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().
				Err(err).
				Str("database", db.Name()).
				Msg("Failed to checkpoint WAL")
			continue
		}
		checkpointed++
	}

	j.log.Info().
		Int64("purged", purged).
		Int("checkpointed", checkpointed).
		Msg("Cache cleanup completed")
	return nil
}
