// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"
	"time"

	"github.com/aristath/rebound/internal/config"
	"github.com/aristath/rebound/internal/scheduler"
	"github.com/rs/zerolog"
)

const (
	scanJobTimeout   = 30 * time.Minute
	backupJobTimeout = 15 * time.Minute

	cacheCleanupSchedule = "0 15 * * * *" // hourly, quarter past
)

// RegisterJobs creates the scheduler and registers every job
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	sched := scheduler.New(log)
	instances := &JobInstances{}

	// Job 1: Scan
	instances.Scan = scheduler.NewScanJob(container.ScreeningService, scanJobTimeout, log)
	if err := sched.AddJob(cfg.ScanSchedule, instances.Scan); err != nil {
		return nil, fmt.Errorf("failed to register scan job: %w", err)
	}

	// Job 2: Cache cleanup and WAL checkpoints
	instances.CacheCleanup = scheduler.NewCacheCleanupJob(
		container.SnapshotCache,
		cfg.CacheTTL,
		log,
		container.ScreenerDB,
		container.CacheDB,
	)
	if err := sched.AddJob(cacheCleanupSchedule, instances.CacheCleanup); err != nil {
		return nil, fmt.Errorf("failed to register cache cleanup job: %w", err)
	}

	// Job 3: Backup (only with a configured bucket)
	if container.BackupService != nil {
		instances.Backup = scheduler.NewBackupJob(container.BackupService, backupJobTimeout, log)
		if err := sched.AddJob(cfg.Backup.Schedule, instances.Backup); err != nil {
			return nil, fmt.Errorf("failed to register backup job: %w", err)
		}
	}

	container.Scheduler = sched
	return instances, nil
}
