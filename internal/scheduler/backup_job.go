package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/rebound/internal/backup"
	"github.com/rs/zerolog"
)

// Backuper uploads a database snapshot
type Backuper interface {
	Run(ctx context.Context) (*backup.Result, error)
}

// BackupJob uploads the screener database to object storage
type BackupJob struct {
	log     zerolog.Logger
	backup  Backuper
	timeout time.Duration
}

// NewBackupJob creates a new BackupJob
func NewBackupJob(b Backuper, timeout time.Duration, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		log:     log.With().Str("job", "backup").Logger(),
		backup:  b,
		timeout: timeout,
	}
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "backup"
}

// Run executes the backup
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	res, err := j.backup.Run(ctx)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	j.log.Info().
		Str("key", res.Key).
		Int64("size_bytes", res.SizeBytes).
		Msg("Backup uploaded")
	return nil
}
