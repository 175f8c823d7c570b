package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/rebound/internal/modules/screening"
	"github.com/rs/zerolog"
)

// Scanner runs a screening scan
type Scanner interface {
	Scan(ctx context.Context, trigger string) (*screening.ScanSummary, error)
}

// ScanJob runs a full scan on schedule
type ScanJob struct {
	log     zerolog.Logger
	scanner Scanner
	timeout time.Duration
}

// NewScanJob creates a new ScanJob. timeout bounds a single run.
func NewScanJob(scanner Scanner, timeout time.Duration, log zerolog.Logger) *ScanJob {
	return &ScanJob{
		log:     log.With().Str("job", "scan").Logger(),
		scanner: scanner,
		timeout: timeout,
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "scan"
}

// Run executes the scan
func (j *ScanJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	summary, err := j.scanner.Scan(ctx, "schedule")
	if errors.Is(err, screening.ErrScanInProgress) {
		j.log.Info().Msg("Scan already running, skipping scheduled run")
		return nil
	}
	if err != nil {
		return fmt.Errorf("scheduled scan failed: %w", err)
	}

	j.log.Info().
		Str("scan_id", summary.ScanID).
		Int("qualified", summary.Qualified).
		Msg("Scheduled scan finished")
	return nil
}
