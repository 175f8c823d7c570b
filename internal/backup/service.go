// Package backup uploads consistent snapshots of the screener database to
// object storage.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aristath/rebound/internal/events"
	"github.com/rs/zerolog"
)

// Snapshotter writes a consistent copy of a database to a file
type Snapshotter interface {
	Name() string
	SnapshotTo(ctx context.Context, dest string) error
}

// ObjectStore receives uploaded snapshots
type ObjectStore interface {
	Bucket() string
	Upload(ctx context.Context, key string, body io.Reader) error
}

// EventEmitter publishes backup completion
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// Result describes an uploaded backup
type Result struct {
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	SizeBytes int64  `json:"size_bytes"`
}

// Service snapshots a database and uploads it
type Service struct {
	db       Snapshotter
	store    ObjectStore
	events   EventEmitter
	prefix   string
	stageDir string
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a backup service. Snapshots are staged in stageDir and
// removed after upload. emitter may be nil.
func NewService(db Snapshotter, store ObjectStore, emitter EventEmitter, prefix, stageDir string, log zerolog.Logger) *Service {
	return &Service{
		db:       db,
		store:    store,
		events:   emitter,
		prefix:   prefix,
		stageDir: stageDir,
		now:      time.Now,
		log:      log.With().Str("service", "backup").Logger(),
	}
}

// Key returns the object key for a backup taken at t:
// <prefix>/<yyyy-mm-dd>/<database>.db
func (s *Service) Key(t time.Time) string {
	return path.Join(s.prefix, t.UTC().Format("2006-01-02"), s.db.Name()+".db")
}

// Run snapshots the database and uploads it
func (s *Service) Run(ctx context.Context) (*Result, error) {
	start := s.now()

	if err := os.MkdirAll(s.stageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	stagePath := filepath.Join(s.stageDir, fmt.Sprintf("%s-%d.db", s.db.Name(), start.UnixNano()))
	defer os.Remove(stagePath)

	if err := s.db.SnapshotTo(ctx, stagePath); err != nil {
		return nil, fmt.Errorf("failed to snapshot %s: %w", s.db.Name(), err)
	}

	f, err := os.Open(stagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	key := s.Key(start)
	if err := s.store.Upload(ctx, key, f); err != nil {
		return nil, err
	}

	res := &Result{Bucket: s.store.Bucket(), Key: key, SizeBytes: info.Size()}
	if s.events != nil {
		s.events.EmitTyped("backup", &events.BackupCompletedData{
			Bucket:    res.Bucket,
			Key:       res.Key,
			SizeBytes: res.SizeBytes,
		})
	}

	s.log.Info().
		Str("bucket", res.Bucket).
		Str("key", res.Key).
		Int64("size_bytes", res.SizeBytes).
		Dur("duration", s.now().Sub(start)).
		Msg("Backup completed")

	return res, nil
}
