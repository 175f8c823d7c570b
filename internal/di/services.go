// Package di provides dependency injection for repositories and services.
package di

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aristath/rebound/internal/backup"
	"github.com/aristath/rebound/internal/clients/yahoo"
	"github.com/aristath/rebound/internal/config"
	"github.com/aristath/rebound/internal/events"
	"github.com/aristath/rebound/internal/modules/scoring"
	"github.com/aristath/rebound/internal/modules/screening"
	"github.com/aristath/rebound/internal/modules/universe"
	"github.com/aristath/rebound/internal/modules/watchlist"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates repositories over the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container.ScreenerDB == nil || container.CacheDB == nil {
		return fmt.Errorf("databases must be initialized first")
	}

	container.ScreeningRepo = screening.NewRepository(container.ScreenerDB.Conn(), log)
	container.WatchlistRepo = watchlist.NewRepository(container.ScreenerDB.Conn(), log)
	container.SnapshotCache = universe.NewSnapshotCache(container.CacheDB.Conn(), log)

	return nil
}

// InitializeServices creates the scoring engine, collector, screening service
// and, when configured, the backup service. client may be nil to use the live
// Yahoo client.
func InitializeServices(container *Container, cfg *config.Config, client yahoo.Client, log zerolog.Logger) error {
	rules := scoring.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := scoring.LoadRules(cfg.RulesFile)
		if err != nil {
			return fmt.Errorf("failed to load scoring rules: %w", err)
		}
		rules = loaded
		log.Info().Str("file", cfg.RulesFile).Msg("Loaded scoring rules")
	}

	engine, err := scoring.NewEngine(rules, log)
	if err != nil {
		return fmt.Errorf("failed to create scoring engine: %w", err)
	}
	container.Engine = engine

	container.EventBus = events.NewBus()
	container.EventManager = events.NewManager(container.EventBus, log)

	if client == nil {
		client = yahoo.NewNativeClient(log)
	}
	container.YahooClient = client

	container.Universe = universe.NewUniverse(cfg.Symbols)
	container.Collector = universe.NewCollector(client, container.SnapshotCache, cfg.CacheTTL, log)

	container.ScreeningService = screening.NewService(
		container.Collector,
		container.Engine,
		container.ScreeningRepo,
		container.Universe,
		container.SnapshotCache,
		container.EventManager,
		screening.Config{
			Symbols:    cfg.Symbols,
			ScanLimit:  cfg.ScanLimit,
			TopResults: cfg.TopResults,
			Workers:    cfg.ScanWorkers,
			CacheTTL:   cfg.CacheTTL,
		},
		log,
	)

	if cfg.Backup.Enabled() {
		store, err := backup.NewS3Store(context.Background(), backup.StoreConfig{
			Bucket:    cfg.Backup.Bucket,
			Endpoint:  cfg.Backup.Endpoint,
			Region:    cfg.Backup.Region,
			AccessKey: cfg.Backup.AccessKey,
			SecretKey: cfg.Backup.SecretKey,
		})
		if err != nil {
			return fmt.Errorf("failed to create backup store: %w", err)
		}
		container.BackupService = backup.NewService(
			container.ScreenerDB,
			store,
			container.EventManager,
			cfg.Backup.Prefix,
			filepath.Join(cfg.DataDir, "backup-staging"),
			log,
		)
	}

	return nil
}
