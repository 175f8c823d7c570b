// Package di provides dependency injection for database connections.
package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/rebound/internal/config"
	"github.com/aristath/rebound/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens both databases and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// 1. screener.db - results, price history, watchlist
	screenerDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "screener.db"),
		Profile: database.ProfileStandard,
		Name:    database.NameScreener,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize screener database: %w", err)
	}
	container.ScreenerDB = screenerDB

	// 2. cache.db - market data snapshots
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    database.NameCache,
	})
	if err != nil {
		screenerDB.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	for _, db := range []*database.DB{screenerDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", db.Name(), err)
		}
	}

	log.Info().
		Str("screener", screenerDB.Path()).
		Str("cache", cacheDB.Path()).
		Msg("Databases initialized")

	return container, nil
}
