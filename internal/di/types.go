/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every application dependency. It is created by Wire()
 * and handed to the server and scheduler.
 */
package di

import (
	"github.com/aristath/rebound/internal/backup"
	"github.com/aristath/rebound/internal/clients/yahoo"
	"github.com/aristath/rebound/internal/database"
	"github.com/aristath/rebound/internal/events"
	"github.com/aristath/rebound/internal/modules/scoring"
	"github.com/aristath/rebound/internal/modules/screening"
	"github.com/aristath/rebound/internal/modules/universe"
	"github.com/aristath/rebound/internal/modules/watchlist"
	"github.com/aristath/rebound/internal/scheduler"
)

// Container holds all dependencies for the application
type Container struct {
	// Databases
	ScreenerDB *database.DB // stocks, analysis results, price history, watchlist
	CacheDB    *database.DB // market data snapshots, safe to delete

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Clients
	YahooClient yahoo.Client

	// Repositories
	ScreeningRepo *screening.Repository
	WatchlistRepo *watchlist.Repository
	SnapshotCache *universe.SnapshotCache

	// Services
	Engine           *scoring.Engine
	Universe         *universe.Universe
	Collector        *universe.Collector
	ScreeningService *screening.Service
	BackupService    *backup.Service // nil when backups are not configured

	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered jobs for manual triggering
type JobInstances struct {
	Scan         scheduler.Job
	Backup       scheduler.Job // nil when backups are not configured
	CacheCleanup scheduler.Job
}

// Close closes every open database
func (c *Container) Close() {
	for _, db := range []*database.DB{c.ScreenerDB, c.CacheDB} {
		if db != nil {
			db.Close()
		}
	}
}
