// Package main is the entry point for the rebound screener. It scans a list
// of NSE stocks for recovery candidates on a schedule and serves the results
// over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/rebound/internal/config"
	"github.com/aristath/rebound/internal/di"
	scoringhandlers "github.com/aristath/rebound/internal/modules/scoring/api/handlers"
	screeninghandlers "github.com/aristath/rebound/internal/modules/screening/handlers"
	universehandlers "github.com/aristath/rebound/internal/modules/universe/handlers"
	"github.com/aristath/rebound/internal/modules/watchlist"
	"github.com/aristath/rebound/internal/server"
	"github.com/aristath/rebound/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("symbols", len(cfg.Symbols)).
		Msg("Starting rebound")

	container, jobs, err := di.Wire(cfg, nil, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Log:         log,
		ScreenerDB:  container.ScreenerDB,
		CacheDB:     container.CacheDB,
		Bus:         container.EventBus,
		Statistics:  container.ScreeningService,
		Scans:       container.ScreeningService,
		Scoring:     scoringhandlers.NewHandlers(container.Engine, log),
		Screening:   screeninghandlers.NewHandlers(container.ScreeningService, log),
		Watchlist:   watchlist.NewHandlers(container.WatchlistRepo, log),
		Universe:    universehandlers.NewUniverseHandlers(container.Universe, log),
		Port:        cfg.Port,
		ScanTimeout: 10 * time.Minute,
		DevMode:     cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	container.Scheduler.Start()

	// Drop expired snapshots left over from the previous run
	if err := container.Scheduler.RunNow(jobs.CacheCleanup); err != nil {
		log.Warn().Err(err).Msg("Initial cache cleanup failed")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
