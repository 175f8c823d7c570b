// Package server provides the HTTP server and routing for the screener.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/rebound/internal/database"
	"github.com/aristath/rebound/internal/events"
	scoringhandlers "github.com/aristath/rebound/internal/modules/scoring/api/handlers"
	screeninghandlers "github.com/aristath/rebound/internal/modules/screening/handlers"
	universehandlers "github.com/aristath/rebound/internal/modules/universe/handlers"
	"github.com/aristath/rebound/internal/modules/watchlist"
)

const (
	requestTimeout = 60 * time.Second
	version        = "1.0.0"
)

// Config holds server configuration
type Config struct {
	Log        zerolog.Logger
	ScreenerDB *database.DB
	CacheDB    *database.DB
	Bus        *events.Bus
	Statistics StatisticsProvider
	Scans      ScanState

	Scoring   *scoringhandlers.Handlers
	Screening *screeninghandlers.Handlers
	Watchlist *watchlist.Handlers
	Universe  *universehandlers.UniverseHandlers

	Port        int
	ScanTimeout time.Duration
	DevMode     bool
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            Config
	systemHandlers *SystemHandlers
	eventsStream   *EventsStreamHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = 10 * time.Minute
	}

	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			[]*database.DB{cfg.ScreenerDB, cfg.CacheDB},
			cfg.Statistics,
			cfg.Scans,
		),
		eventsStream: NewEventsStreamHandler(cfg.Bus, cfg.Log),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	// No server-wide read or write deadline: scans and the event stream run
	// longer than a normal request and are bounded per route instead.
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/system/status", s.systemHandlers.HandleSystemStatus)
			if s.cfg.Scoring != nil {
				s.cfg.Scoring.RegisterRoutes(r)
			}
			if s.cfg.Watchlist != nil {
				s.cfg.Watchlist.RegisterRoutes(r)
			}
			if s.cfg.Universe != nil {
				s.cfg.Universe.RegisterRoutes(r)
			}
		})

		// Scans collect market data for every symbol
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.ScanTimeout))
			if s.cfg.Screening != nil {
				s.cfg.Screening.RegisterRoutes(r)
			}
		})

		r.Get("/events/ws", s.eventsStream.ServeHTTP)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
