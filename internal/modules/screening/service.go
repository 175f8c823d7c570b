package screening

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aristath/rebound/internal/domain"
	"github.com/aristath/rebound/internal/events"
	"github.com/aristath/rebound/internal/modules/scoring"
	scoringdomain "github.com/aristath/rebound/internal/modules/scoring/domain"
	"github.com/aristath/rebound/internal/modules/universe"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrScanInProgress is returned when a scan is requested while another runs
var ErrScanInProgress = errors.New("scan already in progress")

const moduleName = "screening"

// Collector fetches the market data for one symbol
type Collector interface {
	Collect(ctx context.Context, symbol string) (*domain.StockInput, error)
}

// Scorer gates and scores collected market data
type Scorer interface {
	Score(in domain.StockInput) (*scoringdomain.ScoreResult, error)
	ScoreDetailed(in domain.StockInput) (*scoringdomain.DetailedScoreResult, error)
	Breakdown(in domain.StockInput) (*scoringdomain.ScoreBreakdown, error)
}

// SymbolSource lists the symbols to scan
type SymbolSource interface {
	Symbols(limit int) []string
	Replace(configured []string)
}

// SnapshotPurger drops cached market data
type SnapshotPurger interface {
	Purge(olderThan time.Time) (int64, error)
}

// EventEmitter publishes scan progress
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
	EmitError(module string, err error, context map[string]interface{})
}

// Config controls scan size and parallelism
type Config struct {
	Symbols    []string
	ScanLimit  int
	TopResults int
	Workers    int
	CacheTTL   time.Duration
}

// Service runs scans and detailed analyses
type Service struct {
	collector Collector
	scorer    Scorer
	repo      *Repository
	symbols   SymbolSource
	cache     SnapshotPurger
	events    EventEmitter
	cfg       Config
	now       func() time.Time
	log       zerolog.Logger

	mu      sync.Mutex
	running bool
}

// NewService creates a screening service. cache and emitter may be nil.
func NewService(
	collector Collector,
	scorer Scorer,
	repo *Repository,
	symbols SymbolSource,
	cache SnapshotPurger,
	emitter EventEmitter,
	cfg Config,
	log zerolog.Logger,
) *Service {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Service{
		collector: collector,
		scorer:    scorer,
		repo:      repo,
		symbols:   symbols,
		cache:     cache,
		events:    emitter,
		cfg:       cfg,
		now:       time.Now,
		log:       log.With().Str("service", "screening").Logger(),
	}
}

type outcome struct {
	candidate *Candidate
	scored    bool
	failed    bool
	malformed bool
}

// Scan collects and scores the first ScanLimit symbols, persists every
// result and returns the TopResults qualifying stocks, best first.
// A failure on one symbol is logged and the scan continues.
func (s *Service) Scan(ctx context.Context, trigger string) (*ScanSummary, error) {
	if !s.begin() {
		return nil, ErrScanInProgress
	}
	defer s.end()

	summary := &ScanSummary{
		ScanID:    uuid.NewString(),
		StartedAt: s.now(),
		Stocks:    make([]Candidate, 0),
	}
	symbols := s.symbols.Symbols(s.cfg.ScanLimit)

	s.log.Info().
		Str("scan_id", summary.ScanID).
		Str("trigger", trigger).
		Int("symbols", len(symbols)).
		Int("workers", s.cfg.Workers).
		Msg("Starting scan")
	s.emit(&events.ScanStartedData{ScanID: summary.ScanID, Symbols: len(symbols), Trigger: trigger})

	jobs := make(chan string)
	results := make(chan outcome)

	var wg sync.WaitGroup
	workers := s.cfg.Workers
	if workers > len(symbols) {
		workers = len(symbols)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				results <- s.scanOne(ctx, summary.ScanID, symbol)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, symbol := range symbols {
			select {
			case jobs <- symbol:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for o := range results {
		summary.Scanned++
		switch {
		case o.malformed:
			summary.Malformed++
		case o.failed:
			summary.Failed++
		case !o.scored:
			summary.Rejected++
		default:
			summary.Scored++
			if o.candidate != nil {
				summary.Stocks = append(summary.Stocks, *o.candidate)
			}
		}
	}

	sort.SliceStable(summary.Stocks, func(i, j int) bool {
		if summary.Stocks[i].OverallScore != summary.Stocks[j].OverallScore {
			return summary.Stocks[i].OverallScore > summary.Stocks[j].OverallScore
		}
		return summary.Stocks[i].Symbol < summary.Stocks[j].Symbol
	})
	summary.Qualified = len(summary.Stocks)
	if s.cfg.TopResults > 0 && len(summary.Stocks) > s.cfg.TopResults {
		summary.Stocks = summary.Stocks[:s.cfg.TopResults]
	}
	summary.Duration = s.now().Sub(summary.StartedAt)

	s.emit(&events.ScanCompletedData{
		ScanID:     summary.ScanID,
		Scanned:    summary.Scanned,
		Scored:     summary.Scored,
		Qualified:  summary.Qualified,
		Failed:     summary.Failed,
		Malformed:  summary.Malformed,
		DurationMs: summary.Duration.Milliseconds(),
	})

	s.log.Info().
		Str("scan_id", summary.ScanID).
		Int("scanned", summary.Scanned).
		Int("scored", summary.Scored).
		Int("qualified", summary.Qualified).
		Int("rejected", summary.Rejected).
		Int("failed", summary.Failed).
		Int("malformed", summary.Malformed).
		Dur("duration", summary.Duration).
		Msg("Scan completed")

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("scan interrupted: %w", err)
	}
	return summary, nil
}

func (s *Service) scanOne(ctx context.Context, scanID, symbol string) outcome {
	log := s.log.With().Str("scan_id", scanID).Str("symbol", symbol).Logger()

	in, err := s.collector.Collect(ctx, symbol)
	if err != nil {
		if errors.Is(err, universe.ErrNoData) {
			log.Warn().Msg("No market data")
		} else {
			log.Error().Err(err).Msg("Failed to collect market data")
		}
		return outcome{failed: true}
	}

	now := s.now()
	if err := s.repo.SaveStock(in, now); err != nil {
		log.Warn().Err(err).Msg("Failed to save stock")
	}
	if err := s.repo.SavePriceHistory(in.Symbol, in.Historical); err != nil {
		log.Warn().Err(err).Msg("Failed to save price history")
	}

	res, err := s.scorer.Score(*in)
	if err != nil {
		if errors.Is(err, scoring.ErrMalformedInput) {
			log.Error().Err(err).Msg("Malformed market data")
			if s.events != nil {
				s.events.EmitError(moduleName, err, map[string]interface{}{"scan_id": scanID, "symbol": symbol})
			}
			return outcome{malformed: true}
		}
		log.Error().Err(err).Msg("Scoring failed")
		return outcome{failed: true}
	}
	if res == nil {
		return outcome{}
	}

	breakdown, err := s.scorer.Breakdown(*in)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to build score breakdown")
	}
	if err := s.repo.SaveResult(scanID, in, res, breakdown, now); err != nil {
		log.Error().Err(err).Msg("Failed to save result")
	}

	s.emit(&events.StockScoredData{
		ScanID:         scanID,
		Symbol:         res.Symbol,
		Recommendation: string(res.Recommendation),
		OverallScore:   res.OverallScore,
		MeetsCriteria:  res.MeetsCriteria,
	})

	o := outcome{scored: true}
	if res.MeetsCriteria {
		o.candidate = &Candidate{
			Symbol:           res.Symbol,
			Name:             in.Name,
			Recommendation:   res.Recommendation,
			CurrentPrice:     res.CurrentPrice,
			PriceDecline:     res.PriceDeclinePct,
			FundamentalScore: res.FundamentalScore,
			TechnicalScore:   res.TechnicalScore,
			OverallScore:     res.OverallScore,
		}
	}
	return o
}

// Detail collects and scores one symbol with display metrics. A nil result
// with a nil error means the stock did not pass screening.
func (s *Service) Detail(ctx context.Context, symbol string) (*scoringdomain.DetailedScoreResult, string, error) {
	in, err := s.collector.Collect(ctx, symbol)
	if err != nil {
		if errors.Is(err, universe.ErrNoData) {
			return nil, "", fmt.Errorf("%w: %s", ErrNotFound, symbol)
		}
		return nil, "", err
	}

	res, err := s.scorer.ScoreDetailed(*in)
	if err != nil {
		return nil, in.Name, err
	}
	return res, in.Name, nil
}

// Results returns the best persisted qualifying results
func (s *Service) Results(limit int) ([]StoredResult, error) {
	return s.repo.LatestResults(limit)
}

// History returns the results for symbol from the last days days
func (s *Service) History(symbol string, days int) ([]StoredResult, error) {
	if days <= 0 {
		days = 30
	}
	return s.repo.History(symbol, s.now().AddDate(0, 0, -days))
}

// Statistics returns screener database counts
func (s *Service) Statistics() (*Statistics, error) {
	return s.repo.Statistics()
}

// Update reloads the configured symbol list and drops cached market data
// older than the cache TTL. Returns the number of purged snapshots.
func (s *Service) Update() (int64, error) {
	s.symbols.Replace(s.cfg.Symbols)

	if s.cache == nil {
		return 0, nil
	}
	purged, err := s.cache.Purge(s.now().Add(-s.cfg.CacheTTL))
	if err != nil {
		return 0, fmt.Errorf("failed to purge snapshot cache: %w", err)
	}
	s.log.Info().Int64("purged", purged).Msg("Stock list updated")
	return purged, nil
}

// Running reports whether a scan is in progress
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Service) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Service) end() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Service) emit(data events.EventData) {
	if s.events != nil {
		s.events.EmitTyped(moduleName, data)
	}
}
