package universe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/rebound/internal/clients/yahoo"
	"github.com/aristath/rebound/internal/domain"
	"github.com/aristath/rebound/internal/utils"
	"github.com/rs/zerolog"
)

// ErrNoData is returned when the market data source has no history for a symbol
var ErrNoData = errors.New("no market data")

const (
	historyPeriod = "2y"
	recentPeriod  = "3mo"
	recentDays    = 90
)

// Collector assembles a StockInput from the market data client
type Collector struct {
	client    yahoo.Client
	cache     *SnapshotCache
	validator *PriceValidator
	ttl       time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewCollector creates a collector. cache may be nil to disable caching.
func NewCollector(client yahoo.Client, cache *SnapshotCache, ttl time.Duration, log zerolog.Logger) *Collector {
	return &Collector{
		client:    client,
		cache:     cache,
		validator: NewPriceValidator(log),
		ttl:       ttl,
		now:       time.Now,
		log:       log.With().Str("component", "collector").Logger(),
	}
}

// Collect fetches two years of daily bars, the recent window and the
// fundamentals for symbol, and derives current price, peak and decline.
func (c *Collector) Collect(ctx context.Context, symbol string) (*domain.StockInput, error) {
	symbol = yahoo.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	if cached := c.fromCache(symbol); cached != nil {
		return cached, nil
	}
	defer utils.OperationTimer("collect "+symbol, c.log)()

	historical, err := c.client.GetHistoricalPrices(symbol, historyPeriod)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}
	historical = c.validator.Sanitize(symbol, historical)
	if len(historical) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recent, err := c.client.GetHistoricalPrices(symbol, recentPeriod)
	if err != nil || len(recent) == 0 {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Recent window unavailable, slicing history")
		recent = historical.Since(c.now().AddDate(0, 0, -recentDays))
	} else {
		recent = c.validator.Sanitize(symbol, recent)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fundamentals, err := c.client.GetFundamentalData(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fundamentals for %s: %w", symbol, err)
	}

	name := symbol
	if quoteName, err := c.client.GetQuoteName(symbol); err != nil {
		c.log.Debug().Err(err).Str("symbol", symbol).Msg("Quote name unavailable")
	} else if quoteName != nil {
		name = *quoteName
	}

	current := historical.Last().Close
	peak := historical.MaxClose()

	in := &domain.StockInput{
		Symbol:          symbol,
		Name:            name,
		CurrentPrice:    current,
		MaxPrice2Y:      peak,
		PriceDeclinePct: domain.DeclinePct(peak, current),
		Historical:      historical,
		Recent:          recent,
		Fundamentals:    *fundamentals,
	}

	c.store(symbol, in)
	return in, nil
}

func (c *Collector) fromCache(symbol string) *domain.StockInput {
	if c.cache == nil || c.ttl <= 0 {
		return nil
	}
	in, err := c.cache.Get(symbol, c.now().Add(-c.ttl))
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Snapshot cache read failed")
		return nil
	}
	if in != nil {
		c.log.Debug().Str("symbol", symbol).Msg("Using cached snapshot")
	}
	return in
}

func (c *Collector) store(symbol string, in *domain.StockInput) {
	if c.cache == nil || c.ttl <= 0 {
		return
	}
	if err := c.cache.Put(symbol, in, c.now()); err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Snapshot cache write failed")
	}
}
