package yahoo

import (
	"fmt"

	"github.com/aristath/rebound/internal/domain"
	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// NativeClient implements Client using go-yfinance library
type NativeClient struct {
	log zerolog.Logger
}

// NewNativeClient creates a new native Yahoo Finance client
func NewNativeClient(log zerolog.Logger) *NativeClient {
	return &NativeClient{
		log: log.With().Str("client", "yahoo-native").Logger(),
	}
}

// GetHistoricalPrices fetches split- and dividend-adjusted daily bars for period
// (e.g. "2y", "3mo"). Bars with a non-positive close are dropped.
func (c *NativeClient) GetHistoricalPrices(symbol string, period string) (domain.PriceSeries, error) {
	yahooSymbol := NormalizeSymbol(symbol)

	t, err := ticker.New(yahooSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	params := models.HistoryParams{
		Period:     period,
		Interval:   "1d",
		AutoAdjust: true,
	}

	bars, err := t.History(params)
	if err != nil {
		return nil, fmt.Errorf("failed to get historical prices: %w", err)
	}

	series := make(domain.PriceSeries, 0, len(bars))
	skipped := 0
	for _, bar := range bars {
		if bar.Close <= 0 {
			skipped++
			continue
		}
		series = append(series, domain.PriceBar{
			Date:   bar.Date,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: int64(bar.Volume),
		})
	}

	if skipped > 0 {
		c.log.Debug().Str("symbol", yahooSymbol).Int("skipped", skipped).Msg("Dropped bars without a close")
	}

	return series, nil
}

// GetFundamentalData fetches the ratios used for scoring. Ratios Yahoo does
// not report are left nil.
func (c *NativeClient) GetFundamentalData(symbol string) (*domain.Fundamentals, error) {
	yahooSymbol := NormalizeSymbol(symbol)

	t, err := ticker.New(yahooSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	info, err := t.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get info: %w", err)
	}

	// go-yfinance cannot tell a missing ratio from a reported zero
	return toFundamentals(quoteRatios{
		TrailingPE:       float64(info.TrailingPE),
		ForwardPE:        float64(info.ForwardPE),
		PriceToBook:      float64(info.PriceToBook),
		ReturnOnEquity:   float64(info.ReturnOnEquity),
		DebtToEquity:     float64(info.DebtToEquity),
		CurrentRatio:     float64(info.CurrentRatio),
		ProfitMargins:    float64(info.ProfitMargins),
		OperatingMargins: float64(info.OperatingMargins),
		RevenueGrowth:    float64(info.RevenueGrowth),
		EarningsGrowth:   float64(info.EarningsGrowth),
		DividendYield:    float64(info.DividendYield),
		MarketCap:        float64(info.MarketCap),
		Industry:         info.Industry,
	}), nil
}

// quoteRatios is the subset of the Yahoo quote summary used for scoring
type quoteRatios struct {
	TrailingPE       float64
	ForwardPE        float64
	PriceToBook      float64
	ReturnOnEquity   float64
	DebtToEquity     float64
	CurrentRatio     float64
	ProfitMargins    float64
	OperatingMargins float64
	RevenueGrowth    float64
	EarningsGrowth   float64
	DividendYield    float64
	MarketCap        float64
	Industry         string
}

// toFundamentals maps quote ratios to Fundamentals. go-yfinance reports a
// missing ratio as zero, so zero is the only value treated as absent;
// negative book value or debt to equity is kept and scored.
func toFundamentals(q quoteRatios) *domain.Fundamentals {
	f := &domain.Fundamentals{
		Sector: q.Industry,
	}

	f.PERatio = present(q.TrailingPE)
	f.ForwardPE = present(q.ForwardPE)
	f.PBRatio = present(q.PriceToBook)
	f.ROE = present(q.ReturnOnEquity)
	if q.DebtToEquity != 0 {
		// Reported as a percentage
		f.DebtToEquity = domain.Float(q.DebtToEquity / 100)
	}
	f.CurrentRatio = present(q.CurrentRatio)
	f.ProfitMargin = present(q.ProfitMargins)
	f.OperatingMargin = present(q.OperatingMargins)
	f.RevenueGrowth = present(q.RevenueGrowth)
	f.EarningsGrowth = present(q.EarningsGrowth)
	f.DividendYield = present(q.DividendYield)
	if q.MarketCap > 0 {
		f.MarketCap = domain.Float(q.MarketCap)
	}

	return f
}

func present(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return domain.Float(v)
}

// GetQuoteName gets security name (longName or shortName)
func (c *NativeClient) GetQuoteName(symbol string) (*string, error) {
	yahooSymbol := NormalizeSymbol(symbol)

	t, err := ticker.New(yahooSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	info, err := t.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get info: %w", err)
	}

	if info.LongName != "" {
		longName := info.LongName
		return &longName, nil
	}
	if info.ShortName != "" {
		shortName := info.ShortName
		return &shortName, nil
	}

	return nil, nil
}
