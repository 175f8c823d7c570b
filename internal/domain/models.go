// Package domain provides the market data models shared by the collector, the
// scoring engine and the persistence layer.
package domain

import (
	"fmt"
	"math"
	"time"
)

// PriceBar is a single daily OHLCV bar
type PriceBar struct {
	Date   time.Time `json:"date" msgpack:"date"`
	Open   float64   `json:"open" msgpack:"open"`
	High   float64   `json:"high" msgpack:"high"`
	Low    float64   `json:"low" msgpack:"low"`
	Close  float64   `json:"close" msgpack:"close"`
	Volume int64     `json:"volume" msgpack:"volume"`
}

// PriceSeries is an ordered sequence of daily bars, ascending by date
type PriceSeries []PriceBar

// Closes returns the closing prices in order
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close
	}
	return closes
}

// Volumes returns the traded volumes as floats, in order
func (s PriceSeries) Volumes() []float64 {
	volumes := make([]float64, len(s))
	for i, bar := range s {
		volumes[i] = float64(bar.Volume)
	}
	return volumes
}

// Last returns the most recent bar. The series must not be empty.
func (s PriceSeries) Last() PriceBar {
	return s[len(s)-1]
}

// MaxClose returns the highest close in the series, 0 when empty
func (s PriceSeries) MaxClose() float64 {
	max := 0.0
	for _, bar := range s {
		if bar.Close > max {
			max = bar.Close
		}
	}
	return max
}

// Since returns the bars dated on or after from
func (s PriceSeries) Since(from time.Time) PriceSeries {
	for i, bar := range s {
		if !bar.Date.Before(from) {
			return s[i:]
		}
	}
	return PriceSeries{}
}

// Validate checks ordering and numeric sanity of every bar
func (s PriceSeries) Validate() error {
	for i, bar := range s {
		if !isFinite(bar.Close) || bar.Close <= 0 {
			return fmt.Errorf("bar %d (%s): invalid close %v", i, bar.Date.Format("2006-01-02"), bar.Close)
		}
		if bar.Volume < 0 {
			return fmt.Errorf("bar %d (%s): negative volume %d", i, bar.Date.Format("2006-01-02"), bar.Volume)
		}
		if i > 0 && !bar.Date.After(s[i-1].Date) {
			return fmt.Errorf("bar %d (%s): dates not strictly ascending", i, bar.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Fundamentals holds financial ratios. A nil field means no data, which is
// different from a reported zero.
type Fundamentals struct {
	// Scored ratios
	PERatio       *float64 `json:"pe_ratio" msgpack:"pe_ratio"`
	PBRatio       *float64 `json:"pb_ratio" msgpack:"pb_ratio"`
	ROE           *float64 `json:"roe" msgpack:"roe"`
	DebtToEquity  *float64 `json:"debt_to_equity" msgpack:"debt_to_equity"`
	CurrentRatio  *float64 `json:"current_ratio" msgpack:"current_ratio"`
	ProfitMargin  *float64 `json:"profit_margin" msgpack:"profit_margin"`
	RevenueGrowth *float64 `json:"revenue_growth" msgpack:"revenue_growth"`
	DividendYield *float64 `json:"dividend_yield" msgpack:"dividend_yield"`

	// Informational, passed through for reporting
	ForwardPE       *float64 `json:"forward_pe,omitempty" msgpack:"forward_pe"`
	ROA             *float64 `json:"roa,omitempty" msgpack:"roa"`
	QuickRatio      *float64 `json:"quick_ratio,omitempty" msgpack:"quick_ratio"`
	GrossMargin     *float64 `json:"gross_margin,omitempty" msgpack:"gross_margin"`
	OperatingMargin *float64 `json:"operating_margin,omitempty" msgpack:"operating_margin"`
	EarningsGrowth  *float64 `json:"earnings_growth,omitempty" msgpack:"earnings_growth"`
	BookValue       *float64 `json:"book_value,omitempty" msgpack:"book_value"`
	MarketCap       *float64 `json:"market_cap,omitempty" msgpack:"market_cap"`
	EnterpriseValue *float64 `json:"enterprise_value,omitempty" msgpack:"enterprise_value"`
	PayoutRatio     *float64 `json:"payout_ratio,omitempty" msgpack:"payout_ratio"`
	Sector          string   `json:"sector,omitempty" msgpack:"sector"`
}

// Validate rejects NaN or infinite ratio values. Absent values are fine.
func (f Fundamentals) Validate() error {
	fields := map[string]*float64{
		"pe_ratio":       f.PERatio,
		"pb_ratio":       f.PBRatio,
		"roe":            f.ROE,
		"debt_to_equity": f.DebtToEquity,
		"current_ratio":  f.CurrentRatio,
		"profit_margin":  f.ProfitMargin,
		"revenue_growth": f.RevenueGrowth,
		"dividend_yield": f.DividendYield,
	}
	for name, v := range fields {
		if v != nil && !isFinite(*v) {
			return fmt.Errorf("fundamental %s is not a finite number", name)
		}
	}
	return nil
}

// StockInput is everything the scoring engine needs for one stock
type StockInput struct {
	Symbol          string       `json:"symbol" msgpack:"symbol"`
	Name            string       `json:"name" msgpack:"name"`
	CurrentPrice    float64      `json:"current_price" msgpack:"current_price"`
	MaxPrice2Y      float64      `json:"max_price_2y" msgpack:"max_price_2y"`
	PriceDeclinePct float64      `json:"price_decline_pct" msgpack:"price_decline_pct"`
	Historical      PriceSeries  `json:"historical" msgpack:"historical"`
	Recent          PriceSeries  `json:"recent" msgpack:"recent"`
	Fundamentals    Fundamentals `json:"fundamentals" msgpack:"fundamentals"`
}

// DeclinePct returns how far price sits below peak, in percent
func DeclinePct(peak, price float64) float64 {
	if peak == 0 {
		return 0
	}
	return (peak - price) / peak * 100
}

// Float returns a pointer to v, for building Fundamentals literals
func Float(v float64) *float64 {
	return &v
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
