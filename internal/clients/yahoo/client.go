// Package yahoo fetches daily prices and fundamental ratios from Yahoo Finance.
package yahoo

import (
	"strings"

	"github.com/aristath/rebound/internal/domain"
)

// ExchangeSuffix is appended to bare NSE symbols
const ExchangeSuffix = ".NS"

// Client is the market data surface the collector depends on
type Client interface {
	GetHistoricalPrices(symbol string, period string) (domain.PriceSeries, error)
	GetFundamentalData(symbol string) (*domain.Fundamentals, error)
	GetQuoteName(symbol string) (*string, error)
}

// NormalizeSymbol upper-cases a symbol and appends the NSE suffix when it has none
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || strings.HasSuffix(symbol, ExchangeSuffix) {
		return symbol
	}
	return symbol + ExchangeSuffix
}
