// Package universe provides the scan universe and collects market data for it.
package universe

import (
	"strings"
	"sync"

	"github.com/aristath/rebound/internal/clients/yahoo"
)

// DefaultSymbols is the NSE large-cap list scanned when no list is configured
var DefaultSymbols = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "HDFC.NS",
	"ICICIBANK.NS", "KOTAKBANK.NS", "HINDUNILVR.NS", "SBIN.NS", "BHARTIARTL.NS",
	"ITC.NS", "ASIANPAINT.NS", "LT.NS", "AXISBANK.NS", "MARUTI.NS",
	"SUNPHARMA.NS", "ULTRACEMCO.NS", "BAJFINANCE.NS", "HCLTECH.NS", "WIPRO.NS",
	"NESTLEIND.NS", "POWERGRID.NS", "TITAN.NS", "NTPC.NS", "TECHM.NS",
	"ONGC.NS", "BAJAJFINSV.NS", "M&M.NS", "TATASTEEL.NS", "ADANIGREEN.NS",
	"JSWSTEEL.NS", "INDUSINDBK.NS", "GRASIM.NS", "BRITANNIA.NS", "CIPLA.NS",
	"DRREDDY.NS", "EICHERMOT.NS", "BPCL.NS", "COALINDIA.NS", "HINDALCO.NS",
	"TATACONSUM.NS", "UPL.NS", "BAJAJ-AUTO.NS", "HEROMOTOCO.NS", "DIVISLAB.NS",
	"SHREECEM.NS", "VEDL.NS", "TATAMOTORS.NS", "APOLLOHOSP.NS", "SBILIFE.NS",
}

// Universe is the ordered, de-duplicated list of symbols to scan
type Universe struct {
	mu      sync.RWMutex
	symbols []string
}

// NewUniverse normalizes configured symbols, falling back to DefaultSymbols
func NewUniverse(configured []string) *Universe {
	u := &Universe{}
	u.Replace(configured)
	return u
}

// Replace swaps the symbol list. An empty list restores the defaults.
func (u *Universe) Replace(configured []string) {
	source := configured
	if len(source) == 0 {
		source = DefaultSymbols
	}

	seen := make(map[string]bool, len(source))
	symbols := make([]string, 0, len(source))
	for _, s := range source {
		s = yahoo.NormalizeSymbol(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}
	u.mu.Lock()
	u.symbols = symbols
	u.mu.Unlock()
}

// Symbols returns at most limit symbols in order. limit <= 0 returns all.
func (u *Universe) Symbols(limit int) []string {
	u.mu.RLock()
	defer u.mu.RUnlock()

	n := len(u.symbols)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]string, n)
	copy(out, u.symbols[:n])
	return out
}

// Contains reports whether symbol is part of the universe
func (u *Universe) Contains(symbol string) bool {
	symbol = yahoo.NormalizeSymbol(symbol)

	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, s := range u.symbols {
		if strings.EqualFold(s, symbol) {
			return true
		}
	}
	return false
}
