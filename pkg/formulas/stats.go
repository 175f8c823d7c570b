package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is used to annualize daily statistics
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (n-1 denominator)
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// MinOf returns the smallest value, or false for an empty slice
func MinOf(data []float64) (float64, bool) {
	if len(data) == 0 {
		return 0, false
	}
	m := data[0]
	for _, v := range data[1:] {
		if v < m {
			m = v
		}
	}
	return m, true
}

// Tail returns the last n values (or all of them when fewer exist).
// The result shares memory with data.
func Tail(data []float64, n int) []float64 {
	if n <= 0 {
		return data[:0]
	}
	if len(data) <= n {
		return data
	}
	return data[len(data)-n:]
}

// CalculateReturns converts prices to percentage returns
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}

// AnnualizedVolatility returns stddev(daily returns) × √252 as a percentage.
// Returns nil when fewer than two returns are available.
func AnnualizedVolatility(closes []float64) *float64 {
	returns := CalculateReturns(closes)
	if len(returns) < 2 {
		return nil
	}

	vol := StdDev(returns) * math.Sqrt(TradingDaysPerYear) * 100
	if math.IsNaN(vol) || math.IsInf(vol, 0) {
		return nil
	}
	return &vol
}

func isNaN(f float64) bool {
	return f != f
}
