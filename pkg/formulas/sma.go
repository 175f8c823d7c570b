package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateSMA calculates the simple moving average of the last `length` closes.
// Returns nil if there is not enough data.
func CalculateSMA(closes []float64, length int) *float64 {
	if length <= 0 || len(closes) < length {
		return nil
	}

	sma := talib.Sma(closes, length)
	if len(sma) > 0 && !isNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}

	return nil
}

// DistanceFromSMA returns |price - SMA| / SMA, or nil when the SMA is unavailable or zero
func DistanceFromSMA(closes []float64, length int) *float64 {
	sma := CalculateSMA(closes, length)
	if sma == nil || *sma == 0 {
		return nil
	}

	price := closes[len(closes)-1]
	distance := (price - *sma) / *sma
	if distance < 0 {
		distance = -distance
	}
	return &distance
}
