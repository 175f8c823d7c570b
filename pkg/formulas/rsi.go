package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateRSI calculates the Relative Strength Index using a simple rolling
// mean of gains and losses over the last `length` price changes.
//
//	RSI = 100 - (100 / (1 + RS)), RS = mean(gains) / mean(losses)
//
// Returns nil if there is insufficient data or the average loss is zero
// (RS is undefined).
func CalculateRSI(closes []float64, length int) *float64 {
	if length <= 0 || len(closes) < length+1 {
		return nil
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else if delta < 0 {
			losses[i-1] = -delta
		}
	}

	avgGains := talib.Sma(gains, length)
	avgLosses := talib.Sma(losses, length)
	avgGain := avgGains[len(avgGains)-1]
	avgLoss := avgLosses[len(avgLosses)-1]

	if isNaN(avgGain) || isNaN(avgLoss) || avgLoss <= 0 {
		return nil
	}

	rs := avgGain / avgLoss
	rsi := 100 - (100 / (1 + rs))
	return &rsi
}
