package formulas

// EMASeries returns the exponential moving average for every point of closes,
// using span weighting (alpha = 2/(span+1)) with adjusted, bias-corrected weights:
//
//	EMA_t = Σ (1-α)^i · x_{t-i} / Σ (1-α)^i
//
// Unlike a seeded EMA there is no warm-up period: every index has a value.
func EMASeries(closes []float64, span int) []float64 {
	if len(closes) == 0 || span < 1 {
		return nil
	}

	alpha := 2.0 / (float64(span) + 1.0)
	decay := 1.0 - alpha

	out := make([]float64, len(closes))
	num, den := 0.0, 0.0
	for i, x := range closes {
		num = x + decay*num
		den = 1.0 + decay*den
		out[i] = num / den
	}

	return out
}

// CalculateEMA returns the latest value of EMASeries, or nil for empty input
func CalculateEMA(closes []float64, span int) *float64 {
	series := EMASeries(closes, span)
	if len(series) == 0 {
		return nil
	}
	result := series[len(series)-1]
	return &result
}
