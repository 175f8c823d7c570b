package formulas

// MACD holds the MACD line, its signal line and the histogram, aligned with the input closes
type MACD struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// CalculateMACD computes MACD = EMA(fast) - EMA(slow), signal = EMA(signalSpan) of MACD
// and histogram = MACD - signal. Returns nil for empty input.
func CalculateMACD(closes []float64, fast, slow, signalSpan int) *MACD {
	if len(closes) == 0 {
		return nil
	}

	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)
	if fastEMA == nil || slowEMA == nil {
		return nil
	}

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	signal := EMASeries(line, signalSpan)
	if signal == nil {
		return nil
	}

	hist := make([]float64, len(closes))
	for i := range line {
		hist[i] = line[i] - signal[i]
	}

	return &MACD{Line: line, Signal: signal, Histogram: hist}
}
