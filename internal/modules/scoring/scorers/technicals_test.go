package scorers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestTechnicalsScorer_RSIBands(t *testing.T) {
	scorer := NewTechnicalsScorer(DefaultTechnicalRules())

	testCases := []struct {
		name     string
		rsi      *float64
		expected float64
	}{
		{"undefined", nil, 0},
		{"oversold", bound(29.99), 0},
		{"lower bound", bound(30), 2.5},
		{"exactly fifty is lower bucket", bound(50), 2.5},
		{"just above fifty", bound(50.01), 1.5},
		{"upper bound", bound(70), 1.5},
		{"overbought", bound(70.01), 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, scorer.scoreRSI(tc.rsi))
		})
	}
}

func TestTechnicalsScorer_MACD(t *testing.T) {
	scorer := NewTechnicalsScorer(DefaultTechnicalRules())

	// A jump after a flat stretch lifts MACD above its signal, above its own
	// value two bars earlier, and widens the histogram.
	jump := append(flat(50, 100), 100, 105)
	assert.Equal(t, 2.5, scorer.scoreMACD(jump))

	drop := append(flat(50, 100), 100, 95)
	assert.Equal(t, 0.0, scorer.scoreMACD(drop))

	assert.Equal(t, 0.0, scorer.scoreMACD([]float64{1, 2}))
}

func TestTechnicalsScorer_MovingAverages(t *testing.T) {
	scorer := NewTechnicalsScorer(DefaultTechnicalRules())

	// 200 flat bars then a gentle climb: close above SMA20, SMA20 above SMA50,
	// close still within 5% of SMA200.
	closes := append(flat(200, 100), 100.5, 101, 101.5, 102)
	assert.Equal(t, 2.0, scorer.scoreMovingAverages(closes))

	// Too short for any average.
	assert.Equal(t, 0.0, scorer.scoreMovingAverages(flat(10, 100)))

	// Only the short average exists.
	short := append(flat(19, 100), 110)
	assert.Equal(t, 0.5, scorer.scoreMovingAverages(short))
}

func TestTechnicalsScorer_Volume(t *testing.T) {
	scorer := NewTechnicalsScorer(DefaultTechnicalRules())

	volumes := append(flat(100, 1000), flat(15, 1500)...)
	volumes = append(volumes, flat(5, 3000)...)
	assert.Equal(t, 1.5, scorer.scoreVolume(volumes))

	assert.Equal(t, 0.0, scorer.scoreVolume(flat(40, 1000)))
	assert.Equal(t, 0.0, scorer.scoreVolume(nil))

	// Too few bars for the trend comparison.
	assert.Equal(t, 0.0, scorer.scoreVolume([]float64{1, 2, 3}))
}

func TestTechnicalsScorer_Support(t *testing.T) {
	scorer := NewTechnicalsScorer(DefaultTechnicalRules())

	// Dip to support inside the bounce window, then recover above support+2%.
	closes := append(flat(55, 110), 100, 101, 103, 105, 106)
	assert.Equal(t, 1.5, scorer.scoreSupport(closes))

	// Support far in the past, current close well above it.
	old := append([]float64{100}, flat(59, 110)...)
	assert.Equal(t, 1.0, scorer.scoreSupport(old))

	assert.Equal(t, 0.0, scorer.scoreSupport(nil))
}

func TestTechnicalsScorer_CalculateIsDeterministic(t *testing.T) {
	rules := DefaultTechnicalRules()
	rules.RSI.Bands = []Band{{Points: 0.1}}
	rules.MACD.AboveSignalPoints = 0.2
	rules.MACD.TrendPoints = 0.2
	rules.MACD.HistogramPoints = 0.2
	rules.MACD.Cap = 10
	rules.MovingAverages.AboveShortPoints = 0.1
	rules.MovingAverages.ShortOverMedPoints = 0.2
	rules.MovingAverages.NearLongPoints = 0.3
	rules.MovingAverages.Cap = 10
	rules.Volume.AboveAveragePoints = 0.7
	rules.Volume.RisingPoints = 0.6
	rules.Volume.Cap = 10
	rules.SupportResistance.AboveMargin = 0
	rules.SupportResistance.AbovePoints = 1.3
	rules.SupportResistance.BouncePoints = 1.4
	rules.SupportResistance.Cap = 10
	scorer := NewTechnicalsScorer(rules)

	closes := make([]float64, 250)
	volumes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.01 + float64(i%2)
		volumes[i] = 1000
		if i >= 240 {
			volumes[i] = 2000 + float64(i)
		}
	}

	first := scorer.Calculate(closes, volumes)
	nonZero := 0
	for _, points := range first.Components {
		if points > 0 {
			nonZero++
		}
	}
	require.GreaterOrEqual(t, nonZero, 3)

	c := first.Components
	expected := c[ComponentRSI] + c[ComponentMACD] + c[ComponentMovingAverages] +
		c[ComponentVolumeTrend] + c[ComponentSupportResistance]
	assert.Equal(t, expected, first.Score)

	for i := 0; i < 200; i++ {
		assert.Equal(t, first.Score, scorer.Calculate(closes, volumes).Score)
	}
}

func TestTechnicalsScorer_CalculateInsufficientData(t *testing.T) {
	scorer := NewTechnicalsScorer(DefaultTechnicalRules())

	result := scorer.Calculate([]float64{100}, []float64{1000})
	assert.Nil(t, result.RSI)
	assert.GreaterOrEqual(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 10.0)
	assert.Len(t, result.Components, 5)
}

func TestTechnicalsScorer_ClampsTotal(t *testing.T) {
	rules := DefaultTechnicalRules()
	rules.MaxScore = 1
	scorer := NewTechnicalsScorer(rules)

	closes := append(flat(55, 110), 100, 101, 103, 105, 106)
	result := scorer.Calculate(closes, flat(len(closes), 1000))
	assert.LessOrEqual(t, result.Score, 1.0)
}

func TestTechnicalRules_Validate(t *testing.T) {
	require.NoError(t, DefaultTechnicalRules().Validate())

	bad := DefaultTechnicalRules()
	bad.MACD.Slow = bad.MACD.Fast
	assert.Error(t, bad.Validate())

	bad = DefaultTechnicalRules()
	bad.Volume.Cap = 0
	assert.Error(t, bad.Validate())

	bad = DefaultTechnicalRules()
	bad.RSI.Period = 0
	assert.Error(t, bad.Validate())

	bad = DefaultTechnicalRules()
	bad.SupportResistance.BounceWindow = bad.SupportResistance.Lookback + 1
	assert.Error(t, bad.Validate())
}
