package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(closes ...float64) PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(PriceSeries, len(closes))
	for i, c := range closes {
		s[i] = PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return s
}

func TestPriceSeries_Accessors(t *testing.T) {
	s := series(10, 30, 20)

	assert.Equal(t, []float64{10, 30, 20}, s.Closes())
	assert.Equal(t, []float64{1000, 1000, 1000}, s.Volumes())
	assert.Equal(t, 20.0, s.Last().Close)
	assert.Equal(t, 30.0, s.MaxClose())
	assert.Equal(t, 0.0, PriceSeries{}.MaxClose())
}

func TestPriceSeries_Since(t *testing.T) {
	s := series(1, 2, 3, 4)
	tail := s.Since(s[2].Date)
	require.Len(t, tail, 2)
	assert.Equal(t, 3.0, tail[0].Close)

	assert.Empty(t, s.Since(s[3].Date.AddDate(0, 0, 1)))
}

func TestPriceSeries_Validate(t *testing.T) {
	assert.NoError(t, series(1, 2, 3).Validate())

	bad := series(1, 2, 3)
	bad[1].Close = math.NaN()
	assert.Error(t, bad.Validate())

	zero := series(1, 0)
	assert.Error(t, zero.Validate())

	unordered := series(1, 2)
	unordered[1].Date = unordered[0].Date
	assert.Error(t, unordered.Validate())

	negVolume := series(1, 2)
	negVolume[0].Volume = -1
	assert.Error(t, negVolume.Validate())
}

func TestFundamentals_Validate(t *testing.T) {
	assert.NoError(t, Fundamentals{}.Validate(), "absent values are valid")
	assert.NoError(t, Fundamentals{PERatio: Float(0)}.Validate(), "zero is a valid value")
	assert.Error(t, Fundamentals{ROE: Float(math.Inf(1))}.Validate())
	assert.Error(t, Fundamentals{DividendYield: Float(math.NaN())}.Validate())
}

func TestDeclinePct(t *testing.T) {
	assert.InDelta(t, 35.0, DeclinePct(200, 130), 1e-9)
	assert.Equal(t, 0.0, DeclinePct(0, 10))
}
