package yahoo

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNativeClient(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	client := NewNativeClient(log)

	assert.NotNil(t, client)
}

func TestNativeClient_ImplementsClient(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	var _ Client = NewNativeClient(log)
}

func TestNormalizeSymbol(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"TCS", "TCS.NS"},
		{"tcs.ns", "TCS.NS"},
		{" INFY ", "INFY.NS"},
		{"M&M.NS", "M&M.NS"},
		{"BAJAJ-AUTO", "BAJAJ-AUTO.NS"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeSymbol(tc.in))
		})
	}
}

func TestToFundamentals(t *testing.T) {
	f := toFundamentals(quoteRatios{
		TrailingPE:     12.5,
		PriceToBook:    -0.8,
		ReturnOnEquity: -0.05,
		DebtToEquity:   -40,
		CurrentRatio:   1.6,
		DividendYield:  0,
		MarketCap:      5e11,
		Industry:       "Technology",
	})

	require.NotNil(t, f.PERatio)
	assert.Equal(t, 12.5, *f.PERatio)

	require.NotNil(t, f.PBRatio, "negative book value is reported, not missing")
	assert.Equal(t, -0.8, *f.PBRatio)
	require.NotNil(t, f.ROE)
	assert.Equal(t, -0.05, *f.ROE)

	require.NotNil(t, f.DebtToEquity, "negative debt to equity is reported, not missing")
	assert.InDelta(t, -0.4, *f.DebtToEquity, 1e-12)

	require.NotNil(t, f.MarketCap)
	assert.Equal(t, 5e11, *f.MarketCap)
	assert.Equal(t, "Technology", f.Sector)
}

func TestToFundamentals_ZeroIsMissing(t *testing.T) {
	f := toFundamentals(quoteRatios{})

	assert.Nil(t, f.PERatio)
	assert.Nil(t, f.PBRatio)
	assert.Nil(t, f.ROE)
	assert.Nil(t, f.DebtToEquity)
	assert.Nil(t, f.CurrentRatio)
	assert.Nil(t, f.ProfitMargin)
	assert.Nil(t, f.RevenueGrowth)
	assert.Nil(t, f.DividendYield)
	assert.Nil(t, f.MarketCap)
}
