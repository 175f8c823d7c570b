package scorers

import (
	"testing"

	"github.com/aristath/rebound/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundamentalsScorer_CapsAtMax(t *testing.T) {
	scorer := NewFundamentalsScorer(DefaultFundamentalRules())

	result := scorer.Calculate(domain.Fundamentals{
		PERatio:       domain.Float(12),
		PBRatio:       domain.Float(1.2),
		ROE:           domain.Float(0.18),
		DebtToEquity:  domain.Float(0.3),
		CurrentRatio:  domain.Float(1.6),
		ProfitMargin:  domain.Float(0.12),
		RevenueGrowth: domain.Float(0.08),
		DividendYield: domain.Float(0.03),
	})

	sum := 0.0
	for _, v := range result.Components {
		sum += v
	}
	assert.InDelta(t, 11.0, sum, 1e-9)
	assert.Equal(t, 10.0, result.Score)
	assert.Equal(t, 2.0, result.Components[RatioPE])
	assert.Equal(t, 1.0, result.Components[RatioRevenueGrowth])
}

func TestFundamentalsScorer_Tiers(t *testing.T) {
	scorer := NewFundamentalsScorer(DefaultFundamentalRules())

	testCases := []struct {
		name     string
		ratio    string
		in       domain.Fundamentals
		expected float64
	}{
		{"pe strict", RatioPE, domain.Fundamentals{PERatio: domain.Float(15)}, 2},
		{"pe loose", RatioPE, domain.Fundamentals{PERatio: domain.Float(20)}, 1.5},
		{"pe too high", RatioPE, domain.Fundamentals{PERatio: domain.Float(25.01)}, 0},
		{"pe negative still cheap", RatioPE, domain.Fundamentals{PERatio: domain.Float(-4)}, 2},
		{"pb strict", RatioPB, domain.Fundamentals{PBRatio: domain.Float(1.5)}, 1.5},
		{"pb loose", RatioPB, domain.Fundamentals{PBRatio: domain.Float(3)}, 1},
		{"roe strict", RatioROE, domain.Fundamentals{ROE: domain.Float(0.15)}, 2},
		{"roe loose", RatioROE, domain.Fundamentals{ROE: domain.Float(0.10)}, 1.5},
		{"roe weak", RatioROE, domain.Fundamentals{ROE: domain.Float(0.09)}, 0},
		{"debt strict", RatioDebtToEquity, domain.Fundamentals{DebtToEquity: domain.Float(0.5)}, 1.5},
		{"debt loose", RatioDebtToEquity, domain.Fundamentals{DebtToEquity: domain.Float(1.0)}, 1},
		{"current strict", RatioCurrent, domain.Fundamentals{CurrentRatio: domain.Float(1.5)}, 1},
		{"current loose", RatioCurrent, domain.Fundamentals{CurrentRatio: domain.Float(1.2)}, 0.5},
		{"margin loose", RatioProfitMargin, domain.Fundamentals{ProfitMargin: domain.Float(0.05)}, 1},
		{"growth strict", RatioRevenueGrowth, domain.Fundamentals{RevenueGrowth: domain.Float(0.10)}, 1.5},
		{"dividend", RatioDividendYield, domain.Fundamentals{DividendYield: domain.Float(0.02)}, 0.5},
		{"dividend low", RatioDividendYield, domain.Fundamentals{DividendYield: domain.Float(0.019)}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := scorer.Calculate(tc.in)
			assert.Equal(t, tc.expected, result.Components[tc.ratio])
			assert.Equal(t, tc.expected, result.Score)
		})
	}
}

func TestFundamentalsScorer_AbsentIsNotZero(t *testing.T) {
	scorer := NewFundamentalsScorer(DefaultFundamentalRules())

	absent := scorer.Calculate(domain.Fundamentals{})
	assert.Equal(t, 0.0, absent.Score)

	// A reported zero debt is the best possible leverage.
	zero := scorer.Calculate(domain.Fundamentals{DebtToEquity: domain.Float(0)})
	assert.Equal(t, 1.5, zero.Score)
}

func TestFundamentalsScorer_CustomRulesAreCopied(t *testing.T) {
	rules := DefaultFundamentalRules()
	scorer := NewFundamentalsScorer(rules)

	*rules.Ratios[0].Bands[0].Max = 1
	result := scorer.Calculate(domain.Fundamentals{PERatio: domain.Float(12)})
	assert.Equal(t, 2.0, result.Score)
}

func TestFundamentalRules_Validate(t *testing.T) {
	require.NoError(t, DefaultFundamentalRules().Validate())

	unknown := DefaultFundamentalRules()
	unknown.Ratios = append(unknown.Ratios, RatioRule{Ratio: "ev_ebitda"})
	assert.Error(t, unknown.Validate())

	dup := DefaultFundamentalRules()
	dup.Ratios = append(dup.Ratios, RatioRule{Ratio: RatioPE})
	assert.Error(t, dup.Validate())

	inverted := DefaultFundamentalRules()
	inverted.Ratios[0].Bands[1] = Band{Min: bound(10), Max: bound(5), Points: 1}
	assert.Error(t, inverted.Validate())

	noCap := DefaultFundamentalRules()
	noCap.MaxScore = 0
	assert.Error(t, noCap.Validate())
}

func TestBand_Contains(t *testing.T) {
	b := Band{Min: bound(30), Max: bound(50)}
	assert.True(t, b.Contains(30))
	assert.True(t, b.Contains(50))
	assert.False(t, b.Contains(29.999))
	assert.False(t, b.Contains(50.001))
	assert.True(t, Band{}.Contains(-1e9))
}
