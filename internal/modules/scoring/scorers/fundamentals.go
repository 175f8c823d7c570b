package scorers

import (
	"fmt"

	"github.com/aristath/rebound/internal/domain"
)

// Ratio names understood by the fundamentals scorer
const (
	RatioPE            = "pe_ratio"
	RatioPB            = "pb_ratio"
	RatioROE           = "roe"
	RatioDebtToEquity  = "debt_to_equity"
	RatioCurrent       = "current_ratio"
	RatioProfitMargin  = "profit_margin"
	RatioRevenueGrowth = "revenue_growth"
	RatioDividendYield = "dividend_yield"
)

// RatioRule scores one ratio. Bands are mutually exclusive tiers, strictest first.
type RatioRule struct {
	Ratio string `json:"ratio" yaml:"ratio"`
	Bands []Band `json:"bands" yaml:"bands"`
}

// FundamentalRules is the fundamental rule table
type FundamentalRules struct {
	Ratios   []RatioRule `json:"ratios" yaml:"ratios"`
	MaxScore float64     `json:"max_score" yaml:"max_score"`
}

// DefaultFundamentalRules returns the standard recovery-candidate rule table
func DefaultFundamentalRules() FundamentalRules {
	return FundamentalRules{
		MaxScore: 10,
		Ratios: []RatioRule{
			{Ratio: RatioPE, Bands: []Band{
				{Max: bound(15), Points: 2},
				{Min: bound(5), Max: bound(25), Points: 1.5},
			}},
			{Ratio: RatioPB, Bands: []Band{
				{Max: bound(1.5), Points: 1.5},
				{Max: bound(3), Points: 1},
			}},
			{Ratio: RatioROE, Bands: []Band{
				{Min: bound(0.15), Points: 2},
				{Min: bound(0.10), Points: 1.5},
			}},
			{Ratio: RatioDebtToEquity, Bands: []Band{
				{Max: bound(0.5), Points: 1.5},
				{Max: bound(1.0), Points: 1},
			}},
			{Ratio: RatioCurrent, Bands: []Band{
				{Min: bound(1.5), Points: 1},
				{Min: bound(1.2), Points: 0.5},
			}},
			{Ratio: RatioProfitMargin, Bands: []Band{
				{Min: bound(0.10), Points: 1.5},
				{Min: bound(0.05), Points: 1},
			}},
			{Ratio: RatioRevenueGrowth, Bands: []Band{
				{Min: bound(0.10), Points: 1.5},
				{Min: bound(0.05), Points: 1},
			}},
			{Ratio: RatioDividendYield, Bands: []Band{
				{Min: bound(0.02), Points: 0.5},
			}},
		},
	}
}

// Clone returns a deep copy
func (r FundamentalRules) Clone() FundamentalRules {
	c := FundamentalRules{MaxScore: r.MaxScore, Ratios: make([]RatioRule, len(r.Ratios))}
	for i, rule := range r.Ratios {
		c.Ratios[i] = RatioRule{Ratio: rule.Ratio, Bands: cloneBands(rule.Bands)}
	}
	return c
}

// Validate checks ratio names and band sanity
func (r FundamentalRules) Validate() error {
	if r.MaxScore <= 0 {
		return fmt.Errorf("fundamental max_score must be positive")
	}
	seen := make(map[string]bool)
	for _, rule := range r.Ratios {
		if _, ok := ratioValue(domain.Fundamentals{}, rule.Ratio); !ok {
			return fmt.Errorf("unknown ratio %q", rule.Ratio)
		}
		if seen[rule.Ratio] {
			return fmt.Errorf("ratio %q listed twice", rule.Ratio)
		}
		seen[rule.Ratio] = true
		for _, b := range rule.Bands {
			if err := b.validate(); err != nil {
				return fmt.Errorf("ratio %s: %w", rule.Ratio, err)
			}
		}
	}
	return nil
}

// FundamentalsScorer scores financial ratios
type FundamentalsScorer struct {
	rules FundamentalRules
}

// FundamentalsScore represents the result of fundamental scoring
type FundamentalsScore struct {
	Components map[string]float64 `json:"components"`
	Score      float64            `json:"score"`
}

// NewFundamentalsScorer creates a scorer bound to a copy of rules
func NewFundamentalsScorer(rules FundamentalRules) *FundamentalsScorer {
	return &FundamentalsScorer{rules: rules.Clone()}
}

// Calculate sums the points of every ratio and caps the total at MaxScore.
// A missing ratio contributes nothing.
func (fs *FundamentalsScorer) Calculate(f domain.Fundamentals) FundamentalsScore {
	components := make(map[string]float64, len(fs.rules.Ratios))
	total := 0.0

	for _, rule := range fs.rules.Ratios {
		v, _ := ratioValue(f, rule.Ratio)
		points := 0.0
		if v != nil {
			points = firstMatch(rule.Bands, *v)
		}
		components[rule.Ratio] = points
		total += points
	}

	return FundamentalsScore{
		Score:      clamp(total, 0, fs.rules.MaxScore),
		Components: components,
	}
}

func ratioValue(f domain.Fundamentals, ratio string) (*float64, bool) {
	switch ratio {
	case RatioPE:
		return f.PERatio, true
	case RatioPB:
		return f.PBRatio, true
	case RatioROE:
		return f.ROE, true
	case RatioDebtToEquity:
		return f.DebtToEquity, true
	case RatioCurrent:
		return f.CurrentRatio, true
	case RatioProfitMargin:
		return f.ProfitMargin, true
	case RatioRevenueGrowth:
		return f.RevenueGrowth, true
	case RatioDividendYield:
		return f.DividendYield, true
	default:
		return nil, false
	}
}
