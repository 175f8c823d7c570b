// Package scoring turns collected market data into recovery-candidate scores.
package scoring

import (
	"fmt"
	"os"

	"github.com/aristath/rebound/internal/modules/scoring/domain"
	"github.com/aristath/rebound/internal/modules/scoring/scorers"
	"gopkg.in/yaml.v3"
)

// GateRules are the hard screening gates applied before scoring
type GateRules struct {
	MinDeclinePct float64 `json:"min_decline_pct" yaml:"min_decline_pct"`
	MaxDeclinePct float64 `json:"max_decline_pct" yaml:"max_decline_pct"`
	MinRecentBars int     `json:"min_recent_bars" yaml:"min_recent_bars"`
	HoverMinPct   float64 `json:"hover_min_pct" yaml:"hover_min_pct"`
	HoverMaxPct   float64 `json:"hover_max_pct" yaml:"hover_max_pct"`
	HoverMinShare float64 `json:"hover_min_share" yaml:"hover_min_share"`
}

// CompositeWeights combine the two sub-scores
type CompositeWeights struct {
	Fundamental float64 `json:"fundamental" yaml:"fundamental"`
	Technical   float64 `json:"technical" yaml:"technical"`
}

// Criteria are the thresholds that must all hold for meets_criteria
type Criteria struct {
	MinFundamental float64 `json:"min_fundamental" yaml:"min_fundamental"`
	MinTechnical   float64 `json:"min_technical" yaml:"min_technical"`
	MinOverall     float64 `json:"min_overall" yaml:"min_overall"`
}

// RecommendationRules map the overall score to a label
type RecommendationRules struct {
	Bands    []domain.RecommendationBand `json:"bands" yaml:"bands"`
	Fallback domain.Recommendation       `json:"fallback" yaml:"fallback"`
}

// Rules holds every threshold and weight the engine uses
type Rules struct {
	Gate            GateRules                `json:"gate" yaml:"gate"`
	Fundamentals    scorers.FundamentalRules `json:"fundamentals" yaml:"fundamentals"`
	Technicals      scorers.TechnicalRules   `json:"technicals" yaml:"technicals"`
	Composite       CompositeWeights         `json:"composite" yaml:"composite"`
	Criteria        Criteria                 `json:"criteria" yaml:"criteria"`
	Recommendations RecommendationRules      `json:"recommendations" yaml:"recommendations"`
}

// DefaultRules returns the standard recovery-candidate rule set
func DefaultRules() Rules {
	return Rules{
		Gate: GateRules{
			MinDeclinePct: 30,
			MaxDeclinePct: 40,
			MinRecentBars: 30,
			HoverMinPct:   25,
			HoverMaxPct:   45,
			HoverMinShare: 0.7,
		},
		Fundamentals: scorers.DefaultFundamentalRules(),
		Technicals:   scorers.DefaultTechnicalRules(),
		Composite: CompositeWeights{
			Fundamental: 0.6,
			Technical:   0.4,
		},
		Criteria: Criteria{
			MinFundamental: 6.0,
			MinTechnical:   5.5,
			MinOverall:     6.0,
		},
		Recommendations: RecommendationRules{
			Bands: []domain.RecommendationBand{
				{MinScore: 8, Label: domain.RecommendationStrongBuy},
				{MinScore: 7, Label: domain.RecommendationBuy},
				{MinScore: 6, Label: domain.RecommendationModerateBuy},
				{MinScore: 5, Label: domain.RecommendationHold},
			},
			Fallback: domain.RecommendationAvoid,
		},
	}
}

// LoadRules reads a YAML file on top of DefaultRules. Keys missing from the
// file keep their default values; lists present in the file replace the
// defaults entirely.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse rules file: %w", err)
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, fmt.Errorf("invalid rules in %s: %w", path, err)
	}

	return rules, nil
}

// Clone returns a deep copy
func (r Rules) Clone() Rules {
	c := r
	c.Fundamentals = r.Fundamentals.Clone()
	c.Technicals = r.Technicals.Clone()
	c.Recommendations.Bands = append([]domain.RecommendationBand(nil), r.Recommendations.Bands...)
	return c
}

// Validate checks that the rules are internally consistent
func (r Rules) Validate() error {
	g := r.Gate
	if g.MinDeclinePct > g.MaxDeclinePct {
		return fmt.Errorf("gate: min_decline_pct %v above max_decline_pct %v", g.MinDeclinePct, g.MaxDeclinePct)
	}
	if g.HoverMinPct > g.HoverMaxPct {
		return fmt.Errorf("gate: hover_min_pct %v above hover_max_pct %v", g.HoverMinPct, g.HoverMaxPct)
	}
	if g.MinRecentBars < 1 {
		return fmt.Errorf("gate: min_recent_bars must be positive")
	}
	if g.HoverMinShare < 0 || g.HoverMinShare > 1 {
		return fmt.Errorf("gate: hover_min_share must lie in [0,1]")
	}

	if err := r.Fundamentals.Validate(); err != nil {
		return fmt.Errorf("fundamentals: %w", err)
	}
	if err := r.Technicals.Validate(); err != nil {
		return fmt.Errorf("technicals: %w", err)
	}

	w := r.Composite
	if w.Fundamental < 0 || w.Technical < 0 || w.Fundamental+w.Technical > 1.0000001 {
		return fmt.Errorf("composite weights must be non-negative and sum to at most 1")
	}

	bands := r.Recommendations.Bands
	for i := 1; i < len(bands); i++ {
		if bands[i].MinScore >= bands[i-1].MinScore {
			return fmt.Errorf("recommendation bands must be ordered by descending min_score")
		}
	}
	if r.Recommendations.Fallback == "" {
		return fmt.Errorf("recommendation fallback label is required")
	}

	return nil
}
