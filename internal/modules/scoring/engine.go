package scoring

import (
	"fmt"
	"math"

	"github.com/aristath/rebound/internal/domain"
	scoringdomain "github.com/aristath/rebound/internal/modules/scoring/domain"
	"github.com/aristath/rebound/internal/modules/scoring/scorers"
	"github.com/aristath/rebound/pkg/formulas"
	"github.com/rs/zerolog"
)

const (
	minScore = 0.0
	maxScore = 10.0

	reportPlaces = 2
)

// Engine scores stocks against an immutable rule set. It holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	rules        Rules
	fundamentals *scorers.FundamentalsScorer
	technicals   *scorers.TechnicalsScorer
	log          zerolog.Logger
}

// NewEngine validates and copies rules. Later changes to rules do not affect the engine.
func NewEngine(rules Rules, log zerolog.Logger) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring rules: %w", err)
	}
	rules = rules.Clone()

	return &Engine{
		rules:        rules,
		fundamentals: scorers.NewFundamentalsScorer(rules.Fundamentals),
		technicals:   scorers.NewTechnicalsScorer(rules.Technicals),
		log:          log.With().Str("component", "scoring_engine").Logger(),
	}, nil
}

// Rules returns a copy of the engine's rule set
func (e *Engine) Rules() Rules {
	return e.rules.Clone()
}

// Score gates and scores one stock. A nil result with a nil error means the
// stock did not pass screening. Malformed input returns ErrMalformedInput.
func (e *Engine) Score(in domain.StockInput) (*scoringdomain.ScoreResult, error) {
	res, _, err := e.score(in)
	return res, err
}

// ScoreDetailed is Score plus display metrics. Rejected stocks yield no result.
func (e *Engine) ScoreDetailed(in domain.StockInput) (*scoringdomain.DetailedScoreResult, error) {
	res, tech, err := e.score(in)
	if err != nil || res == nil {
		return nil, err
	}

	f := in.Fundamentals
	return &scoringdomain.DetailedScoreResult{
		ScoreResult: *res,
		Metrics: scoringdomain.DetailedMetrics{
			Volatility:    formulas.RoundPtr(formulas.AnnualizedVolatility(in.Historical.Closes()), reportPlaces),
			RSI:           formulas.RoundPtr(tech.RSI, reportPlaces),
			PERatio:       f.PERatio,
			PBRatio:       f.PBRatio,
			ROE:           f.ROE,
			DebtToEquity:  f.DebtToEquity,
			MarketCap:     f.MarketCap,
			DividendYield: f.DividendYield,
		},
	}, nil
}

// Breakdown reports the points each rule awarded, without applying the gate
func (e *Engine) Breakdown(in domain.StockInput) (*scoringdomain.ScoreBreakdown, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	fund := e.fundamentals.Calculate(in.Fundamentals)
	tech := e.technicals.Calculate(in.Historical.Closes(), in.Historical.Volumes())

	return &scoringdomain.ScoreBreakdown{
		Symbol:           in.Symbol,
		Fundamental:      fund.Components,
		Technical:        tech.Components,
		RSI:              formulas.RoundPtr(tech.RSI, reportPlaces),
		FundamentalScore: formulas.Round(fund.Score, reportPlaces),
		TechnicalScore:   formulas.Round(tech.Score, reportPlaces),
	}, nil
}

func (e *Engine) score(in domain.StockInput) (*scoringdomain.ScoreResult, scorers.TechnicalsScore, error) {
	if err := validateInput(in); err != nil {
		return nil, scorers.TechnicalsScore{}, err
	}

	gate := evaluateGate(e.rules.Gate, in)
	if !gate.Passed {
		e.log.Debug().
			Str("symbol", in.Symbol).
			Str("reason", gate.Reason).
			Float64("decline_pct", in.PriceDeclinePct).
			Float64("hover_share", gate.HoverShare).
			Msg("Stock rejected by screening gate")
		return nil, scorers.TechnicalsScore{}, nil
	}

	fund := e.fundamentals.Calculate(in.Fundamentals)
	tech := e.technicals.Calculate(in.Historical.Closes(), in.Historical.Volumes())

	w := e.rules.Composite
	overall := clamp(fund.Score*w.Fundamental + tech.Score*w.Technical)

	meets := meetsCriteria(e.rules.Criteria, fund.Score, tech.Score, overall)

	result := &scoringdomain.ScoreResult{
		Symbol:           in.Symbol,
		CurrentPrice:     in.CurrentPrice,
		PriceDeclinePct:  in.PriceDeclinePct,
		FundamentalScore: formulas.Round(fund.Score, reportPlaces),
		TechnicalScore:   formulas.Round(tech.Score, reportPlaces),
		OverallScore:     formulas.Round(overall, reportPlaces),
		MeetsCriteria:    meets,
		Recommendation:   scoringdomain.Recommend(overall, e.rules.Recommendations.Bands, e.rules.Recommendations.Fallback),
	}

	e.log.Debug().
		Str("symbol", in.Symbol).
		Float64("fundamental", result.FundamentalScore).
		Float64("technical", result.TechnicalScore).
		Float64("overall", result.OverallScore).
		Bool("meets_criteria", meets).
		Msg("Stock scored")

	return result, tech, nil
}

// meetsCriteria requires every threshold to hold; one miss disqualifies
func meetsCriteria(c Criteria, fundamental, technical, overall float64) bool {
	return fundamental >= c.MinFundamental &&
		technical >= c.MinTechnical &&
		overall >= c.MinOverall
}

// validateInput rejects input that cannot be scored at all
func validateInput(in domain.StockInput) error {
	if in.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrMalformedInput)
	}
	if len(in.Historical) == 0 {
		return fmt.Errorf("%w: %s: historical series is empty", ErrMalformedInput, in.Symbol)
	}
	if len(in.Recent) == 0 {
		return fmt.Errorf("%w: %s: recent series is empty", ErrMalformedInput, in.Symbol)
	}
	if !finitePositive(in.CurrentPrice) {
		return fmt.Errorf("%w: %s: invalid current price %v", ErrMalformedInput, in.Symbol, in.CurrentPrice)
	}
	if !finitePositive(in.MaxPrice2Y) {
		return fmt.Errorf("%w: %s: invalid two-year max price %v", ErrMalformedInput, in.Symbol, in.MaxPrice2Y)
	}
	if math.IsNaN(in.PriceDeclinePct) || math.IsInf(in.PriceDeclinePct, 0) {
		return fmt.Errorf("%w: %s: invalid decline percentage", ErrMalformedInput, in.Symbol)
	}
	if err := in.Historical.Validate(); err != nil {
		return fmt.Errorf("%w: %s: historical series: %v", ErrMalformedInput, in.Symbol, err)
	}
	if err := in.Recent.Validate(); err != nil {
		return fmt.Errorf("%w: %s: recent series: %v", ErrMalformedInput, in.Symbol, err)
	}
	if err := in.Fundamentals.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedInput, in.Symbol, err)
	}
	return nil
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func clamp(v float64) float64 {
	return math.Max(minScore, math.Min(maxScore, v))
}
