package scorers

import (
	"fmt"
	"math"

	"github.com/aristath/rebound/pkg/formulas"
)

// Technical component names
const (
	ComponentRSI               = "rsi"
	ComponentMACD              = "macd"
	ComponentMovingAverages    = "moving_averages"
	ComponentVolumeTrend       = "volume_trend"
	ComponentSupportResistance = "support_resistance"
)

// RSIRules scores the relative strength index. Bands are first-match.
type RSIRules struct {
	Period int    `json:"period" yaml:"period"`
	Bands  []Band `json:"bands" yaml:"bands"`
}

// MACDRules scores the MACD line against its signal and its own recent past
type MACDRules struct {
	Fast              int     `json:"fast" yaml:"fast"`
	Slow              int     `json:"slow" yaml:"slow"`
	Signal            int     `json:"signal" yaml:"signal"`
	AboveSignalPoints float64 `json:"above_signal_points" yaml:"above_signal_points"`
	TrendLookback     int     `json:"trend_lookback" yaml:"trend_lookback"`
	TrendPoints       float64 `json:"trend_points" yaml:"trend_points"`
	HistogramPoints   float64 `json:"histogram_points" yaml:"histogram_points"`
	Cap               float64 `json:"cap" yaml:"cap"`
}

// MovingAverageRules scores price position against short, medium and long SMAs
type MovingAverageRules struct {
	Short              int     `json:"short" yaml:"short"`
	Medium             int     `json:"medium" yaml:"medium"`
	Long               int     `json:"long" yaml:"long"`
	AboveShortPoints   float64 `json:"above_short_points" yaml:"above_short_points"`
	ShortOverMedPoints float64 `json:"short_over_medium_points" yaml:"short_over_medium_points"`
	NearLongTolerance  float64 `json:"near_long_tolerance" yaml:"near_long_tolerance"`
	NearLongPoints     float64 `json:"near_long_points" yaml:"near_long_points"`
	Cap                float64 `json:"cap" yaml:"cap"`
}

// VolumeRules scores recent participation
type VolumeRules struct {
	Window             int     `json:"window" yaml:"window"`
	AboveAveragePoints float64 `json:"above_average_points" yaml:"above_average_points"`
	TrendWindow        int     `json:"trend_window" yaml:"trend_window"`
	RisingPoints       float64 `json:"rising_points" yaml:"rising_points"`
	Cap                float64 `json:"cap" yaml:"cap"`
}

// SupportRules scores distance from, and recent bounces off, support
type SupportRules struct {
	Lookback     int     `json:"lookback" yaml:"lookback"`
	AboveMargin  float64 `json:"above_margin" yaml:"above_margin"`
	AbovePoints  float64 `json:"above_points" yaml:"above_points"`
	BounceWindow int     `json:"bounce_window" yaml:"bounce_window"`
	BounceMargin float64 `json:"bounce_margin" yaml:"bounce_margin"`
	BouncePoints float64 `json:"bounce_points" yaml:"bounce_points"`
	Cap          float64 `json:"cap" yaml:"cap"`
}

// TechnicalRules is the technical rule table
type TechnicalRules struct {
	RSI               RSIRules           `json:"rsi" yaml:"rsi"`
	MACD              MACDRules          `json:"macd" yaml:"macd"`
	MovingAverages    MovingAverageRules `json:"moving_averages" yaml:"moving_averages"`
	Volume            VolumeRules        `json:"volume" yaml:"volume"`
	SupportResistance SupportRules       `json:"support_resistance" yaml:"support_resistance"`
	MaxScore          float64            `json:"max_score" yaml:"max_score"`
}

// DefaultTechnicalRules returns the standard technical rule table
func DefaultTechnicalRules() TechnicalRules {
	return TechnicalRules{
		RSI: RSIRules{
			Period: 14,
			Bands: []Band{
				{Min: bound(30), Max: bound(50), Points: 2.5},
				{Min: bound(50), Max: bound(70), Points: 1.5},
			},
		},
		MACD: MACDRules{
			Fast:              12,
			Slow:              26,
			Signal:            9,
			AboveSignalPoints: 1,
			TrendLookback:     2,
			TrendPoints:       1,
			HistogramPoints:   0.5,
			Cap:               2.5,
		},
		MovingAverages: MovingAverageRules{
			Short:              20,
			Medium:             50,
			Long:               200,
			AboveShortPoints:   0.5,
			ShortOverMedPoints: 1,
			NearLongTolerance:  0.05,
			NearLongPoints:     0.5,
			Cap:                2,
		},
		Volume: VolumeRules{
			Window:             20,
			AboveAveragePoints: 1,
			TrendWindow:        5,
			RisingPoints:       0.5,
			Cap:                1.5,
		},
		SupportResistance: SupportRules{
			Lookback:     60,
			AboveMargin:  0.02,
			AbovePoints:  1,
			BounceWindow: 10,
			BounceMargin: 0.01,
			BouncePoints: 0.5,
			Cap:          1.5,
		},
		MaxScore: 10,
	}
}

// Clone returns a deep copy
func (r TechnicalRules) Clone() TechnicalRules {
	c := r
	c.RSI.Bands = cloneBands(r.RSI.Bands)
	return c
}

// Validate checks periods and caps
func (r TechnicalRules) Validate() error {
	if r.RSI.Period < 1 {
		return fmt.Errorf("rsi period must be positive")
	}
	for _, b := range r.RSI.Bands {
		if err := b.validate(); err != nil {
			return fmt.Errorf("rsi: %w", err)
		}
	}
	if r.MACD.Fast < 1 || r.MACD.Slow <= r.MACD.Fast || r.MACD.Signal < 1 {
		return fmt.Errorf("macd spans must satisfy 0 < fast < slow and signal > 0")
	}
	if r.MACD.TrendLookback < 1 {
		return fmt.Errorf("macd trend_lookback must be positive")
	}
	ma := r.MovingAverages
	if ma.Short < 1 || ma.Medium < 1 || ma.Long < 1 {
		return fmt.Errorf("moving average lengths must be positive")
	}
	if r.Volume.Window < 1 || r.Volume.TrendWindow < 1 {
		return fmt.Errorf("volume windows must be positive")
	}
	if r.SupportResistance.Lookback < 1 || r.SupportResistance.BounceWindow < 1 {
		return fmt.Errorf("support windows must be positive")
	}
	if r.SupportResistance.BounceWindow > r.SupportResistance.Lookback {
		return fmt.Errorf("support bounce_window must not exceed lookback")
	}
	for name, v := range map[string]float64{
		"macd cap":               r.MACD.Cap,
		"moving averages cap":    ma.Cap,
		"volume cap":             r.Volume.Cap,
		"support resistance cap": r.SupportResistance.Cap,
		"technical max_score":    r.MaxScore,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

// TechnicalsScorer scores price and volume action
type TechnicalsScorer struct {
	rules TechnicalRules
}

// TechnicalsScore represents the result of technical scoring
type TechnicalsScore struct {
	Components map[string]float64 `json:"components"`
	RSI        *float64           `json:"rsi"`
	Score      float64            `json:"score"`
}

// NewTechnicalsScorer creates a scorer bound to a copy of rules
func NewTechnicalsScorer(rules TechnicalRules) *TechnicalsScorer {
	return &TechnicalsScorer{rules: rules.Clone()}
}

// Calculate scores closes and volumes of the same series. Components without
// enough bars contribute 0.
func (ts *TechnicalsScorer) Calculate(closes, volumes []float64) TechnicalsScore {
	rsi := formulas.CalculateRSI(closes, ts.rules.RSI.Period)

	rsiPoints := ts.scoreRSI(rsi)
	macdPoints := ts.scoreMACD(closes)
	maPoints := ts.scoreMovingAverages(closes)
	volumePoints := ts.scoreVolume(volumes)
	supportPoints := ts.scoreSupport(closes)

	// Fixed summation order keeps the float total stable across calls.
	total := rsiPoints + macdPoints + maPoints + volumePoints + supportPoints

	components := map[string]float64{
		ComponentRSI:               rsiPoints,
		ComponentMACD:              macdPoints,
		ComponentMovingAverages:    maPoints,
		ComponentVolumeTrend:       volumePoints,
		ComponentSupportResistance: supportPoints,
	}

	return TechnicalsScore{
		Score:      clamp(total, 0, ts.rules.MaxScore),
		Components: components,
		RSI:        rsi,
	}
}

func (ts *TechnicalsScorer) scoreRSI(rsi *float64) float64 {
	if rsi == nil {
		return 0
	}
	return firstMatch(ts.rules.RSI.Bands, *rsi)
}

func (ts *TechnicalsScorer) scoreMACD(closes []float64) float64 {
	r := ts.rules.MACD
	macd := formulas.CalculateMACD(closes, r.Fast, r.Slow, r.Signal)
	if macd == nil {
		return 0
	}
	n := len(macd.Line)
	if n <= r.TrendLookback || n < 2 {
		return 0
	}

	score := 0.0
	if macd.Line[n-1] > macd.Signal[n-1] {
		score += r.AboveSignalPoints
	}
	if macd.Line[n-1] > macd.Line[n-1-r.TrendLookback] {
		score += r.TrendPoints
	}
	if macd.Histogram[n-1] > macd.Histogram[n-2] {
		score += r.HistogramPoints
	}
	return math.Min(score, r.Cap)
}

func (ts *TechnicalsScorer) scoreMovingAverages(closes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}
	r := ts.rules.MovingAverages
	current := closes[len(closes)-1]
	short := formulas.CalculateSMA(closes, r.Short)
	medium := formulas.CalculateSMA(closes, r.Medium)

	score := 0.0
	if short != nil && current > *short {
		score += r.AboveShortPoints
	}
	if short != nil && medium != nil && *short > *medium {
		score += r.ShortOverMedPoints
	}
	if dist := formulas.DistanceFromSMA(closes, r.Long); dist != nil && *dist <= r.NearLongTolerance {
		score += r.NearLongPoints
	}
	return math.Min(score, r.Cap)
}

func (ts *TechnicalsScorer) scoreVolume(volumes []float64) float64 {
	if len(volumes) == 0 {
		return 0
	}
	r := ts.rules.Volume
	recent := formulas.Tail(volumes, r.Window)

	score := 0.0
	if formulas.Mean(recent) > formulas.Mean(volumes) {
		score += r.AboveAveragePoints
	}
	if len(recent) >= 2*r.TrendWindow {
		last := recent[len(recent)-r.TrendWindow:]
		prior := recent[len(recent)-2*r.TrendWindow : len(recent)-r.TrendWindow]
		if formulas.Mean(last) > formulas.Mean(prior) {
			score += r.RisingPoints
		}
	}
	return math.Min(score, r.Cap)
}

func (ts *TechnicalsScorer) scoreSupport(closes []float64) float64 {
	r := ts.rules.SupportResistance
	window := formulas.Tail(closes, r.Lookback)
	support, ok := formulas.MinOf(window)
	if !ok {
		return 0
	}
	current := closes[len(closes)-1]

	score := 0.0
	if current > support*(1+r.AboveMargin) {
		score += r.AbovePoints
	}
	for _, c := range formulas.Tail(window, r.BounceWindow) {
		if c <= support*(1+r.BounceMargin) {
			score += r.BouncePoints
			break
		}
	}
	return math.Min(score, r.Cap)
}
