// Package domain holds the result types produced by the scoring engine.
package domain

// Recommendation is the informational label derived from the overall score
type Recommendation string

const (
	RecommendationStrongBuy   Recommendation = "Strong Buy"
	RecommendationBuy         Recommendation = "Buy"
	RecommendationModerateBuy Recommendation = "Moderate Buy"
	RecommendationHold        Recommendation = "Hold"
	RecommendationAvoid       Recommendation = "Avoid"
)

// RecommendationBand maps a minimum overall score to a label
type RecommendationBand struct {
	MinScore float64        `json:"min_score" yaml:"min_score"`
	Label    Recommendation `json:"label" yaml:"label"`
}

// Recommend returns the label of the first band whose MinScore the overall
// score reaches. Bands must be ordered from the highest MinScore down.
func Recommend(overall float64, bands []RecommendationBand, fallback Recommendation) Recommendation {
	for _, band := range bands {
		if overall >= band.MinScore {
			return band.Label
		}
	}
	return fallback
}

// ScoreResult is the outcome of scoring a stock that passed the screening gate
type ScoreResult struct {
	Symbol           string         `json:"symbol"`
	Recommendation   Recommendation `json:"recommendation"`
	CurrentPrice     float64        `json:"current_price"`
	PriceDeclinePct  float64        `json:"price_decline"`
	FundamentalScore float64        `json:"fundamental_score"`
	TechnicalScore   float64        `json:"technical_score"`
	OverallScore     float64        `json:"overall_score"`
	MeetsCriteria    bool           `json:"meets_criteria"`
}

// DetailedMetrics are display metrics attached to a detailed report
type DetailedMetrics struct {
	Volatility    *float64 `json:"volatility"`
	RSI           *float64 `json:"rsi"`
	PERatio       *float64 `json:"pe_ratio"`
	PBRatio       *float64 `json:"pb_ratio"`
	ROE           *float64 `json:"roe"`
	DebtToEquity  *float64 `json:"debt_to_equity"`
	MarketCap     *float64 `json:"market_cap"`
	DividendYield *float64 `json:"dividend_yield"`
}

// DetailedScoreResult is a ScoreResult plus display metrics
type DetailedScoreResult struct {
	ScoreResult
	Metrics DetailedMetrics `json:"detailed_metrics"`
}

// ScoreBreakdown lists the points every rule contributed, before capping
type ScoreBreakdown struct {
	RSI              *float64           `json:"rsi"`
	Fundamental      map[string]float64 `json:"fundamental"`
	Technical        map[string]float64 `json:"technical"`
	Symbol           string             `json:"symbol"`
	FundamentalScore float64            `json:"fundamental_score"`
	TechnicalScore   float64            `json:"technical_score"`
}
