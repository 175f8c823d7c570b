// Package screening runs scans over the universe and persists their results.
package screening

import (
	"encoding/json"
	"errors"
	"time"

	scoringdomain "github.com/aristath/rebound/internal/modules/scoring/domain"
)

// ErrNotFound is returned when a symbol has no market data
var ErrNotFound = errors.New("stock not found")

// Candidate is a qualifying stock in a scan response
type Candidate struct {
	Symbol           string                       `json:"symbol"`
	Name             string                       `json:"name"`
	Recommendation   scoringdomain.Recommendation `json:"recommendation"`
	CurrentPrice     float64                      `json:"current_price"`
	PriceDecline     float64                      `json:"price_decline"`
	FundamentalScore float64                      `json:"fundamental_score"`
	TechnicalScore   float64                      `json:"technical_score"`
	OverallScore     float64                      `json:"overall_score"`
}

// ScanSummary is the outcome of one scan
type ScanSummary struct {
	StartedAt time.Time     `json:"timestamp"`
	ScanID    string        `json:"scan_id"`
	Stocks    []Candidate   `json:"stocks"`
	Duration  time.Duration `json:"-"`
	Scanned   int           `json:"scanned"`
	Scored    int           `json:"scored"`
	Qualified int           `json:"qualified"`
	Rejected  int           `json:"rejected"`
	Failed    int           `json:"failed"`
	Malformed int           `json:"malformed"`
}

// StoredResult is a persisted analysis row
type StoredResult struct {
	AnalysisDate     time.Time                    `json:"analysis_date"`
	AnalysisData     json.RawMessage              `json:"analysis_data,omitempty"`
	ScanID           string                       `json:"scan_id"`
	Symbol           string                       `json:"symbol"`
	Name             string                       `json:"name"`
	Recommendation   scoringdomain.Recommendation `json:"recommendation"`
	ID               int64                        `json:"id"`
	CurrentPrice     float64                      `json:"current_price"`
	MaxPrice2Y       float64                      `json:"max_price_2y"`
	PriceDecline     float64                      `json:"price_decline"`
	FundamentalScore float64                      `json:"fundamental_score"`
	TechnicalScore   float64                      `json:"technical_score"`
	OverallScore     float64                      `json:"overall_score"`
	MeetsCriteria    bool                         `json:"meets_criteria"`
}

// Statistics summarizes the screener database
type Statistics struct {
	LatestAnalysis *time.Time `json:"latest_analysis,omitempty"`
	TotalStocks    int        `json:"total_stocks"`
	TotalAnalyses  int        `json:"total_analyses"`
	Qualifying     int        `json:"stocks_meeting_criteria"`
}
