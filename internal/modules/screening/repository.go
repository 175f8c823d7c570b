package screening

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/rebound/internal/database"
	"github.com/aristath/rebound/internal/domain"
	scoringdomain "github.com/aristath/rebound/internal/modules/scoring/domain"
	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// resultsColumns is the column list for analysis_results, in scanResult order
const resultsColumns = `ar.id, ar.scan_id, ar.symbol, COALESCE(s.name, ''), ar.analysis_date,
ar.current_price, ar.max_price_2y, ar.price_decline, ar.fundamental_score, ar.technical_score,
ar.overall_score, ar.recommendation, ar.meets_criteria, ar.analysis_data`

// Repository handles screener database operations
type Repository struct {
	screenerDB *sql.DB
	log        zerolog.Logger
}

// NewRepository creates a new screening repository
func NewRepository(screenerDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		screenerDB: screenerDB,
		log:        log.With().Str("repo", "screening").Logger(),
	}
}

// SaveStock upserts the stock master row
func (r *Repository) SaveStock(in *domain.StockInput, at time.Time) error {
	_, err := r.screenerDB.Exec(`
		INSERT INTO stocks (symbol, name, sector, market_cap, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			sector = excluded.sector,
			market_cap = excluded.market_cap,
			updated_at = excluded.updated_at`,
		in.Symbol, in.Name, in.Fundamentals.Sector, nullFloat(in.Fundamentals.MarketCap), at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save stock %s: %w", in.Symbol, err)
	}
	return nil
}

// SaveResult stores one scoring result. breakdown may be nil.
func (r *Repository) SaveResult(scanID string, in *domain.StockInput, res *scoringdomain.ScoreResult, breakdown *scoringdomain.ScoreBreakdown, at time.Time) error {
	data := []byte("{}")
	if breakdown != nil {
		encoded, err := json.Marshal(breakdown)
		if err != nil {
			return fmt.Errorf("failed to encode breakdown: %w", err)
		}
		data = encoded
	}

	return database.WithTransaction(r.screenerDB, func(tx *sql.Tx) error {
		// The stock row must exist for the foreign key.
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO stocks (symbol, name, updated_at) VALUES (?, ?, ?)",
			in.Symbol, in.Name, at.UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("failed to ensure stock row: %w", err)
		}

		_, err := tx.Exec(`
			INSERT INTO analysis_results (
				scan_id, symbol, analysis_date, current_price, max_price_2y, price_decline,
				fundamental_score, technical_score, overall_score, recommendation,
				meets_criteria, analysis_data
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			scanID, in.Symbol, at.UTC().Format(time.RFC3339), res.CurrentPrice, in.MaxPrice2Y, res.PriceDeclinePct,
			res.FundamentalScore, res.TechnicalScore, res.OverallScore, string(res.Recommendation),
			boolToInt(res.MeetsCriteria), string(data),
		)
		if err != nil {
			return fmt.Errorf("failed to insert result for %s: %w", in.Symbol, err)
		}
		return nil
	})
}

// LatestResults returns qualifying results, best overall score first
func (r *Repository) LatestResults(limit int) ([]StoredResult, error) {
	if limit <= 0 {
		limit = 50
	}
	query := "SELECT " + resultsColumns + `
		FROM analysis_results ar
		LEFT JOIN stocks s ON ar.symbol = s.symbol
		WHERE ar.meets_criteria = 1
		ORDER BY ar.overall_score DESC, ar.analysis_date DESC
		LIMIT ?`

	return r.queryResults(query, limit)
}

// History returns the results for symbol analysed since the given time, newest first
func (r *Repository) History(symbol string, since time.Time) ([]StoredResult, error) {
	query := "SELECT " + resultsColumns + `
		FROM analysis_results ar
		LEFT JOIN stocks s ON ar.symbol = s.symbol
		WHERE ar.symbol = ? AND ar.analysis_date >= ?
		ORDER BY ar.analysis_date DESC`

	return r.queryResults(query, strings.ToUpper(symbol), since.UTC().Format(time.RFC3339))
}

// ScanResults returns every result stored under scanID
func (r *Repository) ScanResults(scanID string) ([]StoredResult, error) {
	query := "SELECT " + resultsColumns + `
		FROM analysis_results ar
		LEFT JOIN stocks s ON ar.symbol = s.symbol
		WHERE ar.scan_id = ?
		ORDER BY ar.overall_score DESC`

	return r.queryResults(query, scanID)
}

func (r *Repository) queryResults(query string, args ...interface{}) ([]StoredResult, error) {
	rows, err := r.screenerDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := make([]StoredResult, 0)
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}
	return results, nil
}

func scanResult(rows *sql.Rows) (StoredResult, error) {
	var (
		res     StoredResult
		date    string
		rec     string
		meets   int
		payload string
	)
	err := rows.Scan(
		&res.ID, &res.ScanID, &res.Symbol, &res.Name, &date,
		&res.CurrentPrice, &res.MaxPrice2Y, &res.PriceDecline, &res.FundamentalScore, &res.TechnicalScore,
		&res.OverallScore, &rec, &meets, &payload,
	)
	if err != nil {
		return res, err
	}

	if t, err := time.Parse(time.RFC3339, date); err == nil {
		res.AnalysisDate = t
	}
	res.Recommendation = scoringdomain.Recommendation(rec)
	res.MeetsCriteria = meets == 1
	if payload != "" && json.Valid([]byte(payload)) {
		res.AnalysisData = json.RawMessage(payload)
	}
	return res, nil
}

// SavePriceHistory upserts daily bars for symbol
func (r *Repository) SavePriceHistory(symbol string, series domain.PriceSeries) error {
	if len(series) == 0 {
		return nil
	}

	return database.WithTransaction(r.screenerDB, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO price_history (symbol, date, open, high, low, close, volume)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare price insert: %w", err)
		}
		defer stmt.Close()

		for _, bar := range series {
			if _, err := stmt.Exec(symbol, bar.Date.Format(dateLayout), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume); err != nil {
				return fmt.Errorf("failed to insert bar %s: %w", bar.Date.Format(dateLayout), err)
			}
		}
		return nil
	})
}

// PriceHistory returns the stored bars for symbol dated on or after from, oldest first
func (r *Repository) PriceHistory(symbol string, from time.Time) (domain.PriceSeries, error) {
	rows, err := r.screenerDB.Query(`
		SELECT date, open, high, low, close, volume
		FROM price_history
		WHERE symbol = ? AND date >= ?
		ORDER BY date ASC`,
		symbol, from.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	series := make(domain.PriceSeries, 0)
	for rows.Next() {
		var (
			bar  domain.PriceBar
			date string
		)
		if err := rows.Scan(&date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan price bar: %w", err)
		}
		bar.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			r.log.Warn().Str("symbol", symbol).Str("date", date).Msg("Skipping bar with invalid date")
			continue
		}
		series = append(series, bar)
	}
	return series, rows.Err()
}

// Statistics returns counts over the screener database
func (r *Repository) Statistics() (*Statistics, error) {
	stats := &Statistics{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM stocks", &stats.TotalStocks},
		{"SELECT COUNT(*) FROM analysis_results", &stats.TotalAnalyses},
		{"SELECT COUNT(*) FROM analysis_results WHERE meets_criteria = 1", &stats.Qualifying},
	}
	for _, c := range counts {
		if err := r.screenerDB.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count: %w", err)
		}
	}

	var latest sql.NullString
	if err := r.screenerDB.QueryRow("SELECT MAX(analysis_date) FROM analysis_results").Scan(&latest); err != nil {
		return nil, fmt.Errorf("failed to get latest analysis date: %w", err)
	}
	if latest.Valid {
		if t, err := time.Parse(time.RFC3339, latest.String); err == nil {
			stats.LatestAnalysis = &t
		}
	}

	return stats, nil
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
