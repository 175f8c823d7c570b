// Package watchlist keeps the user's list of symbols to follow.
package watchlist

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when removing a symbol that is not watched
var ErrNotFound = errors.New("symbol not in watchlist")

// Entry is a watched symbol with its latest analysis, when there is one
type Entry struct {
	AddedDate      time.Time  `json:"added_date"`
	LatestAnalysis *time.Time `json:"latest_analysis,omitempty"`
	OverallScore   *float64   `json:"overall_score,omitempty"`
	Symbol         string     `json:"symbol"`
	Name           string     `json:"name"`
	Notes          string     `json:"notes"`
	Recommendation string     `json:"recommendation,omitempty"`
}

// Repository handles watchlist persistence in the screener database
type Repository struct {
	screenerDB *sql.DB
	log        zerolog.Logger
}

// NewRepository creates a new watchlist repository
func NewRepository(screenerDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		screenerDB: screenerDB,
		log:        log.With().Str("repo", "watchlist").Logger(),
	}
}

// Add watches symbol. Adding an existing symbol replaces its notes.
func (r *Repository) Add(symbol, notes string, at time.Time) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	_, err := r.screenerDB.Exec(`
		INSERT INTO watchlist (symbol, added_date, notes) VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET notes = excluded.notes`,
		symbol, at.UTC().Format(time.RFC3339), notes,
	)
	if err != nil {
		return fmt.Errorf("failed to add %s to watchlist: %w", symbol, err)
	}

	r.log.Debug().Str("symbol", symbol).Msg("Added to watchlist")
	return nil
}

// Remove stops watching symbol
func (r *Repository) Remove(symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	result, err := r.screenerDB.Exec("DELETE FROM watchlist WHERE symbol = ?", symbol)
	if err != nil {
		return fmt.Errorf("failed to remove %s from watchlist: %w", symbol, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	return nil
}

// List returns watched symbols, most recently added first, joined with the
// latest stored analysis of each
func (r *Repository) List() ([]Entry, error) {
	rows, err := r.screenerDB.Query(`
		SELECT w.symbol, w.added_date, w.notes, COALESCE(s.name, ''),
			latest.analysis_date, latest.overall_score, latest.recommendation
		FROM watchlist w
		LEFT JOIN stocks s ON s.symbol = w.symbol
		LEFT JOIN (
			SELECT ar.symbol, ar.analysis_date, ar.overall_score, ar.recommendation
			FROM analysis_results ar
			WHERE ar.id = (
				SELECT id FROM analysis_results
				WHERE symbol = ar.symbol
				ORDER BY analysis_date DESC, id DESC
				LIMIT 1
			)
		) latest ON latest.symbol = w.symbol
		ORDER BY w.added_date DESC, w.symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e              Entry
			added          string
			analysisDate   sql.NullString
			overall        sql.NullFloat64
			recommendation sql.NullString
		)
		if err := rows.Scan(&e.Symbol, &added, &e.Notes, &e.Name, &analysisDate, &overall, &recommendation); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}

		if t, err := time.Parse(time.RFC3339, added); err == nil {
			e.AddedDate = t
		}
		if analysisDate.Valid {
			if t, err := time.Parse(time.RFC3339, analysisDate.String); err == nil {
				e.LatestAnalysis = &t
			}
		}
		if overall.Valid {
			v := overall.Float64
			e.OverallScore = &v
		}
		e.Recommendation = recommendation.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist: %w", err)
	}
	return entries, nil
}
