package universe

import (
	"sort"

	"github.com/aristath/rebound/internal/domain"
	"github.com/rs/zerolog"
)

// PriceValidator cleans raw bars before they reach the scoring engine
type PriceValidator struct {
	log zerolog.Logger
}

// NewPriceValidator creates a new price validator
func NewPriceValidator(log zerolog.Logger) *PriceValidator {
	return &PriceValidator{
		log: log.With().Str("component", "price_validator").Logger(),
	}
}

// ValidateBar checks a single bar. Returns (isValid, reason).
func (v *PriceValidator) ValidateBar(bar domain.PriceBar) (bool, string) {
	if bar.Close <= 0 {
		return false, "non_positive_close"
	}
	if bar.Volume < 0 {
		return false, "negative_volume"
	}
	// Some feeds leave High/Low at zero on thin days; only check when present.
	if bar.High > 0 && bar.Low > 0 && bar.High < bar.Low {
		return false, "high_below_low"
	}
	return true, ""
}

// Sanitize sorts bars by date, keeps the last bar for a duplicated date and
// drops invalid bars. The input is not modified.
func (v *PriceValidator) Sanitize(symbol string, series domain.PriceSeries) domain.PriceSeries {
	sorted := make(domain.PriceSeries, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := make(domain.PriceSeries, 0, len(sorted))
	dropped := 0
	for _, bar := range sorted {
		if ok, reason := v.ValidateBar(bar); !ok {
			dropped++
			v.log.Debug().
				Str("symbol", symbol).
				Time("date", bar.Date).
				Str("reason", reason).
				Msg("Dropping invalid bar")
			continue
		}
		if n := len(out); n > 0 && out[n-1].Date.Equal(bar.Date) {
			out[n-1] = bar
			dropped++
			continue
		}
		out = append(out, bar)
	}

	if dropped > 0 {
		v.log.Info().Str("symbol", symbol).Int("dropped", dropped).Msg("Sanitized price series")
	}
	return out
}
