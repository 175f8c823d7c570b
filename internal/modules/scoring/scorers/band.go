// Package scorers implements the fundamental and technical sub-scores.
package scorers

import (
	"fmt"
	"math"
)

// Band awards Points when a value lies within [Min, Max]. A nil bound is open.
type Band struct {
	Min    *float64 `json:"min,omitempty" yaml:"min"`
	Max    *float64 `json:"max,omitempty" yaml:"max"`
	Points float64  `json:"points" yaml:"points"`
}

// Contains reports whether v lies inside the band, bounds inclusive
func (b Band) Contains(v float64) bool {
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v > *b.Max {
		return false
	}
	return true
}

func (b Band) clone() Band {
	c := Band{Points: b.Points}
	if b.Min != nil {
		c.Min = bound(*b.Min)
	}
	if b.Max != nil {
		c.Max = bound(*b.Max)
	}
	return c
}

func (b Band) validate() error {
	if b.Points < 0 {
		return fmt.Errorf("band points must be non-negative, got %v", b.Points)
	}
	if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
		return fmt.Errorf("band min %v is above max %v", *b.Min, *b.Max)
	}
	return nil
}

// firstMatch returns the points of the first band containing v.
// Bands are evaluated in order, so the strictest tier must come first.
func firstMatch(bands []Band, v float64) float64 {
	for _, b := range bands {
		if b.Contains(v) {
			return b.Points
		}
	}
	return 0
}

func cloneBands(bands []Band) []Band {
	out := make([]Band, len(bands))
	for i, b := range bands {
		out[i] = b.clone()
	}
	return out
}

func bound(v float64) *float64 {
	return &v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
