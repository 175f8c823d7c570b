package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniverse_Defaults(t *testing.T) {
	u := NewUniverse(nil)
	assert.Len(t, u.Symbols(0), len(DefaultSymbols))
	assert.Equal(t, []string{"RELIANCE.NS", "TCS.NS"}, u.Symbols(2))
}

func TestUniverse_NormalizesAndDeduplicates(t *testing.T) {
	u := NewUniverse([]string{"tcs", "TCS.NS", " infy ", ""})
	assert.Equal(t, []string{"TCS.NS", "INFY.NS"}, u.Symbols(10))
	assert.True(t, u.Contains("infy"))
	assert.False(t, u.Contains("WIPRO"))

	u.Replace(nil)
	assert.True(t, u.Contains("WIPRO"))
}

func TestUniverse_SymbolsIsACopy(t *testing.T) {
	u := NewUniverse([]string{"TCS"})
	s := u.Symbols(0)
	s[0] = "HACKED"
	assert.Equal(t, "TCS.NS", u.Symbols(0)[0])
}

func TestSectorPE(t *testing.T) {
	assert.Equal(t, 25.0, SectorPE("Technology"))
	assert.Equal(t, 12.0, SectorPE("Energy"))
	assert.Equal(t, DefaultSectorPE, SectorPE("Unknown"))
}
