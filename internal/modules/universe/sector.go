package universe

// DefaultSectorPE is used for sectors without a reference P/E
const DefaultSectorPE = 20.0

var sectorPE = map[string]float64{
	"Technology":         25,
	"Financial Services": 15,
	"Consumer Goods":     30,
	"Healthcare":         35,
	"Energy":             12,
	"Utilities":          18,
	"Industrial":         20,
	"Materials":          16,
}

// SectorPE returns the reference P/E ratio for a sector
func SectorPE(sector string) float64 {
	if pe, ok := sectorPE[sector]; ok {
		return pe
	}
	return DefaultSectorPE
}

// Sectors lists the sectors with a reference P/E
func Sectors() []string {
	out := make([]string, 0, len(sectorPE))
	for s := range sectorPE {
		out = append(out, s)
	}
	return out
}
