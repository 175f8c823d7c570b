package scoring

import "github.com/aristath/rebound/internal/domain"

// GateResult explains why a stock did or did not pass screening
type GateResult struct {
	Reason     string
	HoverShare float64
	Passed     bool
}

// passesDeclineGate checks the caller-supplied decline against the inclusive band
func passesDeclineGate(g GateRules, declinePct float64) bool {
	return declinePct >= g.MinDeclinePct && declinePct <= g.MaxDeclinePct
}

// hoverShare returns the fraction of recent bars whose decline from peak lies
// within the hover band
func hoverShare(g GateRules, peak float64, recent domain.PriceSeries) float64 {
	if len(recent) == 0 {
		return 0
	}
	inRange := 0
	for _, bar := range recent {
		d := domain.DeclinePct(peak, bar.Close)
		if d >= g.HoverMinPct && d <= g.HoverMaxPct {
			inRange++
		}
	}
	return float64(inRange) / float64(len(recent))
}

// evaluateGate runs both screening gates in order
func evaluateGate(g GateRules, in domain.StockInput) GateResult {
	if !passesDeclineGate(g, in.PriceDeclinePct) {
		return GateResult{Reason: "decline outside range"}
	}
	if len(in.Recent) < g.MinRecentBars {
		return GateResult{Reason: "not enough recent bars"}
	}
	share := hoverShare(g, in.MaxPrice2Y, in.Recent)
	if share < g.HoverMinShare {
		return GateResult{Reason: "not hovering in range", HoverShare: share}
	}
	return GateResult{Passed: true, HoverShare: share}
}
