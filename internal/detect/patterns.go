package detect

import (
	"math"

	"FinSight/internal/domain/models"
)

// Named thresholds for the three rule sets.
const (
	IndexUnderperformPct = 1.0
	RedCandleMinimum     = 3
	IntradayMovePct      = 2.0
	LevelProximityPct    = 2.0
	RSILowerBound        = 30.0
	RSIUpperBound        = 70.0
	PositionWeightSingle = 0.25
	PositionWeightPair   = 0.15
	PositionPairCount    = 2
	PnLShareDominant     = 0.40

	// Condition quorums per rule set.
	WeakTrendQuorum     = 2
	ExtendedMoveQuorum  = 2
	PortfolioRiskQuorum = 1

	// A single tag with this many sub-conditions escalates from watch to caution.
	DenseConditionCount = 3
)

// Run evaluates the three independent, order-independent rule sets over the
// latest intraday metrics and portfolio snapshot. Tags are a pure function of
// the inputs: same metrics in, same tags out, regardless of what other
// pipeline stages (regime context included) were enabled.
func Run(m models.IntradayMetrics, p models.PortfolioSnapshot) []models.Detection {
	var out []models.Detection
	if d, ok := weakTrend(m); ok {
		out = append(out, d)
	}
	if d, ok := extendedMove(m); ok {
		out = append(out, d)
	}
	if d, ok := portfolioRisk(p); ok {
		out = append(out, d)
	}
	return out
}

// Severity derives purely from tag count and sub-condition density. Tags never
// mutate the signal they annotate.
func Severity(detections []models.Detection) models.DetectionSeverity {
	switch len(detections) {
	case 0:
		return models.SeverityNone
	case 1:
		if len(detections[0].Conditions) >= DenseConditionCount {
			return models.SeverityCaution
		}
		return models.SeverityWatch
	default:
		return models.SeverityAlert
	}
}

func weakTrend(m models.IntradayMetrics) (models.Detection, bool) {
	var conds []string
	if m.VWAP > 0 && m.Price < m.VWAP {
		conds = append(conds, "price below VWAP")
	}
	if m.IndexChangePct-m.TickerChangePct > IndexUnderperformPct {
		conds = append(conds, "underperforming index by more than 1%")
	}
	if m.RedCandleCount >= RedCandleMinimum && m.RedCandlesHighVol {
		conds = append(conds, "3+ red candles on above-average volume")
	}
	if m.BelowShortTermMA {
		conds = append(conds, "price below short-term moving average")
	}
	if len(conds) < WeakTrendQuorum {
		return models.Detection{}, false
	}
	return models.Detection{Tag: models.TagWeakTrend, Conditions: conds}, true
}

func extendedMove(m models.IntradayMetrics) (models.Detection, bool) {
	var conds []string
	if math.Abs(m.IntradayChangePct) > IntradayMovePct {
		conds = append(conds, "intraday move beyond 2%")
	}
	if m.RSI14 > 0 && (m.RSI14 < RSILowerBound || m.RSI14 > RSIUpperBound) {
		conds = append(conds, "RSI outside 30-70")
	}
	if m.NearestLevel > 0 && m.Price > 0 {
		dist := math.Abs(m.Price-m.NearestLevel) / m.NearestLevel * 100
		if dist <= LevelProximityPct {
			conds = append(conds, "price within 2% of a support/resistance level")
		}
	}
	if len(conds) < ExtendedMoveQuorum {
		return models.Detection{}, false
	}
	return models.Detection{Tag: models.TagExtendedMove, Conditions: conds}, true
}

func portfolioRisk(p models.PortfolioSnapshot) (models.Detection, bool) {
	var conds []string

	heavy := 0
	for _, pos := range p.Positions {
		if pos.Weight > PositionWeightSingle {
			conds = append(conds, "single position above 25% of portfolio value")
			break
		}
	}
	for _, pos := range p.Positions {
		if pos.Weight > PositionWeightPair {
			heavy++
		}
	}
	if heavy >= PositionPairCount {
		conds = append(conds, "two or more positions each above 15%")
	}
	for _, pos := range p.Positions {
		if pos.PnLShare > PnLShareDominant {
			conds = append(conds, "single position driving over 40% of daily P&L")
			break
		}
	}

	if len(conds) < PortfolioRiskQuorum {
		return models.Detection{}, false
	}
	return models.Detection{Tag: models.TagPortfolioRisk, Conditions: conds}, true
}
