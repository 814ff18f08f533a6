package signal

import (
	"fmt"
	"time"

	"FinSight/internal/domain/models"
)

// Vote weights. They sum to 1.0 across the four votes; the denominator of the
// raw confidence is always the full weight, so abstaining votes dilute it.
const (
	WeightMACross   = 0.30
	WeightRSI       = 0.25
	WeightMACD      = 0.25
	WeightBollinger = 0.20

	// NeutralMargin is the summed-weight margin within which the call is neutral.
	NeutralMargin = 0.05

	// RSI thresholds for the extremity vote.
	RSIOversold   = 30
	RSIOverbought = 70
)

// Vote is one indicator-derived directional opinion.
type Vote struct {
	Name      string
	Direction models.SignalType
	Weight    float64
	Value     float64
}

// Aggregate converts an indicator set into a directional signal with an
// uncapped raw confidence recorded in the ledger. The ceiling is applied once,
// by the ledger, after all later adjustments.
func Aggregate(set *models.IndicatorSet, now time.Time) (models.SignalType, *Ledger, models.Reasoning) {
	votes := collectVotes(set)

	var bull, bear float64
	for _, v := range votes {
		switch v.Direction {
		case models.SignalBullish:
			bull += v.Weight
		case models.SignalBearish:
			bear += v.Weight
		}
	}

	total := WeightMACross + WeightRSI + WeightMACD + WeightBollinger

	direction := models.SignalNeutral
	winning := 0.0
	switch {
	case bull-bear > NeutralMargin:
		direction = models.SignalBullish
		winning = bull
	case bear-bull > NeutralMargin:
		direction = models.SignalBearish
		winning = bear
	}

	raw := 0.0
	if direction != models.SignalNeutral {
		raw = winning / total
	}

	reasoning := buildReasoning(votes, direction, set)
	ledger := NewLedger(raw)
	return direction, ledger, reasoning
}

func collectVotes(set *models.IndicatorSet) []Vote {
	votes := make([]Vote, 0, 4)

	// Moving-average crossover.
	maDir := models.SignalNeutral
	if set.SMA20 > set.SMA50 {
		maDir = models.SignalBullish
	} else if set.SMA20 < set.SMA50 {
		maDir = models.SignalBearish
	}
	votes = append(votes, Vote{Name: "ma_crossover", Direction: maDir, Weight: WeightMACross, Value: set.SMA20 - set.SMA50})

	// RSI extremity: oversold argues for recovery, overbought for pullback.
	rsiDir := models.SignalNeutral
	if set.RSI14 < RSIOversold {
		rsiDir = models.SignalBullish
	} else if set.RSI14 > RSIOverbought {
		rsiDir = models.SignalBearish
	}
	votes = append(votes, Vote{Name: "rsi_extremity", Direction: rsiDir, Weight: WeightRSI, Value: set.RSI14})

	// MACD line vs signal line.
	macdDir := models.SignalNeutral
	if set.MACDLine > set.MACDSignal {
		macdDir = models.SignalBullish
	} else if set.MACDLine < set.MACDSignal {
		macdDir = models.SignalBearish
	}
	votes = append(votes, Vote{Name: "macd_position", Direction: macdDir, Weight: WeightMACD, Value: set.MACDHistogram})

	// Price vs Bollinger bands: band breaches argue for mean reversion.
	bbDir := models.SignalNeutral
	if set.LastClose < set.BollingerLower {
		bbDir = models.SignalBullish
	} else if set.LastClose > set.BollingerUpper {
		bbDir = models.SignalBearish
	}
	votes = append(votes, Vote{Name: "bollinger_position", Direction: bbDir, Weight: WeightBollinger, Value: set.LastClose})

	return votes
}

func buildReasoning(votes []Vote, direction models.SignalType, set *models.IndicatorSet) models.Reasoning {
	r := models.Reasoning{
		Supporting: map[string]float64{
			"sma_20":    set.SMA20,
			"sma_50":    set.SMA50,
			"rsi_14":    set.RSI14,
			"macd_hist": set.MACDHistogram,
			"close":     set.LastClose,
		},
	}
	for _, v := range votes {
		if v.Direction == models.SignalNeutral {
			continue
		}
		desc := fmt.Sprintf("%s %s (%.2f)", v.Name, v.Direction, v.Value)
		if v.Direction == direction {
			r.Primary = append(r.Primary, desc)
		} else {
			r.Contradicting = append(r.Contradicting, desc)
		}
	}
	return r
}
