package signal

import "FinSight/internal/domain/models"

// Adjustment is one recorded confidence change with its cause.
type Adjustment struct {
	Stage  string
	Reason string
	Factor float64 // multiplicative, e.g. 0.90 for a -10% penalty
}

// Ledger threads confidence through the pipeline so the hard ceiling is
// applied exactly once, after every adjustment, instead of being re-clamped
// (and possibly re-exceeded) at each stage.
type Ledger struct {
	base        float64
	adjustments []Adjustment
}

// NewLedger starts a ledger from the aggregator's raw confidence.
func NewLedger(base float64) *Ledger {
	return &Ledger{base: base}
}

// Penalize records a fractional reduction, e.g. Penalize("provider", "stale cache", 0.10).
func (l *Ledger) Penalize(stage, reason string, fraction float64) {
	if fraction <= 0 {
		return
	}
	if fraction > 1 {
		fraction = 1
	}
	l.adjustments = append(l.adjustments, Adjustment{Stage: stage, Reason: reason, Factor: 1 - fraction})
}

// Base returns the starting confidence before adjustments.
func (l *Ledger) Base() float64 { return l.base }

// Adjustments returns the recorded changes, oldest first.
func (l *Ledger) Adjustments() []Adjustment { return l.adjustments }

// Final applies every adjustment multiplicatively and clamps the result to
// [0, ConfidenceCeiling]. This is the only place the ceiling is enforced.
func (l *Ledger) Final() float64 {
	c := l.base
	for _, a := range l.adjustments {
		c *= a.Factor
	}
	return models.ClampConfidence(c)
}
