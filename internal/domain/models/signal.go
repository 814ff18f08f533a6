package models

import "time"

// ConfidenceCeiling is the hard upper bound on any published confidence.
// It is enforced at construction and re-applied after every later adjustment;
// no code path may emit a higher value.
const ConfidenceCeiling = 0.95

type SignalType string

const (
	SignalBullish SignalType = "bullish"
	SignalBearish SignalType = "bearish"
	SignalNeutral SignalType = "neutral"
)

type Strength string

const (
	StrengthWeak     Strength = "weak"
	StrengthModerate Strength = "moderate"
	StrengthStrong   Strength = "strong"
)

// Reasoning carries the explanation attached to a signal: which factors drove
// the call, the raw values behind them, and which factors disagreed.
type Reasoning struct {
	Primary       []string           `json:"primary,omitempty"`
	Supporting    map[string]float64 `json:"supporting,omitempty"`
	Contradicting []string           `json:"contradicting,omitempty"`
}

// Signal is a directional call with bounded confidence.
type Signal struct {
	Ticker     string     `json:"ticker"`
	Timestamp  time.Time  `json:"timestamp"`
	Type       SignalType `json:"type"`
	Confidence float64    `json:"confidence"`
	Strength   Strength   `json:"strength"`
	Reasoning  Reasoning  `json:"reasoning"`
}

// NewSignal builds a signal with the ceiling and floor applied and the
// strength label derived from the clamped confidence.
func NewSignal(ticker string, ts time.Time, typ SignalType, confidence float64, reasoning Reasoning) Signal {
	confidence = ClampConfidence(confidence)
	return Signal{
		Ticker:     ticker,
		Timestamp:  ts,
		Type:       typ,
		Confidence: confidence,
		Strength:   StrengthFor(confidence),
		Reasoning:  reasoning,
	}
}

// ClampConfidence bounds a confidence value to [0, ConfidenceCeiling].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > ConfidenceCeiling {
		return ConfidenceCeiling
	}
	return c
}

// StrengthFor maps confidence to its strength band.
func StrengthFor(confidence float64) Strength {
	switch {
	case confidence >= 0.75:
		return StrengthStrong
	case confidence >= 0.60:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}
