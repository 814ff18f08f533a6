package risk

import (
	"fmt"

	"FinSight/internal/domain/models"
)

// Threshold constants for the six checks.
const (
	LowConfidenceHigh     = 0.60
	LowConfidenceModerate = 0.70

	BollingerWidthHigh     = 0.15
	BollingerWidthModerate = 0.10

	RSIExtremeHigh = 85.0
	RSIExtremeLow  = 15.0

	ContradictingVotesModerate = 2
)

// Disclaimer is appended to every assessment and cannot be suppressed by callers.
const Disclaimer = "Analysis is informational only and reflects historical data. " +
	"It is not investment advice; markets may move against any reading."

var mandatoryWarnings = []string{
	"Signals describe conditions that may change without notice.",
	"Past indicator behavior does not determine future prices.",
}

// Evaluate runs the six independent checks against a signal and its
// indicators, derives the overall level as the maximum triggered level, and
// resolves actionability from the (overall, tolerance) table. Neutral signals
// and critical assessments are never actionable regardless of tolerance.
func Evaluate(sig models.Signal, set *models.IndicatorSet, horizon models.Horizon, tol models.Tolerance) models.RiskAssessment {
	var factors []models.RiskFactor
	add := func(name string, level models.RiskLevel, desc string) {
		factors = append(factors, models.RiskFactor{Name: name, Level: level, Description: desc})
	}

	// 1. Low confidence.
	switch {
	case sig.Confidence < LowConfidenceHigh:
		add("low_confidence", models.RiskHigh,
			fmt.Sprintf("confidence %.2f below %.2f", sig.Confidence, LowConfidenceHigh))
	case sig.Confidence < LowConfidenceModerate:
		add("low_confidence", models.RiskModerate,
			fmt.Sprintf("confidence %.2f below %.2f", sig.Confidence, LowConfidenceModerate))
	}

	// 2. High volatility via Bollinger band width.
	width := set.BollingerWidthRatio()
	switch {
	case width > BollingerWidthHigh:
		add("high_volatility", models.RiskHigh,
			fmt.Sprintf("band width ratio %.1f%% above %.0f%%", width*100, BollingerWidthHigh*100))
	case width > BollingerWidthModerate:
		add("high_volatility", models.RiskModerate,
			fmt.Sprintf("band width ratio %.1f%% above %.0f%%", width*100, BollingerWidthModerate*100))
	}

	// 3. Indicator extremity.
	if set.RSI14 > RSIExtremeHigh || (set.RSI14 < RSIExtremeLow && set.RSI14 > 0) {
		add("indicator_extremity", models.RiskHigh,
			fmt.Sprintf("RSI %.1f at an extreme", set.RSI14))
	}

	// 4. Contradicting votes.
	if len(sig.Reasoning.Contradicting) >= ContradictingVotesModerate {
		add("contradicting_votes", models.RiskModerate,
			fmt.Sprintf("%d indicator votes oppose the call", len(sig.Reasoning.Contradicting)))
	}

	// 5. Restricted time-horizon mode.
	if horizon == models.HorizonIntraday {
		add("restricted_horizon", models.RiskModerate,
			"intraday horizon restricts holding-period assumptions")
	}

	// 6. Standing single-instrument context reminder.
	add("single_instrument_context", models.RiskLow,
		"assessment covers one instrument without portfolio context")

	overall := models.RiskLow
	for _, f := range factors {
		overall = models.MaxRiskLevel(overall, f.Level)
	}

	warnings := make([]string, 0, len(mandatoryWarnings)+1)
	warnings = append(warnings, mandatoryWarnings...)
	if overall.Severity() >= models.RiskHigh.Severity() {
		warnings = append(warnings, "Elevated risk conditions detected; readings carry reduced reliability.")
	}

	return models.RiskAssessment{
		Overall:    overall,
		Factors:    factors,
		Actionable: actionable(sig.Type, overall, tol),
		Warnings:   warnings,
		Constraints: []string{
			fmt.Sprintf("confidence capped at %.2f", models.ConfidenceCeiling),
		},
	}
}

// actionable is a pure lookup on (signal type, overall level, tolerance).
func actionable(typ models.SignalType, overall models.RiskLevel, tol models.Tolerance) bool {
	if typ == models.SignalNeutral {
		return false
	}
	switch overall {
	case models.RiskCritical:
		return false
	case models.RiskHigh:
		return tol == models.ToleranceAggressive
	case models.RiskModerate:
		return tol == models.ToleranceAggressive || tol == models.ToleranceModerate
	default:
		return true
	}
}
