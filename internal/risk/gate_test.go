package risk

import (
	"testing"

	"FinSight/internal/domain/models"
)

func calmSet() *models.IndicatorSet {
	return &models.IndicatorSet{
		RSI14:           55,
		BollingerUpper:  102,
		BollingerMiddle: 100,
		BollingerLower:  98,
		LastClose:       100,
	}
}

func bullish(conf float64) models.Signal {
	return models.Signal{Type: models.SignalBullish, Confidence: conf}
}

func TestEvaluateCalmConditionsLowRisk(t *testing.T) {
	a := Evaluate(bullish(0.80), calmSet(), models.HorizonSwing, models.ToleranceConservative)
	if a.Overall != models.RiskLow {
		t.Fatalf("expected low, got %s", a.Overall)
	}
	if !a.Actionable {
		t.Fatalf("low risk should be actionable for every tolerance")
	}
	// The standing context factor always fires.
	if len(a.Factors) != 1 || a.Factors[0].Name != "single_instrument_context" {
		t.Fatalf("unexpected factors: %+v", a.Factors)
	}
}

func TestEvaluateExtremeRSIAndWideBands(t *testing.T) {
	set := calmSet()
	set.RSI14 = 92
	set.BollingerUpper = 109 // width 18% of middle
	set.BollingerLower = 91
	a := Evaluate(bullish(0.80), set, models.HorizonSwing, models.ToleranceModerate)
	if a.Overall != models.RiskHigh {
		t.Fatalf("expected high, got %s", a.Overall)
	}
	if a.Actionable {
		t.Fatalf("high risk must not be actionable for moderate tolerance")
	}
	aggr := Evaluate(bullish(0.80), set, models.HorizonSwing, models.ToleranceAggressive)
	if !aggr.Actionable {
		t.Fatalf("high risk should be actionable only for aggressive tolerance")
	}
}

func TestEvaluateLowConfidenceTiers(t *testing.T) {
	high := Evaluate(bullish(0.55), calmSet(), models.HorizonSwing, models.ToleranceAggressive)
	if high.Overall != models.RiskHigh {
		t.Fatalf("confidence 0.55 should rate high, got %s", high.Overall)
	}
	moderate := Evaluate(bullish(0.65), calmSet(), models.HorizonSwing, models.ToleranceAggressive)
	if moderate.Overall != models.RiskModerate {
		t.Fatalf("confidence 0.65 should rate moderate, got %s", moderate.Overall)
	}
}

func TestEvaluateNeutralNeverActionable(t *testing.T) {
	sig := models.Signal{Type: models.SignalNeutral, Confidence: 0}
	a := Evaluate(sig, calmSet(), models.HorizonSwing, models.ToleranceAggressive)
	if a.Actionable {
		t.Fatalf("neutral signals must never be actionable")
	}
}

func TestEvaluateIntradayHorizonModerate(t *testing.T) {
	a := Evaluate(bullish(0.80), calmSet(), models.HorizonIntraday, models.ToleranceConservative)
	if a.Overall != models.RiskModerate {
		t.Fatalf("intraday horizon should rate moderate, got %s", a.Overall)
	}
	if a.Actionable {
		t.Fatalf("moderate risk must not be actionable for conservative tolerance")
	}
}

func TestEvaluateContradictingVotes(t *testing.T) {
	sig := bullish(0.80)
	sig.Reasoning.Contradicting = []string{"rsi_extremity bearish (75.00)", "macd_position bearish (-0.10)"}
	a := Evaluate(sig, calmSet(), models.HorizonSwing, models.ToleranceModerate)
	found := false
	for _, f := range a.Factors {
		if f.Name == "contradicting_votes" && f.Level == models.RiskModerate {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected contradicting_votes moderate factor: %+v", a.Factors)
	}
}

func TestEvaluateMandatoryWarningsAndDisclaimer(t *testing.T) {
	a := Evaluate(bullish(0.80), calmSet(), models.HorizonSwing, models.ToleranceConservative)
	if len(a.Warnings) < 2 {
		t.Fatalf("mandatory warnings missing: %v", a.Warnings)
	}
	if len(a.Constraints) == 0 {
		t.Fatalf("ceiling constraint missing")
	}
	if Disclaimer == "" {
		t.Fatalf("disclaimer must be non-empty")
	}
}

func TestActionableLookup(t *testing.T) {
	cases := []struct {
		overall models.RiskLevel
		tol     models.Tolerance
		want    bool
	}{
		{models.RiskLow, models.ToleranceConservative, true},
		{models.RiskModerate, models.ToleranceConservative, false},
		{models.RiskModerate, models.ToleranceModerate, true},
		{models.RiskModerate, models.ToleranceAggressive, true},
		{models.RiskHigh, models.ToleranceModerate, false},
		{models.RiskHigh, models.ToleranceAggressive, true},
		{models.RiskCritical, models.ToleranceAggressive, false},
	}
	for _, c := range cases {
		got := actionable(models.SignalBullish, c.overall, c.tol)
		if got != c.want {
			t.Fatalf("actionable(%s, %s) = %v, want %v", c.overall, c.tol, got, c.want)
		}
	}
}
