package models

import (
	"errors"
	"testing"
	"time"
)

func TestClampConfidence(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-0.1, 0},
		{0, 0},
		{0.5, 0.5},
		{0.95, 0.95},
		{0.96, 0.95},
		{1.5, 0.95},
	}
	for _, c := range cases {
		if got := ClampConfidence(c.in); got != c.want {
			t.Fatalf("ClampConfidence(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestStrengthBands(t *testing.T) {
	cases := []struct {
		in   float64
		want Strength
	}{
		{0.59, StrengthWeak},
		{0.60, StrengthModerate},
		{0.74, StrengthModerate},
		{0.75, StrengthStrong},
		{0.95, StrengthStrong},
	}
	for _, c := range cases {
		if got := StrengthFor(c.in); got != c.want {
			t.Fatalf("StrengthFor(%v) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestNewSignalClampsAndLabels(t *testing.T) {
	s := NewSignal("AAPL", time.Now(), SignalBullish, 1.2, Reasoning{})
	if s.Confidence != ConfidenceCeiling {
		t.Fatalf("expected clamp to %v, got %v", ConfidenceCeiling, s.Confidence)
	}
	if s.Strength != StrengthStrong {
		t.Fatalf("expected strong, got %s", s.Strength)
	}
}

func TestProvenancePenalties(t *testing.T) {
	cases := []struct {
		p    Provenance
		want float64
	}{
		{ProvenanceLive, 0},
		{ProvenanceCacheFresh, 0},
		{ProvenanceCacheStale, 0.10},
		{ProvenanceErrorFallback, 0.15},
		{ProvenanceUnavailable, 0},
	}
	for _, c := range cases {
		if got := c.p.Penalty(); got != c.want {
			t.Fatalf("%s penalty = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestMaxRiskLevel(t *testing.T) {
	if got := MaxRiskLevel(RiskLow, RiskHigh); got != RiskHigh {
		t.Fatalf("expected high, got %s", got)
	}
	if got := MaxRiskLevel(RiskCritical, RiskModerate); got != RiskCritical {
		t.Fatalf("expected critical, got %s", got)
	}
}

func TestNormalizeTolerance(t *testing.T) {
	if got := NormalizeTolerance("aggressive"); got != ToleranceAggressive {
		t.Fatalf("unexpected %s", got)
	}
	if got := NormalizeTolerance("bogus"); got != ToleranceConservative {
		t.Fatalf("unknown tolerance should default conservative, got %s", got)
	}
}

func TestNormalizeHorizon(t *testing.T) {
	if got := NormalizeHorizon("intraday"); got != HorizonIntraday {
		t.Fatalf("unexpected %s", got)
	}
	if got := NormalizeHorizon(""); got != HorizonSwing {
		t.Fatalf("empty horizon should default swing, got %s", got)
	}
}

func TestIsRecoverable(t *testing.T) {
	if !IsRecoverable(&RateLimitedError{Provider: "finnhub"}) {
		t.Fatalf("rate limits are recoverable")
	}
	if IsRecoverable(&InvalidTickerError{Ticker: "x"}) {
		t.Fatalf("invalid tickers are not recoverable")
	}
	if IsRecoverable(errors.New("other")) {
		t.Fatalf("plain errors are not recoverable")
	}
}

func TestPriceBarValidate(t *testing.T) {
	ts := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	good := PriceBar{Timestamp: ts, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid bar rejected: %v", err)
	}

	bad := []PriceBar{
		{Timestamp: ts, Open: 0, High: 11, Low: 9, Close: 10, Volume: 100},
		{Timestamp: ts, Open: 10, High: 8, Low: 9, Close: 10, Volume: 100},
		{Timestamp: ts, Open: 10, High: 11, Low: 10.6, Close: 10.5, Volume: 100},
		{Timestamp: ts, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: -1},
	}
	for i, b := range bad {
		if err := b.Validate(); err == nil {
			t.Fatalf("bar %d should be rejected", i)
		}
	}
}

func TestCheckOrdered(t *testing.T) {
	ts := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	bar := func(d int) PriceBar {
		return PriceBar{Timestamp: ts.AddDate(0, 0, d), Open: 10, High: 11, Low: 9, Close: 10, Volume: 1}
	}
	ordered := &MarketSeries{Ticker: "AAPL", Bars: []PriceBar{bar(0), bar(1), bar(2)}}
	if err := ordered.CheckOrdered(); err != nil {
		t.Fatalf("ordered series rejected: %v", err)
	}
	unordered := &MarketSeries{Ticker: "AAPL", Bars: []PriceBar{bar(0), bar(2), bar(1)}}
	if err := unordered.CheckOrdered(); err == nil {
		t.Fatalf("unordered series accepted")
	}
	duplicate := &MarketSeries{Ticker: "AAPL", Bars: []PriceBar{bar(0), bar(0)}}
	if err := duplicate.CheckOrdered(); err == nil {
		t.Fatalf("duplicate timestamps accepted")
	}
}
