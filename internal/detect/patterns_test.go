package detect

import (
	"testing"

	"FinSight/internal/domain/models"
)

func TestWeakTrendScenario(t *testing.T) {
	// Price 1% below VWAP, underperforming the index by 1.5%, three red
	// candles on above-average volume.
	m := models.IntradayMetrics{
		Price:             99,
		VWAP:              100,
		TickerChangePct:   -1.0,
		IndexChangePct:    0.5,
		RedCandleCount:    3,
		RedCandlesHighVol: true,
		RSI14:             45,
	}
	out := Run(m, models.PortfolioSnapshot{})
	if len(out) != 1 || out[0].Tag != models.TagWeakTrend {
		t.Fatalf("expected WEAK_TREND, got %+v", out)
	}
	if len(out[0].Conditions) != 3 {
		t.Fatalf("expected 3 conditions, got %v", out[0].Conditions)
	}
	if Severity(out) != models.SeverityCaution {
		t.Fatalf("3 conditions on one tag should rate caution, got %s", Severity(out))
	}
}

func TestWeakTrendBelowQuorum(t *testing.T) {
	// Only one condition fires: no tag.
	m := models.IntradayMetrics{Price: 99, VWAP: 100, RSI14: 45}
	out := Run(m, models.PortfolioSnapshot{})
	if len(out) != 0 {
		t.Fatalf("one condition must not meet the quorum: %+v", out)
	}
	if Severity(out) != models.SeverityNone {
		t.Fatalf("expected none, got %s", Severity(out))
	}
}

func TestExtendedMove(t *testing.T) {
	m := models.IntradayMetrics{
		Price:             103,
		IntradayChangePct: 3.1,
		RSI14:             78,
		NearestLevel:      104,
	}
	out := Run(m, models.PortfolioSnapshot{})
	if len(out) != 1 || out[0].Tag != models.TagExtendedMove {
		t.Fatalf("expected EXTENDED_MOVE, got %+v", out)
	}
	if len(out[0].Conditions) != 3 {
		t.Fatalf("expected 3 conditions, got %v", out[0].Conditions)
	}
}

func TestPortfolioRiskSingleCondition(t *testing.T) {
	p := models.PortfolioSnapshot{Positions: []models.Position{
		{Ticker: "AAPL", Weight: 0.30, PnLShare: 0.10},
		{Ticker: "MSFT", Weight: 0.10, PnLShare: 0.05},
	}}
	out := Run(models.IntradayMetrics{RSI14: 50}, p)
	if len(out) != 1 || out[0].Tag != models.TagPortfolioRisk {
		t.Fatalf("expected PORTFOLIO_RISK, got %+v", out)
	}
	// Quorum for portfolio risk is a single condition.
	if Severity(out) != models.SeverityWatch {
		t.Fatalf("expected watch, got %s", Severity(out))
	}
}

func TestPortfolioRiskConcentrationPair(t *testing.T) {
	p := models.PortfolioSnapshot{Positions: []models.Position{
		{Ticker: "AAPL", Weight: 0.20},
		{Ticker: "MSFT", Weight: 0.18},
	}}
	out := Run(models.IntradayMetrics{RSI14: 50}, p)
	if len(out) != 1 {
		t.Fatalf("expected one tag, got %+v", out)
	}
	if got := out[0].Conditions; len(got) != 1 || got[0] != "two or more positions each above 15%" {
		t.Fatalf("unexpected conditions: %v", got)
	}
}

func TestMultipleTagsAlert(t *testing.T) {
	m := models.IntradayMetrics{
		Price:             97,
		VWAP:              100,
		TickerChangePct:   -2.5,
		IndexChangePct:    0.0,
		IntradayChangePct: -2.5,
		RSI14:             22,
	}
	out := Run(m, models.PortfolioSnapshot{})
	if len(out) != 2 {
		t.Fatalf("expected two tags, got %+v", out)
	}
	if Severity(out) != models.SeverityAlert {
		t.Fatalf("two tags should rate alert, got %s", Severity(out))
	}
}

func TestRunDeterministicOrder(t *testing.T) {
	m := models.IntradayMetrics{
		Price:             97,
		VWAP:              100,
		TickerChangePct:   -2.5,
		IndexChangePct:    0.0,
		IntradayChangePct: -2.5,
		RSI14:             22,
	}
	a := Run(m, models.PortfolioSnapshot{})
	b := Run(m, models.PortfolioSnapshot{})
	if len(a) != len(b) {
		t.Fatalf("nondeterministic tag count")
	}
	for i := range a {
		if a[i].Tag != b[i].Tag {
			t.Fatalf("tag order changed between runs: %v vs %v", a, b)
		}
	}
}
