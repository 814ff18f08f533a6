package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinSight/internal/domain/models"
	applogger "FinSight/pkg/logger"
)

var fixedNow = time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func trendingSeries(ticker string, n int) *models.MarketSeries {
	base := time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, n)
	for i := range bars {
		c := 100 + float64(i)*0.8
		bars[i] = models.PriceBar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return &models.MarketSeries{Ticker: ticker, Bars: bars}
}

// fixedFetcher serves canned series with a fixed provenance.
type fixedFetcher struct {
	series     *models.MarketSeries
	index      *models.MarketSeries
	provenance models.Provenance
	indexErr   error
}

func (f *fixedFetcher) Fetch(context.Context, string, int) (*models.MarketSeries, models.Provenance, error) {
	return f.series, f.provenance, nil
}

func (f *fixedFetcher) FetchIndex(context.Context, int) (*models.MarketSeries, models.Provenance, error) {
	if f.indexErr != nil {
		return nil, models.ProvenanceUnavailable, f.indexErr
	}
	return f.index, f.provenance, nil
}

func newTestAnalyzer(t *testing.T, f SeriesFetcher, opts ...AnalyzerOption) *Analyzer {
	t.Helper()
	all := append([]AnalyzerOption{
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	}, opts...)
	return NewAnalyzer(f, testLogger(t), all...)
}

func TestAnalyzeEndToEnd(t *testing.T) {
	f := &fixedFetcher{
		series:     trendingSeries("AAPL", 80),
		index:      trendingSeries("SPY", 80),
		provenance: models.ProvenanceLive,
	}
	a := newTestAnalyzer(t, f)

	res, err := a.Analyze(context.Background(), models.AnalysisRequest{Ticker: "aapl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Ticker != "AAPL" {
		t.Fatalf("ticker must be normalized, got %s", res.Ticker)
	}
	if res.Summary == "" {
		t.Fatalf("summary missing")
	}
	if res.Disclaimer == "" {
		t.Fatalf("disclaimer missing")
	}
	if res.Provenance != models.ProvenanceLive {
		t.Fatalf("unexpected provenance %s", res.Provenance)
	}
	if res.Signal.Confidence > models.ConfidenceCeiling {
		t.Fatalf("confidence above ceiling: %v", res.Signal.Confidence)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	f := &fixedFetcher{
		series:     trendingSeries("AAPL", 80),
		index:      trendingSeries("SPY", 80),
		provenance: models.ProvenanceLive,
	}
	a := newTestAnalyzer(t, f)

	req := models.AnalysisRequest{Ticker: "AAPL"}
	r1, err := a.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := a.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.Summary != r2.Summary {
		t.Fatalf("summaries differ:\n%q\n%q", r1.Summary, r2.Summary)
	}
	if r1.Signal.Confidence != r2.Signal.Confidence || r1.Signal.Type != r2.Signal.Type {
		t.Fatalf("signal differs between identical runs")
	}
}

func TestAnalyzeStalePenaltyApplied(t *testing.T) {
	fresh := &fixedFetcher{
		series:     trendingSeries("AAPL", 80),
		index:      trendingSeries("SPY", 80),
		provenance: models.ProvenanceCacheFresh,
	}
	stale := &fixedFetcher{
		series:     trendingSeries("AAPL", 80),
		index:      trendingSeries("SPY", 80),
		provenance: models.ProvenanceCacheStale,
	}

	rf, err := newTestAnalyzer(t, fresh).Analyze(context.Background(), models.AnalysisRequest{Ticker: "AAPL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rs, err := newTestAnalyzer(t, stale).Analyze(context.Background(), models.AnalysisRequest{Ticker: "AAPL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rf.Signal.Type == models.SignalNeutral {
		t.Fatalf("test setup should produce a directional call")
	}
	want := rf.Signal.Confidence * 0.90
	if diff := rs.Signal.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("stale confidence %v, want %v", rs.Signal.Confidence, want)
	}
}

func TestAnalyzeIndexFailureTolerated(t *testing.T) {
	f := &fixedFetcher{
		series:     trendingSeries("AAPL", 80),
		provenance: models.ProvenanceLive,
		indexErr:   errors.New("index providers down"),
	}
	a := newTestAnalyzer(t, f)

	res, err := a.Analyze(context.Background(), models.AnalysisRequest{Ticker: "AAPL"})
	if err != nil {
		t.Fatalf("index failure must not fail the analysis: %v", err)
	}
	if len(res.Regime.Labels) != 0 {
		t.Fatalf("regime labels must be empty without index data: %v", res.Regime.Labels)
	}
	if res.Regime.DataSource != models.ProvenanceUnavailable {
		t.Fatalf("regime source should be unavailable, got %s", res.Regime.DataSource)
	}
}

func TestValidateTickerSyntax(t *testing.T) {
	a := newTestAnalyzer(t, &fixedFetcher{})
	for _, raw := range []string{"", "123", "aapl!", "TOOLONGTICKER", "a b"} {
		if _, err := a.validateTicker(raw); err == nil {
			t.Fatalf("expected rejection for %q", raw)
		}
	}
	for _, raw := range []string{"AAPL", "brk.b", " msft "} {
		got, err := a.validateTicker(raw)
		if err != nil {
			t.Fatalf("unexpected rejection for %q: %v", raw, err)
		}
		if got != "AAPL" && got != "BRK.B" && got != "MSFT" {
			t.Fatalf("unexpected normalization %q -> %q", raw, got)
		}
	}
}

func TestValidateTickerAllowlist(t *testing.T) {
	a := newTestAnalyzer(t, &fixedFetcher{}, WithAllowlist([]string{"aapl", "MSFT"}))
	if _, err := a.validateTicker("GOOG"); err == nil {
		t.Fatalf("allowlist must reject unknown tickers")
	}
	var invalid *models.InvalidTickerError
	_, err := a.validateTicker("GOOG")
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTickerError, got %v", err)
	}
	if got, err := a.validateTicker("aapl"); err != nil || got != "AAPL" {
		t.Fatalf("allowlisted ticker rejected: %v", err)
	}
}

func TestBuildIntradayMetricsSessionPrecedence(t *testing.T) {
	series := trendingSeries("AAPL", 60)
	set := &models.IndicatorSet{RSI14: 55, SMA20: 100}
	session := []models.PriceBar{
		{Open: 100, High: 103, Low: 99, Close: 102, Volume: 500},
		{Open: 102, High: 105, Low: 101, Close: 104, Volume: 700},
	}
	m := buildIntradayMetrics(series, nil, session, set)
	if m.Price != 104 {
		t.Fatalf("session close should win, got %v", m.Price)
	}
	if m.IntradayChangePct <= 0 {
		t.Fatalf("expected positive session change, got %v", m.IntradayChangePct)
	}
}

func TestOpenGapPct(t *testing.T) {
	series := trendingSeries("AAPL", 10)
	n := len(series.Bars)
	series.Bars[n-1].Open = series.Bars[n-2].Close * 1.03
	got := openGapPct(series)
	if got < 2.9 || got > 3.1 {
		t.Fatalf("expected ~3%% gap, got %v", got)
	}
}
