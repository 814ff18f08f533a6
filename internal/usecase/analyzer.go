package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"FinSight/internal/detect"
	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/internal/format"
	"FinSight/internal/indicator"
	"FinSight/internal/regime"
	"FinSight/internal/risk"
	"FinSight/internal/signal"
	applogger "FinSight/pkg/logger"
)

// SeriesFetcher is the provider-layer contract the analyzer depends on.
type SeriesFetcher interface {
	Fetch(ctx context.Context, ticker string, lookbackDays int) (*models.MarketSeries, models.Provenance, error)
	FetchIndex(ctx context.Context, lookbackDays int) (*models.MarketSeries, models.Provenance, error)
}

// SessionSource serves today's intraday bars for a symbol, when available.
type SessionSource interface {
	SessionBars(symbol string) []models.PriceBar
}

// PortfolioSource exposes the read-only holdings snapshot consumed by the
// portfolio-risk rule set.
type PortfolioSource interface {
	Snapshot(ctx context.Context) (models.PortfolioSnapshot, error)
}

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// Analyzer runs the full decision pipeline for one request. It is stateless
// across requests; all shared state lives behind the provider layer.
type Analyzer struct {
	fetcher   SeriesFetcher
	session   SessionSource
	portfolio PortfolioSource
	audit     repository.AuditSink
	metrics   repository.Metrics
	log       *applogger.Logger

	timeout   time.Duration
	location  *time.Location
	allowlist map[string]bool
	now       func() time.Time
}

type AnalyzerOption func(*Analyzer)

func WithSession(s SessionSource) AnalyzerOption     { return func(a *Analyzer) { a.session = s } }
func WithPortfolio(p PortfolioSource) AnalyzerOption { return func(a *Analyzer) { a.portfolio = p } }
func WithAuditSink(s repository.AuditSink) AnalyzerOption {
	return func(a *Analyzer) { a.audit = s }
}
func WithMetrics(m repository.Metrics) AnalyzerOption { return func(a *Analyzer) { a.metrics = m } }
func WithTimeout(d time.Duration) AnalyzerOption      { return func(a *Analyzer) { a.timeout = d } }
func WithLocation(loc *time.Location) AnalyzerOption  { return func(a *Analyzer) { a.location = loc } }
func WithClock(now func() time.Time) AnalyzerOption   { return func(a *Analyzer) { a.now = now } }

// WithAllowlist restricts tickers to a known-instrument set; an empty list
// falls back to the syntactic pattern.
func WithAllowlist(tickers []string) AnalyzerOption {
	return func(a *Analyzer) {
		if len(tickers) == 0 {
			return
		}
		a.allowlist = make(map[string]bool, len(tickers))
		for _, t := range tickers {
			a.allowlist[strings.ToUpper(t)] = true
		}
	}
}

func NewAnalyzer(fetcher SeriesFetcher, l *applogger.Logger, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		fetcher: fetcher,
		log:     l,
		timeout: 15 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the pipeline: validate, fetch, indicators, aggregate, gate,
// detect, classify regime, format. Deterministic for identical inputs.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	ticker, err := a.validateTicker(req.Ticker)
	if err != nil {
		return nil, err
	}
	tolerance := models.NormalizeTolerance(req.Tolerance)
	horizon := models.NormalizeHorizon(req.Horizon)
	lookback := req.LookbackDays
	if lookback <= 0 {
		lookback = 120
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := a.now()

	series, provenance, err := a.fetcher.Fetch(ctx, ticker, lookback)
	if err != nil {
		return nil, err
	}

	sessionBars := a.sessionBars(ticker)
	set, err := indicator.ComputeWithSession(series, sessionBars)
	if err != nil {
		return nil, err
	}

	direction, ledger, reasoning := signal.Aggregate(set, start)
	if penalty := provenance.Penalty(); penalty > 0 {
		ledger.Penalize("provider", string(provenance), penalty)
	}

	sig := models.NewSignal(ticker, start, direction, ledger.Final(), reasoning)
	a.publishAdjustments(ctx, ticker, ledger)

	assessment := risk.Evaluate(sig, set, horizon, tolerance)

	// Index data is optional context; its absence degrades detection inputs
	// and empties the regime labels, never the signal.
	indexSeries, indexProv, indexErr := a.fetcher.FetchIndex(ctx, lookback)
	if indexErr != nil {
		a.log.Warn("index fetch failed", applogger.Error(indexErr))
	}

	intraday := buildIntradayMetrics(series, indexSeries, sessionBars, set)
	snapshot := a.portfolioSnapshot(ctx)

	detections := detect.Run(intraday, snapshot)
	severity := detect.Severity(detections)

	regimeCtx := regime.Classify(regime.Input{
		Now:             start,
		Location:        a.location,
		TickerChangePct: intraday.TickerChangePct,
		IndexChangePct:  intraday.IndexChangePct,
		VolumeRatio:     intraday.VolumeRatio,
		BandWidthRatio:  set.BollingerWidthRatio(),
		OpenGapPct:      openGapPct(series),
		IndexAvailable:  indexErr == nil && indexSeries != nil,
		IndexSource:     indexProv,
	})

	result := &models.AnalysisResult{
		Ticker:     ticker,
		Timestamp:  start,
		Signal:     sig,
		Risk:       assessment,
		Indicators: *set,
		Detections: detections,
		Severity:   severity,
		Regime:     regimeCtx,
		Provenance: provenance,
		Warnings:   assessment.Warnings,
		Disclaimer: risk.Disclaimer,
	}

	summary, err := format.Summary(result)
	if err != nil {
		// A policy rejection here means the template itself regressed.
		a.log.Error("output policy violation", applogger.Error(err))
		return nil, err
	}
	result.Summary = summary

	if a.metrics != nil {
		a.metrics.RecordLatency("analyze", a.now().Sub(start).Seconds())
	}
	a.log.Info("analysis complete",
		applogger.String("ticker", ticker),
		applogger.String("signal", string(sig.Type)),
		applogger.String("provenance", string(provenance)),
		applogger.Bool("actionable", assessment.Actionable))

	return result, nil
}

func (a *Analyzer) validateTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if a.allowlist != nil {
		if !a.allowlist[ticker] {
			return "", &models.InvalidTickerError{Ticker: raw}
		}
		return ticker, nil
	}
	if !tickerPattern.MatchString(ticker) {
		return "", &models.InvalidTickerError{Ticker: raw}
	}
	return ticker, nil
}

func (a *Analyzer) sessionBars(ticker string) []models.PriceBar {
	if a.session == nil {
		return nil
	}
	return a.session.SessionBars(ticker)
}

func (a *Analyzer) portfolioSnapshot(ctx context.Context) models.PortfolioSnapshot {
	if a.portfolio == nil {
		return models.PortfolioSnapshot{}
	}
	snap, err := a.portfolio.Snapshot(ctx)
	if err != nil {
		a.log.Warn("portfolio snapshot failed", applogger.Error(err))
		return models.PortfolioSnapshot{}
	}
	return snap
}

// publishAdjustments logs and audits every confidence degradation with its
// cause so the trail is reconstructable.
func (a *Analyzer) publishAdjustments(ctx context.Context, ticker string, ledger *signal.Ledger) {
	for _, adj := range ledger.Adjustments() {
		delta := 1 - adj.Factor
		a.log.Info("confidence adjusted",
			applogger.String("ticker", ticker),
			applogger.String("stage", adj.Stage),
			applogger.String("reason", adj.Reason),
			applogger.Any("penalty", delta))
		if a.metrics != nil {
			a.metrics.RecordConfidencePenalty(adj.Reason, delta)
		}
		if a.audit != nil {
			event := models.AuditEvent{
				Ticker:    ticker,
				Stage:     adj.Stage,
				Delta:     delta,
				Reason:    adj.Reason,
				Timestamp: a.now(),
			}
			if err := a.audit.Record(context.WithoutCancel(ctx), event); err != nil {
				a.log.Warn("audit record failed", applogger.Error(err))
			}
		}
	}
}
