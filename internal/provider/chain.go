package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/internal/domain/service"
	"FinSight/internal/service/ratelimit"
	applogger "FinSight/pkg/logger"
)

// Cache tier boundaries and backoff defaults.
const (
	DefaultFreshTTL       = 1 * time.Hour
	DefaultStaleTTL       = 24 * time.Hour
	DefaultBackoffBase    = 200 * time.Millisecond
	DefaultBackoffCeiling = 3 * time.Second

	indexCacheKey = "market_index"
)

// Chain is the data provider layer: an ordered list of sources behind a
// tiered cache. It owns the only shared mutable state in the pipeline and
// guarantees that synthetic data is never served as if it were real.
type Chain struct {
	providers    []service.BarProvider
	fundamentals []service.FundamentalsProvider
	cache        repository.BarCache
	archive      repository.BarArchive
	audit        repository.AuditSink
	metrics      repository.Metrics
	limiter      *ratelimit.Limiter
	log          *applogger.Logger

	freshTTL       time.Duration
	staleTTL       time.Duration
	backoffBase    time.Duration
	backoffCeiling time.Duration

	group singleflight.Group
	now   func() time.Time
}

type Option func(*Chain)

func WithArchive(a repository.BarArchive) Option { return func(c *Chain) { c.archive = a } }
func WithAudit(a repository.AuditSink) Option    { return func(c *Chain) { c.audit = a } }
func WithMetrics(m repository.Metrics) Option    { return func(c *Chain) { c.metrics = m } }
func WithFundamentals(fs []service.FundamentalsProvider) Option {
	return func(c *Chain) { c.fundamentals = fs }
}
func WithTTLs(fresh, stale time.Duration) Option {
	return func(c *Chain) { c.freshTTL, c.staleTTL = fresh, stale }
}
func WithBackoff(base, ceiling time.Duration) Option {
	return func(c *Chain) { c.backoffBase, c.backoffCeiling = base, ceiling }
}
func WithClock(now func() time.Time) Option { return func(c *Chain) { c.now = now } }

func NewChain(providers []service.BarProvider, barCache repository.BarCache, l *applogger.Logger, opts ...Option) *Chain {
	c := &Chain{
		providers:      providers,
		cache:          barCache,
		limiter:        ratelimit.New(),
		log:            l,
		freshTTL:       DefaultFreshTTL,
		staleTTL:       DefaultStaleTTL,
		backoffBase:    DefaultBackoffBase,
		backoffCeiling: DefaultBackoffCeiling,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the series for a ticker together with its provenance tag.
// Tier order: fresh cache, stale cache, live chain, any-age cache fallback,
// archive fallback, then a typed provider-unavailable failure.
func (c *Chain) Fetch(ctx context.Context, ticker string, lookbackDays int) (*models.MarketSeries, models.Provenance, error) {
	return c.fetch(ctx, ticker, func(p service.BarProvider) service.FetchResult {
		return p.FetchBars(ctx, ticker, lookbackDays)
	})
}

// FetchIndex serves the market index series through the same tiers.
func (c *Chain) FetchIndex(ctx context.Context, lookbackDays int) (*models.MarketSeries, models.Provenance, error) {
	return c.fetch(ctx, indexCacheKey, func(p service.BarProvider) service.FetchResult {
		return p.FetchIndex(ctx, lookbackDays)
	})
}

// Fundamentals tries fundamentals-capable sources in order.
func (c *Chain) Fundamentals(ctx context.Context, ticker string) (*models.FundamentalsSnapshot, error) {
	var lastErr error
	for _, f := range c.fundamentals {
		snap, err := f.FetchFundamentals(ctx, ticker)
		if err == nil {
			return snap, nil
		}
		lastErr = err
		c.log.Warn("fundamentals fetch failed",
			applogger.String("provider", f.Name()), applogger.Error(err))
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no fundamentals provider configured")
	}
	return nil, fmt.Errorf("fundamentals %s: %w", ticker, lastErr)
}

func (c *Chain) fetch(ctx context.Context, key string, call func(service.BarProvider) service.FetchResult) (*models.MarketSeries, models.Provenance, error) {
	entry, cached, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", applogger.String("key", key), applogger.Error(err))
		cached = false
	}

	now := c.now()
	if cached {
		age := entry.Age(now)
		switch {
		case age < c.freshTTL:
			c.recordCacheServe(models.ProvenanceCacheFresh)
			return &entry.Series, models.ProvenanceCacheFresh, nil
		case age < c.staleTTL:
			c.recordCacheServe(models.ProvenanceCacheStale)
			c.log.Debug("serving stale cache",
				applogger.String("key", key), applogger.Duration("age", age))
			return &entry.Series, models.ProvenanceCacheStale, nil
		}
	}

	// Coalesce concurrent live fetches for the same key: the first caller
	// fetches, the rest wait on its result.
	v, liveErr, _ := c.group.Do(key, func() (interface{}, error) {
		return c.liveFetch(ctx, key, call)
	})
	if liveErr == nil {
		return v.(*models.MarketSeries), models.ProvenanceLive, nil
	}

	// Invalid symbols never fall back; there is nothing real to serve.
	var invalid *models.InvalidTickerError
	if errors.As(liveErr, &invalid) {
		return nil, models.ProvenanceUnavailable, liveErr
	}

	if cached {
		c.recordCacheServe(models.ProvenanceErrorFallback)
		c.recordAudit(ctx, key, "provider", models.ProvenanceErrorFallback.Penalty(),
			fmt.Sprintf("live fetch failed, serving %s-old cache: %v", entry.Age(now).Round(time.Minute), liveErr))
		return &entry.Series, models.ProvenanceErrorFallback, nil
	}

	if c.archive != nil {
		series, fetchedAt, aerr := c.archive.Load(ctx, key, 0)
		if aerr == nil && series.Len() > 0 {
			c.recordCacheServe(models.ProvenanceErrorFallback)
			c.recordAudit(ctx, key, "provider", models.ProvenanceErrorFallback.Penalty(),
				fmt.Sprintf("live fetch failed, serving archive from %s", fetchedAt.Format(time.RFC3339)))
			return series, models.ProvenanceErrorFallback, nil
		}
	}

	return nil, models.ProvenanceUnavailable, liveErr
}

func (c *Chain) liveFetch(ctx context.Context, key string, call func(service.BarProvider) service.FetchResult) (*models.MarketSeries, error) {
	attempted := make([]string, 0, len(c.providers))

	for i, p := range c.providers {
		if ctx.Err() != nil {
			break
		}
		attempted = append(attempted, p.Name())

		if !c.waitTurn(ctx, p, i) {
			c.recordProviderCall(p.Name(), "throttled")
			continue
		}

		res := call(p)
		switch res.Outcome {
		case service.OutcomeSuccess:
			series, dropped, serr := sanitizeSeries(key, res.Series.Bars)
			if dropped > 0 {
				c.log.Warn("dropped invalid bars",
					applogger.String("key", key),
					applogger.String("provider", p.Name()),
					applogger.Int("dropped", dropped))
				if c.metrics != nil {
					c.metrics.RecordBarsDropped(key, dropped)
				}
			}
			if serr != nil {
				c.recordProviderCall(p.Name(), "integrity_failure")
				c.log.Warn("payload rejected", applogger.String("provider", p.Name()), applogger.Error(serr))
				continue
			}
			c.recordProviderCall(p.Name(), "success")
			c.persist(ctx, key, series, p.Name())
			return series, nil

		case service.OutcomeRateLimited:
			c.recordProviderCall(p.Name(), "rate_limited")
			c.log.Warn("provider rate limited",
				applogger.String("provider", p.Name()),
				applogger.Duration("retry_after", res.RetryAfter))
			c.sleepBackoff(ctx, i, res.RetryAfter)

		case service.OutcomeInvalidSymbol:
			return nil, &models.InvalidTickerError{Ticker: key}

		default:
			c.recordProviderCall(p.Name(), "unavailable")
			c.log.Warn("provider unavailable",
				applogger.String("provider", p.Name()), applogger.Error(res.Err))
		}
	}

	return nil, &models.ProviderUnavailableError{Ticker: key, Attempted: attempted}
}

// persist writes cache and archive with cancellation stripped: a client
// disconnect must never leave a half-written entry behind.
func (c *Chain) persist(ctx context.Context, key string, series *models.MarketSeries, source string) {
	wctx := context.WithoutCancel(ctx)
	entry := &repository.CacheEntry{
		Ticker:    key,
		Series:    *series,
		FetchedAt: c.now(),
		Source:    source,
	}
	if err := c.cache.Put(wctx, entry); err != nil {
		c.log.Warn("cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	if c.archive != nil {
		if err := c.archive.Store(wctx, series, entry.FetchedAt, source); err != nil {
			c.log.Warn("archive write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
}

// waitTurn enforces the provider's minimum inter-call interval via a token
// bucket. When the turn is not free it waits one bounded backoff and retries
// once; a still-busy provider is skipped rather than blocked on.
func (c *Chain) waitTurn(ctx context.Context, p service.BarProvider, attempt int) bool {
	interval := p.MinInterval()
	if interval <= 0 {
		return true
	}
	refill := 1.0 / interval.Seconds()
	if c.limiter.Allow(p.Name(), 1, refill) {
		return true
	}
	if !c.sleepBackoff(ctx, attempt, 0) {
		return false
	}
	return c.limiter.Allow(p.Name(), 1, refill)
}

// sleepBackoff waits base*2^attempt (or the provider's retry-after hint),
// never longer than the ceiling. Returns false when the context ended first.
func (c *Chain) sleepBackoff(ctx context.Context, attempt int, hint time.Duration) bool {
	d := c.backoffBase << uint(attempt)
	if hint > d {
		d = hint
	}
	if d > c.backoffCeiling {
		d = c.backoffCeiling
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Chain) recordProviderCall(name, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordProviderCall(name, outcome)
	}
}

func (c *Chain) recordCacheServe(p models.Provenance) {
	if c.metrics != nil {
		c.metrics.RecordCacheServe(string(p))
	}
}

func (c *Chain) recordAudit(ctx context.Context, ticker, stage string, delta float64, reason string) {
	if c.audit == nil {
		return
	}
	event := models.AuditEvent{
		Ticker:    ticker,
		Stage:     stage,
		Delta:     delta,
		Reason:    reason,
		Timestamp: c.now(),
	}
	if err := c.audit.Record(context.WithoutCancel(ctx), event); err != nil {
		c.log.Warn("audit record failed", applogger.Error(err))
	}
}
