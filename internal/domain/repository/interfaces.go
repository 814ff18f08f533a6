package repository

import (
	"context"
	"time"

	"FinSight/internal/domain/models"
)

// CacheEntry is a cached series with the metadata the tiering decision needs.
type CacheEntry struct {
	Ticker    string              `json:"ticker"`
	Series    models.MarketSeries `json:"series"`
	FetchedAt time.Time           `json:"fetched_at"`
	Source    string              `json:"source"`
}

// Age returns how old the entry is relative to now.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// BarCache is the shared, mutable cache owned by the provider layer, the only
// shared resource in the pipeline. Entries are overwritten on successful
// refresh and retained on failed refresh as a fallback.
type BarCache interface {
	Get(ctx context.Context, ticker string) (*CacheEntry, bool, error)
	Put(ctx context.Context, entry *CacheEntry) error
}

// BarArchive persists validated series as a last-resort fallback tier.
type BarArchive interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, series *models.MarketSeries, fetchedAt time.Time, source string) error
	Load(ctx context.Context, ticker string, limit int) (*models.MarketSeries, time.Time, error)
	Health(ctx context.Context) error
	Close() error
}

// AuditSink receives confidence degradation and fallback events for auditability.
type AuditSink interface {
	Record(ctx context.Context, event models.AuditEvent) error
	Close() error
}

// Metrics records pipeline observability counters.
type Metrics interface {
	RecordProviderCall(provider, outcome string)
	RecordCacheServe(provenance string)
	RecordConfidencePenalty(reason string, delta float64)
	RecordLatency(stage string, seconds float64)
	RecordBarsDropped(ticker string, count int)
}
