package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	providerCalls       *prometheus.CounterVec
	cacheServes         *prometheus.CounterVec
	confidencePenalties *prometheus.CounterVec
	barsDropped         *prometheus.CounterVec
	latency             *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		providerCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_provider_calls_total",
				Help: "Total provider fetch attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		cacheServes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_cache_serves_total",
				Help: "Total series served from cache by freshness tier",
			},
			[]string{"tier"},
		),
		confidencePenalties: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_confidence_penalties_total",
				Help: "Total confidence penalties applied by reason",
			},
			[]string{"reason"},
		),
		barsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_bars_dropped_total",
				Help: "Total malformed bars dropped during payload validation",
			},
			[]string{"ticker"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsight_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordProviderCall records one provider fetch attempt and its outcome.
func (r *Recorder) RecordProviderCall(provider, outcome string) {
	r.providerCalls.WithLabelValues(provider, outcome).Inc()
}

// RecordCacheServe records a cache hit by tier (fresh, stale, error_fallback).
func (r *Recorder) RecordCacheServe(tier string) {
	r.cacheServes.WithLabelValues(tier).Inc()
}

// RecordConfidencePenalty records an applied confidence degradation.
func (r *Recorder) RecordConfidencePenalty(reason string, delta float64) {
	r.confidencePenalties.WithLabelValues(reason).Add(delta)
}

// RecordBarsDropped records bars dropped for a ticker during validation.
func (r *Recorder) RecordBarsDropped(ticker string, n int) {
	r.barsDropped.WithLabelValues(ticker).Add(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
