package service

import (
	"context"
	"time"

	"FinSight/internal/domain/models"
)

// Outcome tags a provider call result. The fallback chain consumes these
// instead of driving control flow off error types.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeRateLimited   Outcome = "rate_limited"
	OutcomeUnavailable   Outcome = "unavailable"
	OutcomeInvalidSymbol Outcome = "invalid_symbol"
)

// FetchResult is the tagged union returned by every provider call: either
// data with its fetch time, or a non-success outcome with the cause.
type FetchResult struct {
	Outcome    Outcome
	Series     *models.MarketSeries
	FetchedAt  time.Time
	RetryAfter time.Duration
	Err        error
}

// BarProvider is the uniform contract every external data source adapter
// implements. Adapters never return synthetic data as if it were real.
type BarProvider interface {
	Name() string
	FetchBars(ctx context.Context, ticker string, lookbackDays int) FetchResult
	FetchIndex(ctx context.Context, lookbackDays int) FetchResult
	// MinInterval is the minimum spacing between live calls to this source.
	MinInterval() time.Duration
}

// FundamentalsProvider is implemented by sources that can serve fundamentals;
// the tertiary source in the chain serves only these.
type FundamentalsProvider interface {
	Name() string
	FetchFundamentals(ctx context.Context, ticker string) (*models.FundamentalsSnapshot, error)
}
