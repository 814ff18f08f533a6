package models

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy for the analysis pipeline. Recoverable errors (rate limits,
// single-provider timeouts) are absorbed inside the provider layer and only
// surface as provenance annotations; the types below cross component
// boundaries so callers can branch with errors.As.

// InvalidTickerError rejects a ticker before any fetch is attempted.
type InvalidTickerError struct {
	Ticker string
}

func (e *InvalidTickerError) Error() string {
	return fmt.Sprintf("invalid ticker %q", e.Ticker)
}

// InsufficientDataError is raised when a series is shorter than an
// indicator's minimum length. No partial result is ever returned in its place.
type InsufficientDataError struct {
	Ticker string
	Have   int
	Need   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: have %d bars, need %d", e.Ticker, e.Have, e.Need)
}

// ProviderUnavailableError means every provider and every cache tier was exhausted.
type ProviderUnavailableError struct {
	Ticker    string
	Attempted []string
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("no provider available for %s (tried %v) and no cached data", e.Ticker, e.Attempted)
}

// RateLimitedError is a recoverable provider outcome; the chain backs off and
// moves to the next source instead of surfacing it.
type RateLimitedError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("provider %s rate limited (retry after %s)", e.Provider, e.RetryAfter)
}

// DataIntegrityError reports a payload rejected at validation.
type DataIntegrityError struct {
	Ticker  string
	Reason  string
	Dropped int
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity failure for %s: %s (%d bars dropped)", e.Ticker, e.Reason, e.Dropped)
}

// IsRecoverable reports whether the pipeline may fall back instead of failing.
func IsRecoverable(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}
