package models

import (
	"fmt"
	"time"
)

// PriceBar represents one OHLCV interval. Bars are treated as immutable
// once validated; downstream components only ever read them.
type PriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Validate checks OHLCV sanity: positive prices, high/low envelope, non-negative volume.
func (b PriceBar) Validate() error {
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("non-positive price at %s", b.Timestamp.Format(time.RFC3339))
	}
	if b.High < b.Open || b.High < b.Close || b.High < b.Low {
		return fmt.Errorf("high below open/close/low at %s", b.Timestamp.Format(time.RFC3339))
	}
	if b.Low > b.Open || b.Low > b.Close {
		return fmt.Errorf("low above open/close at %s", b.Timestamp.Format(time.RFC3339))
	}
	if b.Volume < 0 {
		return fmt.Errorf("negative volume at %s", b.Timestamp.Format(time.RFC3339))
	}
	return nil
}

// IsRed reports whether the bar closed below its open.
func (b PriceBar) IsRed() bool { return b.Close < b.Open }

// MarketSeries is an ordered sequence of bars for one ticker, ascending by
// timestamp with no duplicates. Owned by the provider layer; read-only downstream.
type MarketSeries struct {
	Ticker string     `json:"ticker"`
	Bars   []PriceBar `json:"bars"`
}

func (s *MarketSeries) Len() int { return len(s.Bars) }

// Last returns the most recent bar and true, or a zero bar and false when empty.
func (s *MarketSeries) Last() (PriceBar, bool) {
	if len(s.Bars) == 0 {
		return PriceBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Closes returns closing prices in series order.
func (s *MarketSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns bar volumes in series order.
func (s *MarketSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// CheckOrdered verifies ascending timestamps without duplicates.
func (s *MarketSeries) CheckOrdered() error {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Timestamp.After(s.Bars[i-1].Timestamp) {
			return fmt.Errorf("non-monotonic timestamp at index %d", i)
		}
	}
	return nil
}
