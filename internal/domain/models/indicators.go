package models

import "time"

// IndicatorSet holds the technical readings computed for one ticker at one
// point in time. Derived per request and never persisted.
type IndicatorSet struct {
	Ticker string    `json:"ticker"`
	AsOf   time.Time `json:"as_of"`

	SMA20 float64 `json:"sma_20"`
	SMA50 float64 `json:"sma_50"`
	EMA12 float64 `json:"ema_12"`
	EMA26 float64 `json:"ema_26"`

	RSI14 float64 `json:"rsi_14"`

	MACDLine      float64 `json:"macd_line"`
	MACDSignal    float64 `json:"macd_signal"`
	MACDHistogram float64 `json:"macd_histogram"`

	BollingerUpper  float64 `json:"bollinger_upper"`
	BollingerMiddle float64 `json:"bollinger_middle"`
	BollingerLower  float64 `json:"bollinger_lower"`

	// VWAP is session-scoped and only present when intraday bars were available.
	VWAP    float64 `json:"vwap,omitempty"`
	VWAPSet bool    `json:"vwap_set"`

	LastClose float64 `json:"last_close"`
}

// BollingerWidthRatio returns band width relative to the middle band, the
// volatility measure consumed by the risk gate.
func (s *IndicatorSet) BollingerWidthRatio() float64 {
	if s.BollingerMiddle == 0 {
		return 0
	}
	return (s.BollingerUpper - s.BollingerLower) / s.BollingerMiddle
}
