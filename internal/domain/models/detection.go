package models

// DetectionTag identifies a short-horizon pattern rule set that fired.
type DetectionTag string

const (
	TagWeakTrend     DetectionTag = "WEAK_TREND"
	TagExtendedMove  DetectionTag = "EXTENDED_MOVE"
	TagPortfolioRisk DetectionTag = "PORTFOLIO_RISK"
)

// Detection records a fired tag together with the sub-conditions that caused
// it, for explainability. Tags carry no numeric score; severity is derived
// downstream from tag count alone.
type Detection struct {
	Tag        DetectionTag `json:"tag"`
	Conditions []string     `json:"conditions"`
}

// DetectionSeverity summarizes a set of fired tags.
type DetectionSeverity string

const (
	SeverityNone    DetectionSeverity = "none"
	SeverityWatch   DetectionSeverity = "watch"
	SeverityCaution DetectionSeverity = "caution"
	SeverityAlert   DetectionSeverity = "alert"
)

// IntradayMetrics is the snapshot the pattern detector evaluates.
type IntradayMetrics struct {
	Price              float64
	VWAP               float64
	IntradayChangePct  float64
	IndexChangePct     float64
	TickerChangePct    float64
	VolumeRatio        float64 // current volume vs 20-day average
	RSI14              float64
	NearestLevel       float64 // closest known support/resistance price
	RedCandleCount     int     // consecutive recent red candles
	RedCandlesHighVol  bool    // red candles carried above-average volume
	BelowShortTermMA   bool
}

// Position is a portfolio holding as seen by the portfolio-risk rule set.
type Position struct {
	Ticker   string
	Weight   float64 // fraction of portfolio value
	PnLShare float64 // fraction of today's portfolio P&L driven by this position
}

// PortfolioSnapshot is read-only context for the PORTFOLIO_RISK rules.
type PortfolioSnapshot struct {
	Positions []Position
}
