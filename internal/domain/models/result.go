package models

import "time"

// AnalysisResult is the stable outbound object consumed by API, UI, or
// persistence collaborators. No transport concerns here.
type AnalysisResult struct {
	Ticker     string            `json:"ticker"`
	Timestamp  time.Time         `json:"timestamp"`
	Signal     Signal            `json:"signal"`
	Risk       RiskAssessment    `json:"risk"`
	Indicators IndicatorSet      `json:"indicators"`
	Detections []Detection       `json:"detections,omitempty"`
	Severity   DetectionSeverity `json:"severity"`
	Regime     RegimeContext     `json:"regime"`
	Provenance Provenance        `json:"provenance"`
	Warnings   []string          `json:"warnings"`
	Disclaimer string            `json:"disclaimer"`
	Summary    string            `json:"summary"`
}

// FundamentalsSnapshot is the fundamentals view served by the tertiary provider.
type FundamentalsSnapshot struct {
	Ticker    string    `json:"ticker"`
	AsOf      time.Time `json:"as_of"`
	MarketCap float64   `json:"market_cap"`
	PERatio   float64   `json:"pe_ratio"`
	EPS       float64   `json:"eps"`
	Sector    string    `json:"sector,omitempty"`
}
