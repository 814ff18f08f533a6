package models

// Horizon is the requested time horizon for the analysis.
type Horizon string

const (
	HorizonIntraday Horizon = "intraday"
	HorizonSwing    Horizon = "swing"
	HorizonPosition Horizon = "position"
)

// IsValidHorizon reports whether h is supported.
func IsValidHorizon(h Horizon) bool {
	switch h {
	case HorizonIntraday, HorizonSwing, HorizonPosition:
		return true
	}
	return false
}

// NormalizeHorizon converts a raw string to a valid horizon (or swing default).
func NormalizeHorizon(s string) Horizon {
	h := Horizon(s)
	if IsValidHorizon(h) {
		return h
	}
	return HorizonSwing
}

// AnalysisRequest is the single inbound request of the pipeline.
type AnalysisRequest struct {
	Ticker       string `json:"ticker" param:"ticker" query:"ticker" validate:"required,min=1,max=10"`
	LookbackDays int    `json:"lookback_days" query:"lookback_days" default:"120" validate:"min=1,max=2000"`
	Horizon      string `json:"horizon" query:"horizon" default:"swing" validate:"oneof=intraday swing position"`
	Tolerance    string `json:"tolerance" query:"tolerance" default:"conservative" validate:"oneof=conservative moderate aggressive"`
}
