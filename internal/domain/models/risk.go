package models

// RiskLevel orders risk severity. Overall assessment is the maximum level
// among triggered factors.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Severity returns the ordering rank: critical > high > moderate > low.
func (l RiskLevel) Severity() int {
	switch l {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskModerate:
		return 1
	default:
		return 0
	}
}

// MaxRiskLevel returns the more severe of two levels.
func MaxRiskLevel(a, b RiskLevel) RiskLevel {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// Tolerance is the user's stated risk appetite.
type Tolerance string

const (
	ToleranceConservative Tolerance = "conservative"
	ToleranceModerate     Tolerance = "moderate"
	ToleranceAggressive   Tolerance = "aggressive"
)

// IsValidTolerance reports whether t is a supported tolerance.
func IsValidTolerance(t Tolerance) bool {
	switch t {
	case ToleranceConservative, ToleranceModerate, ToleranceAggressive:
		return true
	}
	return false
}

// NormalizeTolerance converts a raw string to a valid tolerance (or the
// conservative default).
func NormalizeTolerance(s string) Tolerance {
	t := Tolerance(s)
	if IsValidTolerance(t) {
		return t
	}
	return ToleranceConservative
}

// RiskFactor is one triggered check.
type RiskFactor struct {
	Name        string    `json:"name"`
	Level       RiskLevel `json:"level"`
	Description string    `json:"description"`
}

// RiskAssessment is the gate's verdict for one signal.
type RiskAssessment struct {
	Overall     RiskLevel    `json:"overall"`
	Factors     []RiskFactor `json:"factors,omitempty"`
	Actionable  bool         `json:"actionable"`
	Warnings    []string     `json:"warnings"`
	Constraints []string     `json:"constraints"`
}
