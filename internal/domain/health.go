package domain

// ============================================================
// Financial health score
// ============================================================

// GradeNA marks the distinguished "insufficient data" state (no
// transactions and no enhanced data). It is not an error.
const GradeNA = "N/A"

// HealthScore is the composite 0-100 financial health result.
type HealthScore struct {
	Score           int              `json:"score"` // 0-100
	Grade           string           `json:"grade"` // A..F, or N/A
	Breakdown       []FactorScore    `json:"breakdown,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	SavingsRate     float64          `json:"savingsRate"` // percent, may be negative
	Source          string           `json:"source"`      // local, precomputed
}

// FactorScore is one scored rubric factor.
type FactorScore struct {
	Factor string  `json:"factor"`
	Points float64 `json:"points"`
	Max    float64 `json:"max"`
	Detail string  `json:"detail,omitempty"`
}

// Rubric factor names.
const (
	FactorSpendingVsIncome    = "spending_vs_income"
	FactorBudgetAdherence     = "budget_adherence"
	FactorEmergencyFund       = "emergency_fund"
	FactorGoalProgress        = "goal_progress"
	FactorSpendingDiversity   = "spending_diversity"
	FactorCashFlowStability   = "cash_flow_stability"   // enhanced-only bonus
	FactorForecastReliability = "forecast_reliability"  // enhanced-only bonus
)

// Recommendation is a prioritized, human-readable improvement hint.
type Recommendation struct {
	Priority string `json:"priority"` // high, medium, low, info
	Factor   string `json:"factor"`
	Message  string `json:"message"`
}

// GradeForScore maps a final score to its letter grade.
func GradeForScore(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	}
	return "F"
}

// Score sources.
const (
	ScoreSourceLocal       = "local"
	ScoreSourcePrecomputed = "precomputed"
)
