package domain

// ============================================================
// Cash-flow risk forecast
// ============================================================

// Severity / risk ordering: high > medium > low, with warning and info as
// advisory levels below them.
const (
	SeverityHigh    = "high"
	SeverityMedium  = "medium"
	SeverityLow     = "low"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// SeverityWeight ranks severities for sorting. Unknown severities rank last.
func SeverityWeight(severity string) int {
	switch severity {
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 0
	}
	return -1
}

// RiskForecast is the result of a cash-flow simulation or, when a valid
// enhanced bundle is supplied, of adopting its pre-computed analysis.
type RiskForecast struct {
	RiskDays        []RiskDay   `json:"riskDays"`
	DailyFlow       []DailyFlow `json:"dailyFlow"`
	RiskLevel       string      `json:"riskLevel"` // high, medium, warning, low
	BalanceHistory  []float64   `json:"balanceHistory"`
	ForecastPeriod  int         `json:"forecastPeriod"` // days simulated
	AvgDailyIncome  float64     `json:"avgDailyIncome"`
	AvgDailyExpense float64     `json:"avgDailyExpense"`
	Source          string      `json:"source"` // local, enhanced
}

// RiskDay is a simulated day that triggered a severity classification.
type RiskDay struct {
	Day      int     `json:"day"`
	Balance  float64 `json:"balance"`
	Severity string  `json:"severity"`
	Income   float64 `json:"income"`
	Expense  float64 `json:"expense"`
}

// DailyFlow is one simulated day of the projected trajectory.
type DailyFlow struct {
	Day     int     `json:"day"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// Forecast sources.
const (
	SourceLocal    = "local"
	SourceEnhanced = "enhanced"
)
