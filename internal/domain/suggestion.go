package domain

// ============================================================
// Spending suggestions
// ============================================================

// Suggestion types, one per detector pass.
const (
	SuggestionHighSpending       = "high_spending"
	SuggestionBudgetAlert        = "budget_alert"
	SuggestionSavingsOpportunity = "savings_opportunity"
	SuggestionRecurringReview    = "recurring_review"
	SuggestionLargeTransaction   = "large_transaction"
	SuggestionCashFlowVolatility = "cash_flow_volatility"
	SuggestionDiversification    = "income_diversification"
	SuggestionSpendingTiming     = "spending_timing"
	SuggestionForecastAlert      = "forecast_alert"
	SuggestionRapidSpending      = "rapid_spending"
	SuggestionWeekendSpending    = "weekend_spending"
)

// Suggestion is one actionable finding produced by a detector.
type Suggestion struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Message    string  `json:"message"`
	Severity   string  `json:"severity"` // high, medium, low, info
	Action     string  `json:"action,omitempty"`
	Context    string  `json:"context,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
	Category   string  `json:"category,omitempty"`
	Percentage float64 `json:"percentage,omitempty"`
}
