package domain

// ============================================================
// Enhanced analytics bundle (externally computed, optional)
// ============================================================

// EnhancedAnalytics is the optional externally computed bundle. Every field
// is optional; components validate the sub-trees they need and fall back to
// local computation when a sub-tree is missing or malformed.
type EnhancedAnalytics struct {
	CashFlowAnalysis   *CashFlowAnalysis   `json:"cashFlowAnalysis,omitempty"`
	SpendingForecast   *SpendingForecast   `json:"spendingForecast,omitempty"`
	IncomeBreakdown    *IncomeBreakdown    `json:"incomeBreakdown,omitempty"`
	ContextualInsights *ContextualInsights `json:"contextualInsights,omitempty"`
}

// CashFlowAnalysis is a pre-computed income/expense series with trend stats.
type CashFlowAnalysis struct {
	Periods     []CashFlowPeriod `json:"periods"`
	Trends      *CashFlowTrends  `json:"trends,omitempty"`
	Granularity string           `json:"granularity,omitempty"` // daily, weekly, monthly
}

// CashFlowPeriod is one bucket of the pre-computed series.
type CashFlowPeriod struct {
	Period   string  `json:"period"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// CashFlowTrends carries growth and volatility statistics.
type CashFlowTrends struct {
	IncomeGrowth  float64 `json:"incomeGrowth"`
	ExpenseGrowth float64 `json:"expenseGrowth"`
	Volatility    float64 `json:"volatility"`
	NetGrowth     float64 `json:"netGrowth"`
}

// SpendingForecast is an externally produced forward projection.
type SpendingForecast struct {
	DailyProjections []DailyProjection `json:"dailyProjections,omitempty"`
	RiskFactors      []string          `json:"riskFactors,omitempty"`
	Confidence       string            `json:"confidence,omitempty"` // low, medium, high
}

// DailyProjection is one projected day of spending.
type DailyProjection struct {
	Date            string  `json:"date"`
	ProjectedAmount float64 `json:"projectedAmount"`
	Confidence      float64 `json:"confidence"`
}

// IncomeBreakdown describes income stream composition.
type IncomeBreakdown struct {
	Streams        map[string]IncomeStream `json:"streams,omitempty"`
	TotalIncome    float64                 `json:"totalIncome"`
	StreamCount    int                     `json:"streamCount"`
	PrimaryStream  string                  `json:"primaryStream,omitempty"`
	DiversityScore float64                 `json:"diversityScore"` // 0-100
}

// IncomeStream is one named income source.
type IncomeStream struct {
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
}

// ContextualInsights carries time-of-day spending behaviour.
type ContextualInsights struct {
	TimeBased map[string]TimeSlotInsight `json:"timeBased,omitempty"`
}

// TimeSlotInsight is the average spend for one time slot (morning, evening, ...).
type TimeSlotInsight struct {
	Average float64 `json:"average"`
}
