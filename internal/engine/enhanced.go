package engine

import "github.com/mbittar/finsights-engine-go/internal/domain"

// ============================================================
// Enhanced-data resolution policy
// ============================================================
//
// Every component prefers caller-supplied enhanced analytics and falls back
// to local computation when the sub-tree it needs is absent or malformed.
// The predicates below are the exact fallback conditions; none of them ever
// raises to the caller.

// hasCashFlowAnalysis reports whether the bundle carries a usable
// pre-computed cash-flow series. A missing or empty periods list is the
// malformed case that triggers local simulation.
func hasCashFlowAnalysis(ea *domain.EnhancedAnalytics) bool {
	return ea != nil && ea.CashFlowAnalysis != nil && len(ea.CashFlowAnalysis.Periods) > 0
}

// hasTrends reports whether trend statistics are available.
func hasTrends(ea *domain.EnhancedAnalytics) bool {
	return hasCashFlowAnalysis(ea) && ea.CashFlowAnalysis.Trends != nil
}

// hasSpendingForecast reports whether an external forward projection exists.
func hasSpendingForecast(ea *domain.EnhancedAnalytics) bool {
	return ea != nil && ea.SpendingForecast != nil
}

// hasIncomeBreakdown reports whether income stream composition exists.
func hasIncomeBreakdown(ea *domain.EnhancedAnalytics) bool {
	return ea != nil && ea.IncomeBreakdown != nil && ea.IncomeBreakdown.StreamCount > 0
}

// hasTimeBasedInsights reports whether time-of-day behaviour exists.
func hasTimeBasedInsights(ea *domain.EnhancedAnalytics) bool {
	return ea != nil && ea.ContextualInsights != nil && len(ea.ContextualInsights.TimeBased) > 0
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
