package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mbittar/finsights-engine-go/internal/domain"

	"github.com/google/uuid"
)

// ============================================================
// Suggestion engine
// ============================================================

// Detector thresholds.
const (
	suggestionLimit = 8

	highSpendingMultiplier = 1.5 // vs mean per-category spend

	budgetAlertPct  = 80.0
	budgetMediumPct = 90.0
	budgetHighPct   = 100.0

	savingsRateTarget = 15.0 // percent of income

	recurringSpendThreshold = 50.0

	largeTransactionThreshold = 300.0
	outlierZScore             = 2.0
	outlierMinSamples         = 3

	volatilityThreshold      = 100.0
	diversityScoreThreshold  = 50.0
	timingAverageThreshold   = 100.0

	behavioralMinExpenses = 5
	rapidSpendingGap      = 4 * time.Hour
	rapidSpendingRatio    = 0.2
	weekendRatioThreshold = 1.5
)

// recurringWatchlist holds categories reviewed for cumulative recurring spend.
var recurringWatchlist = []string{"Subscription", "Membership", "Utilities", "Entertainment"}

// buildSuggestions runs all detector passes over the same transaction set,
// merges their output, sorts by severity and truncates. No detector errors
// on malformed input; missing data degrades to no suggestion.
func buildSuggestions(txns []domain.Transaction, budgets []domain.Budget, breakdown map[string]CategoryAggregate, ea *domain.EnhancedAnalytics) []domain.Suggestion {
	expenses := expensesOnly(txns)
	if breakdown == nil {
		breakdown = AggregateByCategory(expenses)
	}

	suggestions := []domain.Suggestion{}
	suggestions = append(suggestions, detectHighSpending(breakdown)...)
	suggestions = append(suggestions, detectBudgetAlerts(budgets, breakdown)...)
	suggestions = append(suggestions, detectSavingsOpportunity(txns)...)
	suggestions = append(suggestions, detectRecurringExpenses(breakdown)...)
	suggestions = append(suggestions, detectLargeTransactions(expenses)...)
	suggestions = append(suggestions, detectEnhancedSignals(ea)...)
	suggestions = append(suggestions, detectBehavioralPatterns(expenses)...)

	sort.SliceStable(suggestions, func(i, j int) bool {
		return domain.SeverityWeight(suggestions[i].Severity) > domain.SeverityWeight(suggestions[j].Severity)
	})
	if len(suggestions) > suggestionLimit {
		suggestions = suggestions[:suggestionLimit]
	}
	return suggestions
}

// detectHighSpending flags categories whose spend exceeds 1.5x the mean
// per-category spend.
func detectHighSpending(breakdown map[string]CategoryAggregate) []domain.Suggestion {
	if len(breakdown) < 2 {
		return nil
	}
	total := 0.0
	for _, agg := range breakdown {
		total += agg.Total.InexactFloat64()
	}
	mean := total / float64(len(breakdown))
	if mean <= 0 {
		return nil
	}

	var out []domain.Suggestion
	for _, cat := range sortedCategories(breakdown) {
		spend := breakdown[cat].Total.InexactFloat64()
		if spend > highSpendingMultiplier*mean {
			out = append(out, domain.Suggestion{
				ID:       uuid.NewString(),
				Type:     domain.SuggestionHighSpending,
				Severity: domain.SeverityMedium,
				Message:  fmt.Sprintf("Spending on %s is well above your average category spend.", cat),
				Action:   "Review recent transactions in this category.",
				Category: cat,
				Amount:   spend,
			})
		}
	}
	return out
}

// detectBudgetAlerts flags budgets at 80% usage and escalates severity at
// 90% and 100%.
func detectBudgetAlerts(budgets []domain.Budget, breakdown map[string]CategoryAggregate) []domain.Suggestion {
	var out []domain.Suggestion
	for _, b := range budgets {
		if !b.Limit.IsPositive() {
			continue
		}
		spend := breakdown[b.Category].Total.InexactFloat64()
		used := spend / b.Limit.InexactFloat64() * 100
		if used < budgetAlertPct {
			continue
		}

		severity := domain.SeverityLow
		switch {
		case used >= budgetHighPct:
			severity = domain.SeverityHigh
		case used >= budgetMediumPct:
			severity = domain.SeverityMedium
		}
		out = append(out, domain.Suggestion{
			ID:         uuid.NewString(),
			Type:       domain.SuggestionBudgetAlert,
			Severity:   severity,
			Message:    fmt.Sprintf("You have used %.0f%% of your %s budget.", used, b.Category),
			Action:     "Slow down spending in this category for the rest of the period.",
			Category:   b.Category,
			Amount:     spend,
			Percentage: used,
		})
	}
	return out
}

// detectSavingsOpportunity flags a savings rate under 15% of income.
func detectSavingsOpportunity(txns []domain.Transaction) []domain.Suggestion {
	totals := AggregateByType(txns)
	income := totals.Income.InexactFloat64()
	if income <= 0 {
		return nil
	}
	expense := totals.Expense.InexactFloat64()
	rate := (income - expense) / income * 100
	if rate >= savingsRateTarget {
		return nil
	}

	severity := domain.SeverityMedium
	message := fmt.Sprintf("Your savings rate is %.1f%%, below the %.0f%% target.", rate, savingsRateTarget)
	if rate < 0 {
		severity = domain.SeverityHigh
		message = "You are spending more than you earn this period."
	}
	return []domain.Suggestion{{
		ID:         uuid.NewString(),
		Type:       domain.SuggestionSavingsOpportunity,
		Severity:   severity,
		Message:    message,
		Action:     "Identify one or two categories to cut back on.",
		Percentage: rate,
	}}
}

// detectRecurringExpenses reviews the fixed watch-list of recurring
// categories with cumulative spend over the threshold.
func detectRecurringExpenses(breakdown map[string]CategoryAggregate) []domain.Suggestion {
	var out []domain.Suggestion
	for _, cat := range recurringWatchlist {
		agg, ok := breakdown[cat]
		if !ok {
			continue
		}
		spend := agg.Total.InexactFloat64()
		if spend <= recurringSpendThreshold {
			continue
		}
		out = append(out, domain.Suggestion{
			ID:       uuid.NewString(),
			Type:     domain.SuggestionRecurringReview,
			Severity: domain.SeverityLow,
			Message:  fmt.Sprintf("Recurring %s charges add up to %.2f.", cat, spend),
			Action:   "Check for services you no longer use.",
			Category: cat,
			Amount:   spend,
		})
	}
	return out
}

// detectLargeTransactions flags expenses above the absolute threshold, and
// any expense that is a statistical outlier within its category (z-score
// over the population standard deviation, minimum 3 samples) regardless of
// size.
func detectLargeTransactions(expenses []domain.Transaction) []domain.Suggestion {
	byCat := AggregateByCategory(expenses)

	var out []domain.Suggestion
	for _, t := range expenses {
		amount := t.AbsAmount().InexactFloat64()
		unusual := isOutlier(amount, byCat[t.Category].Items)
		if amount <= largeTransactionThreshold && !unusual {
			continue
		}

		severity := domain.SeverityLow
		message := fmt.Sprintf("Large expense of %.2f in %s.", amount, t.Category)
		if unusual {
			severity = domain.SeverityMedium
			message = fmt.Sprintf("Unusual expense of %.2f in %s, far above your history for this category.", amount, t.Category)
		}
		out = append(out, domain.Suggestion{
			ID:       uuid.NewString(),
			Type:     domain.SuggestionLargeTransaction,
			Severity: severity,
			Message:  message,
			Action:   "Confirm this transaction was expected.",
			Category: t.Category,
			Amount:   amount,
			Context:  t.Description,
		})
	}
	return out
}

// isOutlier reports whether amount sits 2 or more population standard
// deviations above the category mean. Fewer than 3 samples is treated as
// insufficient data, not an outlier.
func isOutlier(amount float64, history []domain.Transaction) bool {
	if len(history) < outlierMinSamples {
		return false
	}
	sum := 0.0
	for _, t := range history {
		sum += t.AbsAmount().InexactFloat64()
	}
	mean := sum / float64(len(history))

	varSum := 0.0
	for _, t := range history {
		d := t.AbsAmount().InexactFloat64() - mean
		varSum += d * d
	}
	stddev := math.Sqrt(varSum / float64(len(history)))
	if stddev == 0 {
		return false
	}
	return (amount-mean)/stddev >= outlierZScore
}

// detectEnhancedSignals runs the detectors that only apply when an
// enhanced bundle is supplied.
func detectEnhancedSignals(ea *domain.EnhancedAnalytics) []domain.Suggestion {
	if ea == nil {
		return nil
	}
	var out []domain.Suggestion

	if hasTrends(ea) && ea.CashFlowAnalysis.Trends.Volatility > volatilityThreshold {
		out = append(out, domain.Suggestion{
			ID:       uuid.NewString(),
			Type:     domain.SuggestionCashFlowVolatility,
			Severity: domain.SeverityMedium,
			Message:  "Your cash flow is volatile from period to period.",
			Action:   "Smooth large irregular payments across the month where possible.",
			Amount:   ea.CashFlowAnalysis.Trends.Volatility,
		})
	}

	if hasIncomeBreakdown(ea) && ea.IncomeBreakdown.DiversityScore < diversityScoreThreshold {
		out = append(out, domain.Suggestion{
			ID:         uuid.NewString(),
			Type:       domain.SuggestionDiversification,
			Severity:   domain.SeverityLow,
			Message:    fmt.Sprintf("Most of your income comes from %s.", ea.IncomeBreakdown.PrimaryStream),
			Action:     "Consider building a secondary income stream.",
			Percentage: ea.IncomeBreakdown.DiversityScore,
		})
	}

	if hasTimeBasedInsights(ea) {
		slot, avg := "", 0.0
		for name, insight := range ea.ContextualInsights.TimeBased {
			if insight.Average > avg {
				slot, avg = name, insight.Average
			}
		}
		if avg > timingAverageThreshold {
			out = append(out, domain.Suggestion{
				ID:       uuid.NewString(),
				Type:     domain.SuggestionSpendingTiming,
				Severity: domain.SeverityInfo,
				Message:  fmt.Sprintf("Your highest average spend happens in the %s.", slot),
				Context:  slot,
				Amount:   avg,
			})
		}
	}

	if hasSpendingForecast(ea) && len(ea.SpendingForecast.RiskFactors) > 0 {
		out = append(out, domain.Suggestion{
			ID:       uuid.NewString(),
			Type:     domain.SuggestionForecastAlert,
			Severity: domain.SeverityMedium,
			Message:  fmt.Sprintf("Your spending forecast flags %d risk factors.", len(ea.SpendingForecast.RiskFactors)),
			Context:  fmt.Sprintf("%v", ea.SpendingForecast.RiskFactors),
		})
	}

	return out
}

// detectBehavioralPatterns needs at least 5 expense transactions: rapid
// consecutive spending and weekend-heavy spending.
func detectBehavioralPatterns(expenses []domain.Transaction) []domain.Suggestion {
	if len(expenses) < behavioralMinExpenses {
		return nil
	}

	sorted := make([]domain.Transaction, len(expenses))
	copy(sorted, expenses)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var out []domain.Suggestion

	rapid := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Sub(sorted[i-1].Date) < rapidSpendingGap {
			rapid++
		}
	}
	if float64(rapid) > rapidSpendingRatio*float64(len(sorted)) {
		out = append(out, domain.Suggestion{
			ID:       uuid.NewString(),
			Type:     domain.SuggestionRapidSpending,
			Severity: domain.SeverityMedium,
			Message:  "Many of your purchases happen within a few hours of each other.",
			Action:   "Try a short waiting period before unplanned purchases.",
		})
	}

	var weekend, weekday float64
	for _, t := range sorted {
		amount := t.AbsAmount().InexactFloat64()
		if wd := t.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekend += amount
		} else {
			weekday += amount
		}
	}
	if weekend > weekendRatioThreshold*weekday && weekend > 0 {
		out = append(out, domain.Suggestion{
			ID:       uuid.NewString(),
			Type:     domain.SuggestionWeekendSpending,
			Severity: domain.SeverityLow,
			Message:  "Your weekend spending far outweighs your weekday spending.",
			Action:   "Plan weekend activities with a set budget.",
			Amount:   weekend,
		})
	}

	return out
}

// sortedCategories returns breakdown keys in a stable order.
func sortedCategories(breakdown map[string]CategoryAggregate) []string {
	cats := make([]string, 0, len(breakdown))
	for cat := range breakdown {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}
