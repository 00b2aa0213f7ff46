package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/mbittar/finsights-engine-go/internal/domain"
)

// ============================================================
// Financial health scorer
// ============================================================

// Rubric weights. The five mandatory factors sum to 100; the two bonus
// factors only apply when enhanced data is present.
const (
	maxSpendingVsIncome  = 30.0
	maxBudgetAdherence   = 25.0
	maxEmergencyFund     = 20.0
	maxGoalProgress      = 15.0
	maxSpendingDiversity = 10.0

	recommendationLimit = 3
)

func priorityWeight(priority string) int {
	switch priority {
	case domain.SeverityHigh:
		return 3
	case domain.SeverityMedium:
		return 2
	case domain.SeverityLow:
		return 1
	}
	return 0
}

// scoreHealth runs the weighted rubric. A caller-supplied precomputed score
// bypasses the rubric entirely; an empty input set with no enhanced data
// yields the distinguished insufficient-data result.
func scoreHealth(txns []domain.Transaction, budgets []domain.Budget, goals []domain.Goal, ea *domain.EnhancedAnalytics, precomputed *float64) *domain.HealthScore {
	if precomputed != nil {
		score := int(math.Round(clamp(*precomputed, 0, 100)))
		return &domain.HealthScore{
			Score:  score,
			Grade:  domain.GradeForScore(score),
			Source: domain.ScoreSourcePrecomputed,
		}
	}

	if len(txns) == 0 && ea == nil {
		return &domain.HealthScore{
			Score:           0,
			Grade:           domain.GradeNA,
			Breakdown:       []domain.FactorScore{},
			Recommendations: []domain.Recommendation{},
			Source:          domain.ScoreSourceLocal,
		}
	}

	totals := AggregateByType(txns)
	income := totals.Income.InexactFloat64()
	expense := totals.Expense.InexactFloat64()
	expenses := expensesOnly(txns)

	var breakdown []domain.FactorScore
	var recs []domain.Recommendation
	total := 0.0

	// --- Spending vs income (30) ---
	savingsRate := 0.0
	switch {
	case income > 0:
		savingsRate = (income - expense) / income * 100
	case expense > 0:
		savingsRate = -100
	}
	points := 0.0
	switch {
	case savingsRate >= 20:
		points = 30
	case savingsRate >= 10:
		points = 25
	case savingsRate >= 0:
		points = 20
	case savingsRate >= -10:
		points = 10
	}
	total += points
	breakdown = append(breakdown, domain.FactorScore{
		Factor: domain.FactorSpendingVsIncome,
		Points: points,
		Max:    maxSpendingVsIncome,
		Detail: fmt.Sprintf("savings rate %.1f%%", savingsRate),
	})
	switch {
	case savingsRate < 0:
		recs = append(recs, domain.Recommendation{
			Priority: domain.SeverityHigh,
			Factor:   domain.FactorSpendingVsIncome,
			Message:  "You are spending more than you earn. Review your largest expense categories to get back to a positive savings rate.",
		})
	case savingsRate < 10:
		recs = append(recs, domain.Recommendation{
			Priority: domain.SeverityMedium,
			Factor:   domain.FactorSpendingVsIncome,
			Message:  "Your savings rate is below 10%. Aim to set aside at least 10% of your income each month.",
		})
	}

	// --- Budget adherence (25) ---
	points = maxBudgetAdherence
	if len(budgets) > 0 {
		byCat := AggregateByCategory(expenses)
		within := 0
		for _, b := range budgets {
			if b.Limit.IsPositive() && !byCat[b.Category].Total.GreaterThan(b.Limit) {
				within++
			}
		}
		points = maxBudgetAdherence * float64(within) / float64(len(budgets))
		if over := len(budgets) - within; over > 0 {
			recs = append(recs, domain.Recommendation{
				Priority: domain.SeverityMedium,
				Factor:   domain.FactorBudgetAdherence,
				Message:  fmt.Sprintf("%d of your %d budgets are over their limit. Rebalance or adjust the limits that no longer fit.", over, len(budgets)),
			})
		}
	}
	total += points
	breakdown = append(breakdown, domain.FactorScore{
		Factor: domain.FactorBudgetAdherence,
		Points: points,
		Max:    maxBudgetAdherence,
	})

	// --- Emergency fund (20) ---
	// The fund proxy is the positive net of the analysed window; months of
	// cover divide it by the monthly expense run rate.
	months := float64(daysSpanned(txns)) / 30
	if months < 1 {
		months = 1
	}
	monthlyExpense := expense / months
	fund := math.Max(0, income-expense)
	covered := 0.0
	if monthlyExpense > 0 {
		covered = fund / monthlyExpense
	} else if fund > 0 {
		covered = 6
	}
	switch {
	case covered >= 6:
		points = 20
	case covered >= 3:
		points = 15
	case covered >= 1:
		points = 10
	case covered > 0:
		points = 5
	default:
		points = 0
	}
	total += points
	breakdown = append(breakdown, domain.FactorScore{
		Factor: domain.FactorEmergencyFund,
		Points: points,
		Max:    maxEmergencyFund,
		Detail: fmt.Sprintf("%.1f months of expenses covered", covered),
	})
	if covered < 3 {
		priority := domain.SeverityMedium
		if covered < 1 {
			priority = domain.SeverityHigh
		}
		recs = append(recs, domain.Recommendation{
			Priority: priority,
			Factor:   domain.FactorEmergencyFund,
			Message:  "Build an emergency fund covering at least 3 months of expenses.",
		})
	}

	// --- Goal progress (15) ---
	points = maxGoalProgress
	active := 0
	progressSum := 0.0
	for _, g := range goals {
		if !g.IsActive || g.IsCompleted || !g.TargetAmount.IsPositive() {
			continue
		}
		active++
		ratio := g.CurrentAmount.InexactFloat64() / g.TargetAmount.InexactFloat64()
		progressSum += clamp(ratio, 0, 1)
	}
	if active > 0 {
		avgProgress := progressSum / float64(active)
		points = maxGoalProgress * avgProgress
		if avgProgress < 0.5 {
			recs = append(recs, domain.Recommendation{
				Priority: domain.SeverityLow,
				Factor:   domain.FactorGoalProgress,
				Message:  "Your active goals are less than halfway funded. Consider automatic transfers toward them.",
			})
		}
	}
	total += points
	breakdown = append(breakdown, domain.FactorScore{
		Factor: domain.FactorGoalProgress,
		Points: points,
		Max:    maxGoalProgress,
	})

	// --- Spending diversity (10) ---
	distinct := len(AggregateByCategory(expenses))
	points = math.Min(maxSpendingDiversity, 2*float64(distinct))
	total += points
	breakdown = append(breakdown, domain.FactorScore{
		Factor: domain.FactorSpendingDiversity,
		Points: points,
		Max:    maxSpendingDiversity,
		Detail: fmt.Sprintf("%d expense categories", distinct),
	})

	// --- Bonus: cash-flow stability (enhanced only) ---
	if hasTrends(ea) {
		trends := ea.CashFlowAnalysis.Trends
		bonus := 0.0
		switch {
		case trends.Volatility > 200:
			bonus = -5
		case trends.Volatility <= 100 && trends.NetGrowth > 0:
			bonus = 5
		default:
			bonus = 2
		}
		total += bonus
		breakdown = append(breakdown, domain.FactorScore{
			Factor: domain.FactorCashFlowStability,
			Points: bonus,
			Max:    5,
			Detail: fmt.Sprintf("volatility %.0f", trends.Volatility),
		})
	}

	// --- Bonus: forecast reliability (enhanced only) ---
	if hasSpendingForecast(ea) {
		bonus := 0.0
		switch ea.SpendingForecast.Confidence {
		case "high":
			bonus = 3
		case "medium":
			bonus = 1
		}
		if bonus > 0 {
			total += bonus
			breakdown = append(breakdown, domain.FactorScore{
				Factor: domain.FactorForecastReliability,
				Points: bonus,
				Max:    3,
			})
		}
	}

	score := int(math.Round(clamp(total, 0, 100)))

	if score >= 80 {
		recs = append(recs, domain.Recommendation{
			Priority: domain.SeverityInfo,
			Factor:   "overall",
			Message:  "Your finances look healthy. Keep up the current savings and budgeting habits.",
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return priorityWeight(recs[i].Priority) > priorityWeight(recs[j].Priority)
	})
	if len(recs) > recommendationLimit {
		recs = recs[:recommendationLimit]
	}

	return &domain.HealthScore{
		Score:           score,
		Grade:           domain.GradeForScore(score),
		Breakdown:       breakdown,
		Recommendations: recs,
		SavingsRate:     savingsRate,
		Source:          domain.ScoreSourceLocal,
	}
}
