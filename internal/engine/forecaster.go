package engine

import (
	"math"
	"math/rand"
	"time"

	"github.com/mbittar/finsights-engine-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Cash-flow forecaster
// ============================================================

// Forecast tuning constants. The simulation is an explicitly heuristic
// projection, not an actuarial forecast.
const (
	weekendExpenseMultiplier = 1.3
	paydayIncomeMultiplier   = 3.0 // every 14th simulated day
	paydayInterval           = 14
	dampeningMin             = 0.75
	dampeningSpread          = 0.5 // uniform in [0.75, 1.25]
	dampeningFloor           = 0.5 // never below 50% of the average
	minHistoryDays           = 30

	// Balance bands for per-day risk classification.
	balanceHighRisk   = -1000.0
	balanceMediumRisk = -500.0
	balanceWarning    = 200.0

	// Synthetic starting balance when adopting an enhanced series.
	// Presentational only, not a real balance.
	enhancedBaseline = 1000.0
)

// forecaster runs a single forecast computation. The random source and
// clock are injected so outputs are reproducible under test.
type forecaster struct {
	rng    *rand.Rand
	now    time.Time
	logger *zap.Logger
}

// Forecast produces the risk forecast for the given horizon. A well-formed
// enhanced cash-flow analysis is adopted directly; otherwise the trajectory
// is simulated from historical daily averages.
func (f *forecaster) Forecast(txns []domain.Transaction, timeframe string, ea *domain.EnhancedAnalytics) *domain.RiskForecast {
	if hasCashFlowAnalysis(ea) {
		return f.fromEnhanced(ea)
	}
	if ea != nil && ea.CashFlowAnalysis != nil {
		f.logger.Warn("enhanced cash-flow analysis malformed, falling back to local simulation")
	}
	return f.simulate(txns, timeframe)
}

// simulate walks forward day by day from historical averages.
func (f *forecaster) simulate(txns []domain.Transaction, timeframe string) *domain.RiskForecast {
	days := domain.ForecastDays(timeframe)
	if len(txns) == 0 {
		// Nothing to project from: the distinguished empty state.
		return &domain.RiskForecast{
			RiskDays:       []domain.RiskDay{},
			DailyFlow:      []domain.DailyFlow{},
			BalanceHistory: []float64{},
			RiskLevel:      domain.SeverityLow,
			ForecastPeriod: days,
			Source:         domain.SourceLocal,
		}
	}
	totals := AggregateByType(txns)

	historyDays := float64(daysSpanned(txns))
	if historyDays < minHistoryDays {
		historyDays = minHistoryDays
	}
	avgIncome := totals.Income.InexactFloat64() / historyDays
	avgExpense := totals.Expense.InexactFloat64() / historyDays

	forecast := &domain.RiskForecast{
		RiskDays:        []domain.RiskDay{},
		DailyFlow:       make([]domain.DailyFlow, 0, days),
		BalanceHistory:  make([]float64, 0, days),
		ForecastPeriod:  days,
		AvgDailyIncome:  avgIncome,
		AvgDailyExpense: avgExpense,
		Source:          domain.SourceLocal,
	}

	balance := 0.0
	for day := 1; day <= days; day++ {
		date := f.now.AddDate(0, 0, day)

		income := avgIncome
		expense := avgExpense
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			expense *= weekendExpenseMultiplier
		}
		if day%paydayInterval == 0 {
			income *= paydayIncomeMultiplier
		}
		income = math.Max(income*f.dampening(), avgIncome*dampeningFloor)
		expense = math.Max(expense*f.dampening(), avgExpense*dampeningFloor)

		balance += income - expense
		forecast.DailyFlow = append(forecast.DailyFlow, domain.DailyFlow{
			Day:     day,
			Income:  income,
			Expense: expense,
			Balance: balance,
		})
		forecast.BalanceHistory = append(forecast.BalanceHistory, balance)

		if severity, ok := classifyDay(balance, expense, avgExpense); ok {
			forecast.RiskDays = append(forecast.RiskDays, domain.RiskDay{
				Day:      day,
				Balance:  balance,
				Severity: severity,
				Income:   income,
				Expense:  expense,
			})
		}
	}

	forecast.RiskLevel = overallRiskLevel(forecast.RiskDays)
	return forecast
}

// fromEnhanced adopts a pre-computed series, deriving a synthetic balance
// history by cumulative-summing net from a fixed baseline.
func (f *forecaster) fromEnhanced(ea *domain.EnhancedAnalytics) *domain.RiskForecast {
	cfa := ea.CashFlowAnalysis
	forecast := &domain.RiskForecast{
		RiskDays:       []domain.RiskDay{},
		DailyFlow:      make([]domain.DailyFlow, 0, len(cfa.Periods)),
		BalanceHistory: make([]float64, 0, len(cfa.Periods)),
		ForecastPeriod: len(cfa.Periods),
		Source:         domain.SourceEnhanced,
	}

	var incomeSum, expenseSum float64
	for _, p := range cfa.Periods {
		incomeSum += p.Income
		expenseSum += p.Expenses
	}
	n := float64(len(cfa.Periods))
	forecast.AvgDailyIncome = incomeSum / n
	forecast.AvgDailyExpense = expenseSum / n

	balance := enhancedBaseline
	for i, p := range cfa.Periods {
		balance += p.Net
		forecast.BalanceHistory = append(forecast.BalanceHistory, balance)
		forecast.DailyFlow = append(forecast.DailyFlow, domain.DailyFlow{
			Day:     i + 1,
			Income:  p.Income,
			Expense: p.Expenses,
			Balance: balance,
		})
		if severity, ok := classifyDay(balance, p.Expenses, forecast.AvgDailyExpense); ok {
			forecast.RiskDays = append(forecast.RiskDays, domain.RiskDay{
				Day:      i + 1,
				Balance:  balance,
				Severity: severity,
				Income:   p.Income,
				Expense:  p.Expenses,
			})
		}
	}

	forecast.RiskLevel = enhancedRiskLevel(ea)
	return forecast
}

// dampening draws the uniform simulation-noise factor in [0.75, 1.25].
func (f *forecaster) dampening() float64 {
	return dampeningMin + f.rng.Float64()*dampeningSpread
}

// classifyDay maps a simulated day to a severity. Days that trigger no rule
// return ok=false and are not recorded as risk days.
func classifyDay(balance, expense, avgExpense float64) (string, bool) {
	switch {
	case balance < balanceHighRisk:
		return domain.SeverityHigh, true
	case balance < balanceMediumRisk:
		return domain.SeverityMedium, true
	case balance < 0:
		return domain.SeverityLow, true
	case balance < balanceWarning:
		return domain.SeverityWarning, true
	case avgExpense > 0 && expense > 3*avgExpense:
		return domain.SeverityInfo, true
	}
	return "", false
}

// overallRiskLevel aggregates risk days into a single level using a
// weighted score: 3 per high day, 2 per medium, 1 per warning.
func overallRiskLevel(riskDays []domain.RiskDay) string {
	var high, medium, warning int
	for _, d := range riskDays {
		switch d.Severity {
		case domain.SeverityHigh:
			high++
		case domain.SeverityMedium:
			medium++
		case domain.SeverityWarning:
			warning++
		}
	}

	score := 3*high + 2*medium + warning
	switch {
	case score >= 10 || high >= 3:
		return domain.SeverityHigh
	case score >= 5 || medium >= 5:
		return domain.SeverityMedium
	case score >= 2:
		return domain.SeverityWarning
	}
	return domain.SeverityLow
}

// enhancedRiskLevel scores an adopted series from its trend statistics,
// negative-net periods and forecast risk factors.
func enhancedRiskLevel(ea *domain.EnhancedAnalytics) string {
	score := 0

	if hasTrends(ea) {
		vol := ea.CashFlowAnalysis.Trends.Volatility
		if vol > 100 {
			score += 2
		}
		if vol > 200 {
			score++
		}
	}

	negative := 0
	for _, p := range ea.CashFlowAnalysis.Periods {
		if p.Net < 0 {
			negative++
		}
	}
	if negative > 5 {
		score += 2
	}
	if negative > 10 {
		score++
	}

	if hasSpendingForecast(ea) {
		score += len(ea.SpendingForecast.RiskFactors)
	}

	switch {
	case score >= 5:
		return domain.SeverityHigh
	case score >= 3:
		return domain.SeverityMedium
	case score >= 1:
		return domain.SeverityWarning
	}
	return domain.SeverityLow
}
