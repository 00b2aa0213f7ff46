package engine

import (
	"time"

	"github.com/mbittar/finsights-engine-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ============================================================
// Transaction aggregation
// ============================================================

// CategoryAggregate is the per-category spending rollup.
// Total is the absolute-value sum of the grouped items.
type CategoryAggregate struct {
	Total decimal.Decimal      `json:"total"`
	Count int                  `json:"count"`
	Items []domain.Transaction `json:"items,omitempty"`
}

// TypeTotals holds income and expense totals, both as positive values.
type TypeTotals struct {
	Income  decimal.Decimal `json:"incomeTotal"`
	Expense decimal.Decimal `json:"expenseTotal"`
}

// DateAggregate groups transactions sharing a calendar day.
// Net is signed: income minus expenses for that day.
type DateAggregate struct {
	Items []domain.Transaction `json:"items"`
	Net   decimal.Decimal      `json:"net"`
}

const dateKeyLayout = "2006-01-02"

// normalize applies the canonical sign convention and drops records the
// engine cannot classify. The type field is authoritative when set;
// otherwise the amount sign decides. Expenses come out negative.
// Records with an unparsable date, or a zero amount and no type, are
// skipped with a diagnostic.
func normalize(txns []domain.Transaction, logger *zap.Logger) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Date.IsZero() {
			logger.Debug("skipping transaction with unparsable date", zap.String("id", t.ID))
			continue
		}
		if t.Amount.IsZero() && t.Type == "" {
			logger.Debug("skipping unclassifiable zero-amount transaction", zap.String("id", t.ID))
			continue
		}
		switch t.Type {
		case domain.TypeExpense:
			t.Amount = t.Amount.Abs().Neg()
		case domain.TypeIncome:
			t.Amount = t.Amount.Abs()
		case "":
			if t.Amount.IsNegative() {
				t.Type = domain.TypeExpense
			} else {
				t.Type = domain.TypeIncome
			}
		default:
			logger.Debug("skipping transaction with unknown type",
				zap.String("id", t.ID),
				zap.String("type", t.Type),
			)
			continue
		}
		if t.Category == "" {
			t.Category = domain.Uncategorized
		}
		out = append(out, t)
	}
	return out
}

// AggregateByCategory groups transactions by exact (case-sensitive) category.
// Empty input yields an empty map, never an error.
func AggregateByCategory(txns []domain.Transaction) map[string]CategoryAggregate {
	byCat := make(map[string]CategoryAggregate)
	for _, t := range txns {
		cat := t.Category
		if cat == "" {
			cat = domain.Uncategorized
		}
		agg := byCat[cat]
		agg.Total = agg.Total.Add(t.AbsAmount())
		agg.Count++
		agg.Items = append(agg.Items, t)
		byCat[cat] = agg
	}
	return byCat
}

// AggregateByType sums income and expenses, both as positive totals.
func AggregateByType(txns []domain.Transaction) TypeTotals {
	var totals TypeTotals
	for _, t := range txns {
		if t.IsExpense() {
			totals.Expense = totals.Expense.Add(t.AbsAmount())
		} else {
			totals.Income = totals.Income.Add(t.AbsAmount())
		}
	}
	return totals
}

// AggregateByDate groups transactions by calendar day (date truncation)
// with a signed net per day.
func AggregateByDate(txns []domain.Transaction) map[string]DateAggregate {
	byDate := make(map[string]DateAggregate)
	for _, t := range txns {
		key := t.Date.Format(dateKeyLayout)
		agg := byDate[key]
		agg.Items = append(agg.Items, t)
		if t.IsExpense() {
			agg.Net = agg.Net.Sub(t.AbsAmount())
		} else {
			agg.Net = agg.Net.Add(t.AbsAmount())
		}
		byDate[key] = agg
	}
	return byDate
}

// expensesOnly filters to expense transactions.
func expensesOnly(txns []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.IsExpense() {
			out = append(out, t)
		}
	}
	return out
}

// daysSpanned reports the number of calendar days covered by the data,
// inclusive of both endpoints. Empty input spans zero days.
func daysSpanned(txns []domain.Transaction) int {
	if len(txns) == 0 {
		return 0
	}
	min, max := txns[0].Date, txns[0].Date
	for _, t := range txns[1:] {
		if t.Date.Before(min) {
			min = t.Date
		}
		if t.Date.After(max) {
			max = t.Date
		}
	}
	return int(max.Sub(min)/(24*time.Hour)) + 1
}
