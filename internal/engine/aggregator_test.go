package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/mbittar/finsights-engine-go/internal/domain"
	"github.com/mbittar/finsights-engine-go/internal/engine"
	"github.com/mbittar/finsights-engine-go/internal/infra/cache"
	"github.com/mbittar/finsights-engine-go/internal/infra/observability"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- Shared test helpers ---

// base is a Wednesday.
var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(opts ...engine.Option) *engine.Engine {
	return engine.New(cache.New[any](time.Minute), observability.NewMetrics(), zap.NewNop(), opts...)
}

func tx(id string, date time.Time, amount float64, typ, category string) domain.Transaction {
	return domain.Transaction{
		ID:       id,
		Date:     date,
		Amount:   decimal.NewFromFloat(amount),
		Type:     typ,
		Category: category,
	}
}

// --- Tests ---

func TestAggregateByCategory(t *testing.T) {
	txns := []domain.Transaction{
		tx("t1", base, -50, domain.TypeExpense, "Groceries"),
		tx("t2", base, -30, domain.TypeExpense, "Groceries"),
		tx("t3", base, -20, domain.TypeExpense, "groceries"), // case-sensitive
		tx("t4", base, -10, domain.TypeExpense, ""),
	}

	byCat := engine.AggregateByCategory(txns)

	if len(byCat) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(byCat))
	}
	groceries := byCat["Groceries"]
	if !groceries.Total.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected Groceries total 80, got %s", groceries.Total)
	}
	if groceries.Count != 2 {
		t.Errorf("expected Groceries count 2, got %d", groceries.Count)
	}
	if _, ok := byCat["groceries"]; !ok {
		t.Error("expected lowercase 'groceries' to be its own category")
	}
	if _, ok := byCat[domain.Uncategorized]; !ok {
		t.Error("expected empty category to default to Uncategorized")
	}
}

func TestAggregateByType(t *testing.T) {
	txns := []domain.Transaction{
		tx("t1", base, 1000, domain.TypeIncome, "Salary"),
		tx("t2", base, -300, domain.TypeExpense, "Rent"),
		tx("t3", base, -200, domain.TypeExpense, "Food"),
	}

	totals := engine.AggregateByType(txns)

	if !totals.Income.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected income 1000, got %s", totals.Income)
	}
	if !totals.Expense.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected expense 500, got %s", totals.Expense)
	}
}

func TestAggregateByDate(t *testing.T) {
	day2 := base.AddDate(0, 0, 1)
	txns := []domain.Transaction{
		tx("t1", base, 1000, domain.TypeIncome, "Salary"),
		tx("t2", base.Add(2*time.Hour), -400, domain.TypeExpense, "Rent"),
		tx("t3", day2, -100, domain.TypeExpense, "Food"),
	}

	byDate := engine.AggregateByDate(txns)

	if len(byDate) != 2 {
		t.Fatalf("expected 2 date buckets, got %d", len(byDate))
	}
	first := byDate["2024-05-01"]
	if !first.Net.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected net 600 for 2024-05-01, got %s", first.Net)
	}
	if len(first.Items) != 2 {
		t.Errorf("expected 2 items for 2024-05-01, got %d", len(first.Items))
	}
	second := byDate["2024-05-02"]
	if !second.Net.Equal(decimal.NewFromInt(-100)) {
		t.Errorf("expected net -100 for 2024-05-02, got %s", second.Net)
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	if got := engine.AggregateByCategory(nil); len(got) != 0 {
		t.Errorf("expected empty category map, got %d entries", len(got))
	}
	if got := engine.AggregateByDate(nil); len(got) != 0 {
		t.Errorf("expected empty date map, got %d entries", len(got))
	}
	totals := engine.AggregateByType(nil)
	if !totals.Income.IsZero() || !totals.Expense.IsZero() {
		t.Error("expected zero totals for empty input")
	}
}

// The type field is authoritative for classification; the amount sign is
// only a fallback when type is absent.
func TestNormalization_TypeAuthoritative(t *testing.T) {
	eng := newTestEngine()

	txns := []domain.Transaction{
		tx("t1", base, -1000, domain.TypeIncome, "Salary"), // sign disagrees, type wins
		tx("t2", base, 500, domain.TypeExpense, "Rent"),    // sign disagrees, type wins
	}

	score := eng.ComputeHealthScore(context.Background(), txns, nil, nil, domain.TimeframeMonthly, nil, nil)

	// income 1000, expense 500: savings rate 50%
	if score.SavingsRate != 50 {
		t.Errorf("expected savings rate 50, got %f", score.SavingsRate)
	}
}

func TestNormalization_SkipsGarbageRecords(t *testing.T) {
	eng := newTestEngine()

	txns := []domain.Transaction{
		tx("ok", base, 1000, domain.TypeIncome, "Salary"),
		tx("no-date", time.Time{}, -100, domain.TypeExpense, "Food"),
		tx("bad-type", base, -100, "transfer", "Food"),
	}

	score := eng.ComputeHealthScore(context.Background(), txns, nil, nil, domain.TimeframeMonthly, nil, nil)

	// Only the income survives: savings rate 100%.
	if score.SavingsRate != 100 {
		t.Errorf("expected garbage records skipped (savings rate 100), got %f", score.SavingsRate)
	}
}
