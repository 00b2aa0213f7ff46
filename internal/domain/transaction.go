package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types. A transaction whose Type is empty is classified by the
// sign of its amount at ingestion; when Type is set it is authoritative.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Uncategorized is the bucket for transactions with a missing category.
const Uncategorized = "Uncategorized"

// Transaction is a single ledger entry supplied by the caller.
// Amounts follow one convention after ingestion: income positive,
// expense negative.
type Transaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"` // income, expense
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
}

// IsExpense reports whether the transaction is an expense under the
// canonical convention (type authoritative, amount sign as fallback).
func (t Transaction) IsExpense() bool {
	switch t.Type {
	case TypeExpense:
		return true
	case TypeIncome:
		return false
	}
	return t.Amount.IsNegative()
}

// AbsAmount returns the transaction amount as a positive value.
func (t Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// UnmarshalJSON decodes a transaction leniently: the date accepts RFC 3339
// or plain YYYY-MM-DD, the amount accepts a number or a quoted decimal.
// A field that cannot be parsed is left at its zero value so the engine
// can skip the record instead of failing the whole payload.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string          `json:"id"`
		Date        string          `json:"date"`
		Amount      json.RawMessage `json:"amount"`
		Type        string          `json:"type"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.ID = raw.ID
	t.Type = raw.Type
	t.Category = raw.Category
	t.Description = raw.Description

	t.Date = time.Time{}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw.Date); err == nil {
			t.Date = parsed
			break
		}
	}

	t.Amount = decimal.Zero
	if len(raw.Amount) > 0 {
		if d, err := decimal.NewFromString(strings.Trim(string(raw.Amount), `"`)); err == nil {
			t.Amount = d
		}
	}
	return nil
}

// Budget is a read-only per-category spending limit.
type Budget struct {
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
}

// Goal is a read-only savings goal.
type Goal struct {
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	IsActive      bool            `json:"isActive"`
	IsCompleted   bool            `json:"isCompleted"`
}

// Timeframe of an analysis: controls the forecast horizon.
const (
	TimeframeMonthly = "monthly"
	TimeframeYearly  = "yearly"
)

// ForecastDays returns the simulation horizon for a timeframe.
// Unknown values fall back to the monthly horizon.
func ForecastDays(timeframe string) int {
	if timeframe == TimeframeYearly {
		return 90
	}
	return 30
}
