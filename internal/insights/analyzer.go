// Package insights produces narrative spending insights: a six-month
// analysis snapshot, prompts for an optional text-generation collaborator,
// response normalization, and a deterministic rule-based generator used
// whenever no collaborator is configured or a call fails.
package insights

import (
	"context"
	"fmt"
	"sort"
	"time"

	"spendsight/internal/analytics"
	"spendsight/internal/core"
	"spendsight/internal/store"
)

// Analysis window and result caps.
const (
	windowMonths     = 6
	topCategoryCount = 5
	anomalyNoteCount = 3
)

// AnomalyNote is the compact anomaly form embedded in a spending snapshot.
type AnomalyNote struct {
	Date       time.Time     `json:"date"`
	Category   core.Category `json:"category"`
	Title      string        `json:"title"`
	Amount     float64       `json:"amount"`
	Difference float64       `json:"difference"`
}

// BudgetRef is the budget slice of a spending snapshot.
type BudgetRef struct {
	Category core.Category `json:"category"`
	Limit    float64       `json:"limit"`
}

// SpendingData is a six-month spending snapshot: the ground truth every
// insight narrative, prompt, and chat answer is built from. It is computed
// fresh per request and never persisted.
type SpendingData struct {
	TotalSpending        float64                   `json:"totalSpending"`
	AvgMonthlySpending   float64                   `json:"avgMonthlySpending"`
	MonthlyTrend         float64                   `json:"monthlyTrend"`
	ExpenseCount         int                       `json:"expenseCount"`
	CategorySpending     map[core.Category]float64 `json:"categorySpending"`
	TopCategories        []analytics.CategoryTotal `json:"topCategories"`
	Anomalies            []AnomalyNote             `json:"anomalies"`
	Budgets              []BudgetRef               `json:"budgets"`
	CurrentMonthSpending float64                   `json:"currentMonthSpending"`
	Currency             string                    `json:"currency"`
}

// Analyzer assembles spending snapshots from the store.
type Analyzer struct {
	expenses store.ExpenseReader
	budgets  store.BudgetReader
	now      func() time.Time
}

func NewAnalyzer(expenses store.ExpenseReader, budgets store.BudgetReader) *Analyzer {
	return &Analyzer{expenses: expenses, budgets: budgets, now: time.Now}
}

// Analyze builds the six-month snapshot for an owner. A nil result with a
// nil error means the owner has no expenses in the window.
func (a *Analyzer) Analyze(ctx context.Context, owner string) (*SpendingData, error) {
	now := a.now()
	expenses, err := a.expenses.ListExpenses(ctx, store.ExpenseFilter{
		Owner: owner,
		From:  now.AddDate(0, -windowMonths, 0),
		To:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("list insight window: %w", err)
	}
	if len(expenses) == 0 {
		return nil, nil
	}

	total := analytics.Total(expenses)
	byMonth := make(map[core.Month]float64)
	for _, e := range expenses {
		byMonth[core.MonthOf(e.Date)] += e.Amount
	}

	// Trend compares the two most recent months that have any spending.
	months := make([]core.Month, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	latest := months[len(months)-1]
	var trend float64
	if len(months) > 1 {
		prev := byMonth[months[len(months)-2]]
		if prev > 0 {
			trend = (byMonth[latest] - prev) / prev * 100
		}
	}

	spending := analytics.CategoryTotals(expenses)
	rounded := make(map[core.Category]float64, len(spending))
	for cat, amt := range spending {
		rounded[cat] = core.Round2(amt)
	}
	top := analytics.TopCategories(expenses, topCategoryCount)
	for i := range top {
		top[i].Amount = core.Round2(top[i].Amount)
	}

	notes := make([]AnomalyNote, 0, anomalyNoteCount)
	for _, an := range analytics.DetectAnomalies(expenses, anomalyNoteCount) {
		notes = append(notes, AnomalyNote{
			Date:       an.Expense.Date,
			Category:   an.Expense.Category,
			Title:      an.Expense.Title,
			Amount:     core.Round2(an.Expense.Amount),
			Difference: core.Round2(an.Excess),
		})
	}

	budgets, err := a.budgets.ListBudgets(ctx, owner, "", true)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	refs := make([]BudgetRef, 0, len(budgets))
	for _, b := range budgets {
		refs = append(refs, BudgetRef{Category: b.Category, Limit: b.Limit})
	}

	return &SpendingData{
		TotalSpending:        core.Round2(total),
		AvgMonthlySpending:   core.Round2(total / windowMonths),
		MonthlyTrend:         core.Round2(trend),
		ExpenseCount:         len(expenses),
		CategorySpending:     rounded,
		TopCategories:        top,
		Anomalies:            notes,
		Budgets:              refs,
		CurrentMonthSpending: core.Round2(byMonth[latest]),
		Currency:             "USD",
	}, nil
}
