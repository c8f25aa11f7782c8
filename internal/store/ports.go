// Package store defines the ports the analytics and insight engines read
// expense data through. Implementations live in internal/storage (SQLite)
// and in the memory subpackage.
package store

import (
	"context"
	"errors"
	"time"

	"spendsight/internal/core"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateBudget = errors.New("an active budget already exists for this category and month")
)

// ExpenseFilter narrows an expense query. Owner is required; a zero From/To
// leaves that end of the date range open; an empty Category matches all.
type ExpenseFilter struct {
	Owner    string
	From     time.Time
	To       time.Time
	Category core.Category
}

type (
	// ExpenseReader is the read-only view the analytics engines use.
	ExpenseReader interface {
		// ListExpenses returns matching expenses sorted by date descending.
		ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error)
	}

	// BudgetReader returns budgets for an owner. An empty month matches all
	// months; activeOnly restricts to budgets with the active flag set.
	BudgetReader interface {
		ListBudgets(ctx context.Context, owner string, month core.Month, activeOnly bool) ([]core.Budget, error)
	}

	ExpenseWriter interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		GetExpense(ctx context.Context, owner, id string) (core.Expense, error)
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, owner, id string) error
	}

	BudgetWriter interface {
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		GetBudget(ctx context.Context, owner, id string) (core.Budget, error)
		UpdateBudget(ctx context.Context, b core.Budget) error
		DeleteBudget(ctx context.Context, owner, id string) error
	}

	// DigestStore persists insight digests produced by the worker.
	DigestStore interface {
		SaveDigest(ctx context.Context, d core.InsightDigest) error
		ListDigests(ctx context.Context, owner string, limit int) ([]core.InsightDigest, error)
	}
)

// Store is the full persistence surface the application wires together.
type Store interface {
	ExpenseReader
	ExpenseWriter
	BudgetReader
	BudgetWriter
	DigestStore
}
