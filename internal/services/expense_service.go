// Package services orchestrates writes across the store and the event
// stream. Persistence is authoritative; event publishing is best-effort
// and never fails a request.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"spendsight/internal/amqp"
	"spendsight/internal/core"
	"spendsight/internal/store"
)

// EventPublisher sends expense-change events to the digest worker. The
// AMQP client satisfies it; tests use fakes.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error
}

// ExpenseService persists expenses and announces changes.
type ExpenseService struct {
	store     store.Store
	publisher EventPublisher
	logger    *slog.Logger
}

// NewExpenseService builds the service. publisher may be nil; then events
// are skipped and only persistence happens.
func NewExpenseService(st store.Store, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:     st,
		publisher: publisher,
		logger:    slog.Default().With("component", "expense_service"),
	}
}

func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.publish(ctx, created, amqp.ActionCreated)
	return created, nil
}

func (s *ExpenseService) Get(ctx context.Context, owner, id string) (core.Expense, error) {
	return s.store.GetExpense(ctx, owner, id)
}

func (s *ExpenseService) Update(ctx context.Context, e core.Expense) error {
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	s.publish(ctx, e, amqp.ActionUpdated)
	return nil
}

func (s *ExpenseService) Delete(ctx context.Context, owner, id string) error {
	e, err := s.store.GetExpense(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, owner, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publish(ctx, e, amqp.ActionDeleted)
	return nil
}

// List returns an owner's expenses, optionally narrowed to one month and
// one category. Results are date-descending per the store contract.
func (s *ExpenseService) List(ctx context.Context, owner string, month core.Month, category core.Category) ([]core.Expense, error) {
	f := store.ExpenseFilter{Owner: owner, Category: category}
	if month != "" {
		f.From, f.To = month.Range()
	}
	return s.store.ListExpenses(ctx, f)
}

// publish is fire-and-forget: the expense is already persisted, so a
// broker outage only delays digest regeneration.
func (s *ExpenseService) publish(ctx context.Context, e core.Expense, action string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewExpenseEventMessage(e.ID, e.Owner, action, core.MonthOf(e.Date))
	if err := s.publisher.PublishExpenseEvent(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish expense event",
			"expense_id", e.ID, "action", action, "error", err)
	}
}

// BudgetService persists budgets. Budgets don't feed the digest worker,
// so there is no event stream here.
type BudgetService struct {
	store store.Store
}

func NewBudgetService(st store.Store) *BudgetService {
	return &BudgetService{store: st}
}

func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	return s.store.CreateBudget(ctx, b)
}

func (s *BudgetService) Get(ctx context.Context, owner, id string) (core.Budget, error) {
	return s.store.GetBudget(ctx, owner, id)
}

func (s *BudgetService) Update(ctx context.Context, b core.Budget) error {
	return s.store.UpdateBudget(ctx, b)
}

func (s *BudgetService) Delete(ctx context.Context, owner, id string) error {
	return s.store.DeleteBudget(ctx, owner, id)
}

func (s *BudgetService) List(ctx context.Context, owner string, month core.Month) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx, owner, month, false)
}
