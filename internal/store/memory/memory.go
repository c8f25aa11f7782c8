// Package memory provides an in-process store implementation used by the
// default dev backend and by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendsight/internal/core"
	"spendsight/internal/store"
)

type Store struct {
	mu       sync.Mutex
	expenses map[string]core.Expense
	budgets  map[string]core.Budget
	digests  []core.InsightDigest
}

func New() *Store {
	return &Store{
		expenses: make(map[string]core.Expense),
		budgets:  make(map[string]core.Budget),
	}
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.expenses[e.ID] = e
	return e, nil
}

func (s *Store) GetExpense(_ context.Context, owner, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.Owner != owner {
		return core.Expense{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.expenses[e.ID]
	if !ok || cur.Owner != e.Owner {
		return store.ErrNotFound
	}
	s.expenses[e.ID] = e
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.Owner != owner {
		return store.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

// ListExpenses returns matching expenses sorted by date descending. The
// result is a fresh slice; callers may mutate it freely.
func (s *Store) ListExpenses(_ context.Context, f store.ExpenseFilter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0)
	for _, e := range s.expenses {
		if e.Owner != f.Owner {
			continue
		}
		if !f.From.IsZero() && e.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && e.Date.After(f.To) {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.Active && s.hasActiveBudgetLocked(b.Owner, b.Category, b.Month, "") {
		return core.Budget{}, store.ErrDuplicateBudget
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) GetBudget(_ context.Context, owner, id string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.Owner != owner {
		return core.Budget{}, store.ErrNotFound
	}
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.budgets[b.ID]
	if !ok || cur.Owner != b.Owner {
		return store.ErrNotFound
	}
	if b.Active && s.hasActiveBudgetLocked(b.Owner, b.Category, b.Month, b.ID) {
		return store.ErrDuplicateBudget
	}
	s.budgets[b.ID] = b
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.Owner != owner {
		return store.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) ListBudgets(_ context.Context, owner string, month core.Month, activeOnly bool) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, 0)
	for _, b := range s.budgets {
		if b.Owner != owner {
			continue
		}
		if month != "" && b.Month != month {
			continue
		}
		if activeOnly && !b.Active {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) SaveDigest(_ context.Context, d core.InsightDigest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.GeneratedAt.IsZero() {
		d.GeneratedAt = time.Now()
	}
	s.digests = append(s.digests, d)
	return nil
}

func (s *Store) ListDigests(_ context.Context, owner string, limit int) ([]core.InsightDigest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.InsightDigest, 0)
	for _, d := range s.digests {
		if strings.EqualFold(d.Owner, owner) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) hasActiveBudgetLocked(owner string, cat core.Category, month core.Month, excludeID string) bool {
	for _, b := range s.budgets {
		if b.ID == excludeID {
			continue
		}
		if b.Owner == owner && b.Category == cat && b.Month == month && b.Active {
			return true
		}
	}
	return false
}
