package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendsight/internal/amqp"
	"spendsight/internal/core"
	"spendsight/internal/store"
	"spendsight/internal/store/memory"
)

type capturePublisher struct {
	events []*amqp.ExpenseEventMessage
	err    error
}

func (p *capturePublisher) PublishExpenseEvent(_ context.Context, msg *amqp.ExpenseEventMessage) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, msg)
	return nil
}

func validExpense() core.Expense {
	return core.Expense{
		Owner:    "alice",
		Title:    "groceries",
		Amount:   54.20,
		Category: core.CategoryFood,
		Date:     time.Date(2026, 3, 12, 0, 0, 0, 0, time.Local),
	}
}

func TestCreatePublishesEvent(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewExpenseService(memory.New(), pub)

	created, err := svc.Create(context.Background(), validExpense())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("created expense must get an ID")
	}
	if len(pub.events) != 1 {
		t.Fatalf("events published = %d, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Action != amqp.ActionCreated || ev.ExpenseID != created.ID || ev.Month != "2026-03" {
		t.Errorf("event = %+v", ev)
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	st := memory.New()
	svc := NewExpenseService(st, &capturePublisher{err: errors.New("broker down")})

	created, err := svc.Create(context.Background(), validExpense())
	if err != nil {
		t.Fatalf("a broker outage must not fail the write: %v", err)
	}
	if _, err := st.GetExpense(context.Background(), "alice", created.ID); err != nil {
		t.Errorf("expense must be persisted despite publish failure: %v", err)
	}
}

func TestCreateWithoutPublisher(t *testing.T) {
	svc := NewExpenseService(memory.New(), nil)
	if _, err := svc.Create(context.Background(), validExpense()); err != nil {
		t.Fatalf("nil publisher must be allowed: %v", err)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewExpenseService(memory.New(), pub)

	e := validExpense()
	e.Amount = -5
	if _, err := svc.Create(context.Background(), e); err == nil {
		t.Fatal("invalid expense must be rejected")
	}
	if len(pub.events) != 0 {
		t.Error("rejected writes must not publish events")
	}
}

func TestUpdateAndDeleteEvents(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewExpenseService(memory.New(), pub)
	ctx := context.Background()

	created, err := svc.Create(ctx, validExpense())
	if err != nil {
		t.Fatal(err)
	}
	created.Amount = 60
	if err := svc.Update(ctx, created); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := svc.Delete(ctx, "alice", created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	actions := make([]string, 0, len(pub.events))
	for _, ev := range pub.events {
		actions = append(actions, ev.Action)
	}
	want := []string{amqp.ActionCreated, amqp.ActionUpdated, amqp.ActionDeleted}
	if len(actions) != len(want) {
		t.Fatalf("actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("action %d = %s, want %s", i, actions[i], want[i])
		}
	}

	if _, err := svc.Get(ctx, "alice", created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("deleted expense should be gone, got %v", err)
	}
}

func TestDeleteMissingExpense(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewExpenseService(memory.New(), pub)
	if err := svc.Delete(context.Background(), "alice", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if len(pub.events) != 0 {
		t.Error("failed delete must not publish")
	}
}

func TestListByMonthAndCategory(t *testing.T) {
	svc := NewExpenseService(memory.New(), nil)
	ctx := context.Background()

	seed := func(cat core.Category, day int, month time.Month) {
		e := validExpense()
		e.Category = cat
		e.Date = time.Date(2026, month, day, 0, 0, 0, 0, time.Local)
		if _, err := svc.Create(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	seed(core.CategoryFood, 5, time.March)
	seed(core.CategoryBills, 9, time.March)
	seed(core.CategoryFood, 2, time.February)

	got, err := svc.List(ctx, "alice", "2026-03", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("march expenses = %d, want 2", len(got))
	}

	got, err = svc.List(ctx, "alice", "2026-03", core.CategoryFood)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Category != core.CategoryFood {
		t.Errorf("filtered = %+v", got)
	}

	got, err = svc.List(ctx, "alice", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("all expenses = %d, want 3", len(got))
	}
}

func TestBudgetServiceUniqueActive(t *testing.T) {
	svc := NewBudgetService(memory.New())
	ctx := context.Background()

	b := core.Budget{
		Owner:          "alice",
		Category:       core.CategoryFood,
		Month:          "2026-03",
		Limit:          400,
		AlertThreshold: core.DefaultAlertThreshold,
		Active:         true,
	}
	if _, err := svc.Create(ctx, b); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, b); !errors.Is(err, store.ErrDuplicateBudget) {
		t.Errorf("second active budget: err = %v, want ErrDuplicateBudget", err)
	}

	// an inactive duplicate is fine
	b.Active = false
	if _, err := svc.Create(ctx, b); err != nil {
		t.Errorf("inactive duplicate must be allowed: %v", err)
	}

	list, err := svc.List(ctx, "alice", "2026-03")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("budgets = %d, want 2", len(list))
	}
}
