package analytics

import (
	"context"
	"reflect"
	"testing"
	"time"

	"spendsight/internal/core"
	"spendsight/internal/store/memory"
)

const owner = "alice"

// March 15, 2026, midday.
var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.Local)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc := NewService(st, st).WithClock(func() time.Time { return testNow })
	return svc, st
}

func seedExpense(t *testing.T, st *memory.Store, cat core.Category, amount float64, date time.Time) core.Expense {
	t.Helper()
	e, err := st.CreateExpense(context.Background(), core.Expense{
		Owner:    owner,
		Title:    "seed",
		Amount:   amount,
		Category: cat,
		Date:     date,
	})
	if err != nil {
		t.Fatalf("seed expense: %v", err)
	}
	return e
}

func seedBudget(t *testing.T, st *memory.Store, cat core.Category, month core.Month, limit float64, threshold int) {
	t.Helper()
	_, err := st.CreateBudget(context.Background(), core.Budget{
		Owner:          owner,
		Category:       cat,
		Month:          month,
		Limit:          limit,
		AlertThreshold: threshold,
		Active:         true,
	})
	if err != nil {
		t.Fatalf("seed budget: %v", err)
	}
}

func TestMonthlySummary(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedExpense(t, st, core.CategoryFood, 120.50, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	seedExpense(t, st, core.CategoryFood, 80.25, time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local))
	seedExpense(t, st, core.CategoryBills, 300, time.Date(2026, 3, 5, 9, 0, 0, 0, time.Local))
	// outside the month, must not count
	seedExpense(t, st, core.CategoryFood, 999, time.Date(2026, 2, 27, 9, 0, 0, 0, time.Local))
	seedBudget(t, st, core.CategoryFood, "2026-03", 250, 80)

	got, err := svc.MonthlySummary(ctx, owner, "2026-03")
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}
	if got.Summary.TotalSpent != 500.75 {
		t.Errorf("totalSpent = %.2f, want 500.75", got.Summary.TotalSpent)
	}
	if got.Summary.TotalExpenses != 3 {
		t.Errorf("totalExpenses = %d, want 3", got.Summary.TotalExpenses)
	}
	if got.Summary.DaysElapsed != 15 {
		t.Errorf("daysElapsed = %d, want 15", got.Summary.DaysElapsed)
	}
	if got.Summary.DaysInMonth != 31 {
		t.Errorf("daysInMonth = %d, want 31", got.Summary.DaysInMonth)
	}
	if got.Summary.TotalBudget != 250 {
		t.Errorf("totalBudget = %.2f, want 250", got.Summary.TotalBudget)
	}

	if len(got.BudgetComparison) != 1 {
		t.Fatalf("budgetComparison entries = %d, want 1", len(got.BudgetComparison))
	}
	bc := got.BudgetComparison[0]
	if bc.Category != core.CategoryFood || bc.Spent != 200.75 {
		t.Errorf("budget comparison = %+v", bc)
	}
	if !bc.AlertTriggered {
		t.Error("80.3%% of an 80%% threshold must trigger the alert")
	}
	if bc.IsExceeded {
		t.Error("200.75 of 250 must not be exceeded")
	}

	if got.CategorySpending[core.CategoryBills] != 300 {
		t.Errorf("categorySpending[bills] = %.2f, want 300", got.CategorySpending[core.CategoryBills])
	}
	if len(got.TopCategories) != 2 || got.TopCategories[0].Category != core.CategoryBills {
		t.Errorf("topCategories = %+v", got.TopCategories)
	}
}

func TestMonthlySummaryIdempotent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedExpense(t, st, core.CategoryFood, 42.42, time.Date(2026, 3, 4, 9, 0, 0, 0, time.Local))
	seedBudget(t, st, core.CategoryFood, "2026-03", 100, 80)

	first, err := svc.MonthlySummary(ctx, owner, "2026-03")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.MonthlySummary(ctx, owner, "2026-03")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical data must yield identical summaries")
	}
}

func TestTrendsSeries(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedExpense(t, st, core.CategoryFood, 100, time.Date(2026, 3, 3, 9, 0, 0, 0, time.Local))
	seedExpense(t, st, core.CategoryFood, 50, time.Date(2026, 1, 8, 9, 0, 0, 0, time.Local))
	seedExpense(t, st, core.CategoryFood, 25, time.Date(2025, 4, 20, 9, 0, 0, 0, time.Local))

	series, err := svc.Trends(ctx, owner)
	if err != nil {
		t.Fatalf("Trends: %v", err)
	}
	if len(series) != 12 {
		t.Fatalf("series length = %d, want 12", len(series))
	}
	if series[0].Month != "2025-04" || series[11].Month != "2026-03" {
		t.Errorf("series bounds = %s .. %s", series[0].Month, series[11].Month)
	}
	for i := 1; i < len(series); i++ {
		if series[i-1].Month.Next() != series[i].Month {
			t.Errorf("gap in series at %d: %s then %s", i, series[i-1].Month, series[i].Month)
		}
	}
	byMonth := make(map[core.Month]MonthTotal)
	for _, mt := range series {
		byMonth[mt.Month] = mt
	}
	if byMonth["2026-03"].Total != 100 || byMonth["2026-01"].Total != 50 || byMonth["2025-04"].Total != 25 {
		t.Errorf("month totals wrong: %+v", byMonth)
	}
	if byMonth["2025-12"].Total != 0 || byMonth["2025-12"].Count != 0 {
		t.Errorf("empty month must be a zero entry, got %+v", byMonth["2025-12"])
	}
}

func TestCategoryBreakdown(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedExpense(t, st, core.CategoryFood, 60, time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local))
	seedExpense(t, st, core.CategoryFood, 40, time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))
	big := seedExpense(t, st, core.CategoryTravel, 300, time.Date(2026, 3, 3, 9, 0, 0, 0, time.Local))

	got, err := svc.CategoryBreakdown(ctx, owner, "2026-03")
	if err != nil {
		t.Fatalf("CategoryBreakdown: %v", err)
	}
	if got.TotalSpent != 400 {
		t.Errorf("totalSpent = %.2f, want 400", got.TotalSpent)
	}
	if len(got.CategoryData) != 2 {
		t.Fatalf("rows = %d, want 2", len(got.CategoryData))
	}
	travel := got.CategoryData[0]
	if travel.Category != core.CategoryTravel {
		t.Fatalf("rows must be sorted by total desc, got %s first", travel.Category)
	}
	if travel.Percentage != 75 {
		t.Errorf("travel percentage = %d, want 75", travel.Percentage)
	}
	if travel.TopExpense.ID != big.ID {
		t.Errorf("topExpense = %s, want %s", travel.TopExpense.ID, big.ID)
	}
	food := got.CategoryData[1]
	if food.Count != 2 || food.Average != 50 || food.Percentage != 25 {
		t.Errorf("food row = %+v", food)
	}
}

func TestComparison(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedExpense(t, st, core.CategoryFood, 300, time.Date(2026, 3, 5, 9, 0, 0, 0, time.Local))
	seedExpense(t, st, core.CategoryFood, 200, time.Date(2026, 2, 5, 9, 0, 0, 0, time.Local))

	got, err := svc.Comparison(ctx, owner)
	if err != nil {
		t.Fatalf("Comparison: %v", err)
	}
	if got.CurrentMonth.Month != "2026-03" || got.PreviousMonth.Month != "2026-02" {
		t.Errorf("months = %s vs %s", got.CurrentMonth.Month, got.PreviousMonth.Month)
	}
	if got.Comparison.Difference != 100 {
		t.Errorf("difference = %.2f, want 100", got.Comparison.Difference)
	}
	if got.Comparison.PercentageChange != 50 {
		t.Errorf("percentageChange = %.2f, want 50", got.Comparison.PercentageChange)
	}
	if got.Comparison.Trend != TrendIncreased {
		t.Errorf("trend = %s", got.Comparison.Trend)
	}
}

func TestForecastCurrentMonth(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	// 150 over 15 elapsed days of a 31-day month
	seedExpense(t, st, core.CategoryFood, 150, time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local))

	got, err := svc.Forecast(ctx, owner, "2026-03")
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if got.Current.DaysElapsed != 15 {
		t.Errorf("daysElapsed = %d, want 15", got.Current.DaysElapsed)
	}
	if got.Current.AvgPerDay != 10 {
		t.Errorf("avgPerDay = %.2f, want 10", got.Current.AvgPerDay)
	}
	if got.Forecast.ProjectedTotal != 310 {
		t.Errorf("projectedTotal = %.2f, want 310", got.Forecast.ProjectedTotal)
	}
	if got.Forecast.RemainingDays != 16 {
		t.Errorf("remainingDays = %d, want 16", got.Forecast.RemainingDays)
	}
	if got.Forecast.ProjectedRemaining != 160 {
		t.Errorf("projectedRemaining = %.2f, want 160", got.Forecast.ProjectedRemaining)
	}
	if len(got.CategoryProjection) != 1 || got.CategoryProjection[0].ProjectedTotal != 310 {
		t.Errorf("categoryProjection = %+v", got.CategoryProjection)
	}
}

func TestForecastPastMonthEqualsActual(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedExpense(t, st, core.CategoryBills, 280, time.Date(2026, 1, 12, 9, 0, 0, 0, time.Local))

	got, err := svc.Forecast(ctx, owner, "2026-01")
	if err != nil {
		t.Fatal(err)
	}
	if got.Forecast.ProjectedTotal != got.Current.Spent {
		t.Errorf("past month must project its own total: %.2f vs %.2f",
			got.Forecast.ProjectedTotal, got.Current.Spent)
	}
	if got.Forecast.RemainingDays != 0 {
		t.Errorf("remainingDays = %d, want 0", got.Forecast.RemainingDays)
	}
}

func TestAnomaliesWindow(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	for i := 0; i < 5; i++ {
		seedExpense(t, st, core.CategoryFood, 20, base.AddDate(0, 0, i))
	}
	spike := seedExpense(t, st, core.CategoryFood, 400, base.AddDate(0, 0, 6))
	// outside the 3-month window, must be invisible
	seedExpense(t, st, core.CategoryFood, 5000, testNow.AddDate(0, -4, 0))

	got, err := svc.Anomalies(ctx, owner)
	if err != nil {
		t.Fatalf("Anomalies: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("anomalies = %d, want 1", len(got))
	}
	if got[0].Title != spike.Title || got[0].Amount != 400 {
		t.Errorf("anomaly = %+v", got[0])
	}
	if got[0].Severity != SeverityHigh {
		t.Errorf("severity = %s, want %s", got[0].Severity, SeverityHigh)
	}
}

func TestCategoryInsights(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	seedExpense(t, st, core.CategoryShopping, 100, time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local))
	seedExpense(t, st, core.CategoryShopping, 50, time.Date(2026, 2, 10, 9, 0, 0, 0, time.Local))
	seedExpense(t, st, core.CategoryShopping, 150, time.Date(2026, 1, 20, 9, 0, 0, 0, time.Local))
	seedBudget(t, st, core.CategoryShopping, "2026-03", 500, 80)

	got, err := svc.CategoryInsights(ctx, owner, core.CategoryShopping)
	if err != nil {
		t.Fatalf("CategoryInsights: %v", err)
	}
	if got.Total != 300 || got.Count != 3 || got.Average != 100 {
		t.Errorf("stats = %+v", got)
	}
	if got.Max != 150 || got.Min != 50 {
		t.Errorf("max/min = %.0f/%.0f", got.Max, got.Min)
	}
	if got.Budget == nil {
		t.Fatal("expected budget status for the current month")
	}
	if got.Budget.Remaining != 200 || got.Budget.Percentage != 60 {
		t.Errorf("budget = %+v", got.Budget)
	}
	if len(got.RecentExpenses) != 3 {
		t.Fatalf("recentExpenses = %d, want 3", len(got.RecentExpenses))
	}
	if got.RecentExpenses[0].Amount != 100 {
		t.Errorf("recent expenses must be newest first, got %.2f first", got.RecentExpenses[0].Amount)
	}
}

func TestCategoryInsightsEmptyCategory(t *testing.T) {
	svc, _ := newTestService(t)
	got, err := svc.CategoryInsights(context.Background(), owner, core.CategoryEducation)
	if err != nil {
		t.Fatalf("empty category must not be an error: %v", err)
	}
	if got.Message == "" || got.Count != 0 {
		t.Errorf("got %+v, want empty result with message", got)
	}
}

func TestCategoryInsightsUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CategoryInsights(context.Background(), owner, core.Category("crypto"))
	if err == nil {
		t.Fatal("unknown category must be rejected")
	}
}
