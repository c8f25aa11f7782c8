package analytics

import (
	"math"
	"testing"
	"time"

	"spendsight/internal/core"
)

func exp(category core.Category, amount float64, date time.Time) core.Expense {
	return core.Expense{
		Owner:    "tester",
		Title:    "test expense",
		Amount:   amount,
		Category: category,
		Date:     date,
	}
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 12, 0, 0, 0, time.UTC)
}

func TestTotalMatchesCategoryTotals(t *testing.T) {
	expenses := []core.Expense{
		exp(core.CategoryFood, 12.35, day(1)),
		exp(core.CategoryFood, 7.65, day(2)),
		exp(core.CategoryTravel, 300.10, day(3)),
		exp(core.CategoryBills, 89.99, day(4)),
	}

	var byCat float64
	for _, amt := range CategoryTotals(expenses) {
		byCat += amt
	}
	if diff := math.Abs(byCat - Total(expenses)); diff > 1e-9 {
		t.Errorf("category totals sum %.10f differs from total %.10f", byCat, Total(expenses))
	}
}

func TestTopCategories(t *testing.T) {
	expenses := []core.Expense{
		exp(core.CategoryFood, 50, day(1)),
		exp(core.CategoryBills, 80, day(2)),
		exp(core.CategoryFood, 40, day(3)),
		exp(core.CategoryTravel, 90, day(4)),
		exp(core.CategoryShopping, 10, day(5)),
	}

	top := TopCategories(expenses, 3)
	want := []core.Category{core.CategoryFood, core.CategoryTravel, core.CategoryBills}
	if len(top) != len(want) {
		t.Fatalf("got %d categories, want %d", len(top), len(want))
	}
	for i, cat := range want {
		if top[i].Category != cat {
			t.Errorf("rank %d: got %s, want %s", i, top[i].Category, cat)
		}
	}
}

func TestTopCategoriesTieKeepsFirstSeen(t *testing.T) {
	expenses := []core.Expense{
		exp(core.CategoryBills, 50, day(1)),
		exp(core.CategoryFood, 50, day(2)),
	}
	top := TopCategories(expenses, 0)
	if top[0].Category != core.CategoryBills {
		t.Errorf("tie should keep first-seen order, got %s first", top[0].Category)
	}
}

func TestDetectAnomaliesLowVariance(t *testing.T) {
	// High spread: mean 373.33, stddev ~372.45, threshold ~932. Even the
	// 900 expense stays under it.
	expenses := []core.Expense{
		exp(core.CategoryTravel, 100, day(1)),
		exp(core.CategoryTravel, 120, day(2)),
		exp(core.CategoryTravel, 900, day(3)),
	}
	if got := DetectAnomalies(expenses, 0); len(got) != 0 {
		t.Errorf("expected no anomalies, got %d", len(got))
	}
}

func TestDetectAnomaliesSpike(t *testing.T) {
	expenses := []core.Expense{
		exp(core.CategoryFood, 50, day(1)),
		exp(core.CategoryFood, 55, day(2)),
		exp(core.CategoryFood, 45, day(3)),
		exp(core.CategoryFood, 500, day(4)),
	}
	got := DetectAnomalies(expenses, 0)
	if len(got) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(got))
	}
	a := got[0]
	if a.Expense.Amount != 500 {
		t.Errorf("flagged wrong expense: %.2f", a.Expense.Amount)
	}
	// mean 162.5, stddev ~194.9: 500 clears 1.5 stddev but not 2.
	if a.Severity != SeverityMedium {
		t.Errorf("severity = %s, want %s", a.Severity, SeverityMedium)
	}
	if a.Excess <= 0 {
		t.Errorf("excess must be positive, got %.2f", a.Excess)
	}
}

func TestDetectAnomaliesSingleExpenseNeverFlagged(t *testing.T) {
	expenses := []core.Expense{exp(core.CategoryHealthcare, 5000, day(1))}
	if got := DetectAnomalies(expenses, 0); len(got) != 0 {
		t.Errorf("single expense in a category must never be flagged, got %d", len(got))
	}
}

func TestDetectAnomaliesOrderAndCap(t *testing.T) {
	expenses := []core.Expense{
		exp(core.CategoryFood, 10, day(1)),
		exp(core.CategoryFood, 10, day(2)),
		exp(core.CategoryFood, 10, day(3)),
		exp(core.CategoryFood, 10, day(4)),
		exp(core.CategoryFood, 200, day(5)),
		exp(core.CategoryFood, 210, day(9)),
	}
	got := DetectAnomalies(expenses, 1)
	if len(got) != 1 {
		t.Fatalf("cap not applied: got %d", len(got))
	}
	if !got[0].Expense.Date.Equal(day(9)) {
		t.Errorf("expected newest anomaly first, got date %s", got[0].Expense.Date)
	}
}

func TestEvaluateBudgetAlertAtThreshold(t *testing.T) {
	b := core.Budget{
		Category:       core.CategoryEntertainment,
		Limit:          200,
		AlertThreshold: 80,
	}
	st := EvaluateBudget(b, 170)
	if st.PercentageUsed != 85 {
		t.Errorf("percentageUsed = %d, want 85", st.PercentageUsed)
	}
	if st.IsExceeded {
		t.Error("170 of 200 must not be exceeded")
	}
	if !st.AlertTriggered {
		t.Error("85%% of an 80%% threshold must trigger the alert")
	}
	if st.Remaining != 30 {
		t.Errorf("remaining = %.2f, want 30", st.Remaining)
	}
}

func TestEvaluateBudgetUnroundedThreshold(t *testing.T) {
	// 79.6% rounds to 80 for display but must not trigger an 80% alert.
	b := core.Budget{Category: core.CategoryFood, Limit: 1000, AlertThreshold: 80}
	st := EvaluateBudget(b, 796)
	if st.PercentageUsed != 80 {
		t.Errorf("display percentage = %d, want 80", st.PercentageUsed)
	}
	if st.AlertTriggered {
		t.Error("alert must compare the unrounded percentage")
	}
}

func TestMonthOverMonthZeroPrevious(t *testing.T) {
	cur := MonthTotal{Month: "2026-03", Total: 150}
	prev := MonthTotal{Month: "2026-02", Total: 0}
	d := MonthOverMonth(cur, prev)
	if d.PercentageChange != 0 {
		t.Errorf("percentageChange = %.2f, want 0 when previous total is 0", d.PercentageChange)
	}
	if d.Trend != TrendIncreased {
		t.Errorf("trend = %s, want %s", d.Trend, TrendIncreased)
	}
	if d.Difference != 150 {
		t.Errorf("difference = %.2f, want 150", d.Difference)
	}
}

func TestMonthOverMonthDirections(t *testing.T) {
	tests := []struct {
		name      string
		cur, prev float64
		trend     string
		pct       float64
	}{
		{"increase", 300, 200, TrendIncreased, 50},
		{"decrease", 100, 200, TrendDecreased, -50},
		{"same", 200, 200, TrendSame, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := MonthOverMonth(MonthTotal{Total: tt.cur}, MonthTotal{Total: tt.prev})
			if d.Trend != tt.trend {
				t.Errorf("trend = %s, want %s", d.Trend, tt.trend)
			}
			if d.PercentageChange != tt.pct {
				t.Errorf("pct = %.2f, want %.2f", d.PercentageChange, tt.pct)
			}
		})
	}
}

func TestProjectFullyElapsedMonth(t *testing.T) {
	p := Project(930, 31, 31)
	if p.ProjectedTotal != 930 {
		t.Errorf("a fully elapsed month must project its own total, got %.2f", p.ProjectedTotal)
	}
	if p.RemainingDays != 0 || p.ProjectedRemaining != 0 {
		t.Errorf("remaining = %d days / %.2f, want zero", p.RemainingDays, p.ProjectedRemaining)
	}
}

func TestProjectZeroElapsed(t *testing.T) {
	p := Project(0, 0, 30)
	if p.ProjectedTotal != 0 || p.AvgPerDay != 0 {
		t.Errorf("future month must project zero, got %+v", p)
	}
	if p.RemainingDays != 30 {
		t.Errorf("remainingDays = %d, want 30", p.RemainingDays)
	}
}

func TestProjectMidMonth(t *testing.T) {
	p := Project(150, 10, 30)
	if p.AvgPerDay != 15 {
		t.Errorf("avgPerDay = %.2f, want 15", p.AvgPerDay)
	}
	if p.ProjectedTotal != 450 {
		t.Errorf("projectedTotal = %.2f, want 450", p.ProjectedTotal)
	}
	if p.ProjectedRemaining != 300 {
		t.Errorf("projectedRemaining = %.2f, want 300", p.ProjectedRemaining)
	}
}

func TestCategoryStatsPopulationStdDev(t *testing.T) {
	expenses := []core.Expense{
		exp(core.CategoryFood, 10, day(1)),
		exp(core.CategoryFood, 20, day(2)),
		exp(core.CategoryFood, 30, day(3)),
	}
	st := CategoryStats(expenses)[core.CategoryFood]
	if st.Mean != 20 {
		t.Errorf("mean = %.2f, want 20", st.Mean)
	}
	// population stddev of {10,20,30} is sqrt(200/3)
	want := math.Sqrt(200.0 / 3.0)
	if math.Abs(st.StdDev-want) > 1e-9 {
		t.Errorf("stddev = %.6f, want %.6f", st.StdDev, want)
	}
	if st.Max != 30 || st.Min != 10 {
		t.Errorf("max/min = %.0f/%.0f, want 30/10", st.Max, st.Min)
	}
}
