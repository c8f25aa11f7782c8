package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"spendsight/internal/core"
	"spendsight/internal/store"
)

// Window lengths used by the detail endpoints.
const (
	anomalyWindowMonths  = 3
	categoryWindowMonths = 3
	anomalyLimit         = 10
	recentExpenseLimit   = 5
	topCategoryLimit     = 5
	trendMonths          = 12
)

// Service answers the analytics operations. It owns no state beyond its
// store handles and a clock; every method computes fresh from one snapshot
// of queried records, so two calls with unchanged data return identical
// results.
type Service struct {
	expenses store.ExpenseReader
	budgets  store.BudgetReader
	now      func() time.Time
}

func NewService(expenses store.ExpenseReader, budgets store.BudgetReader) *Service {
	return &Service{expenses: expenses, budgets: budgets, now: time.Now}
}

// WithClock overrides the service clock. Tests use this to pin "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) monthExpenses(ctx context.Context, owner string, month core.Month) ([]core.Expense, error) {
	start, end := month.Range()
	return s.expenses.ListExpenses(ctx, store.ExpenseFilter{Owner: owner, From: start, To: end})
}

// SummaryTotals are the headline figures of a monthly summary.
type SummaryTotals struct {
	TotalSpent      float64 `json:"totalSpent"`
	TotalBudget     float64 `json:"totalBudget"`
	AveragePerDay   float64 `json:"averagePerDay"`
	TotalExpenses   int     `json:"totalExpenses"`
	DaysElapsed     int     `json:"daysElapsed"`
	DaysInMonth     int     `json:"daysInMonth"`
	ProjectForMonth float64 `json:"projectForMonth"`
}

// MonthlySummary is the full monthly analytics view.
type MonthlySummary struct {
	Month            core.Month                 `json:"month"`
	Summary          SummaryTotals              `json:"summary"`
	CategorySpending map[core.Category]float64  `json:"categorySpending"`
	BudgetComparison []BudgetStatus             `json:"budgetComparison"`
	TopCategories    []CategoryTotal            `json:"topCategories"`
}

// MonthlySummary aggregates one month of expenses against the month's
// active budgets.
func (s *Service) MonthlySummary(ctx context.Context, owner string, month core.Month) (*MonthlySummary, error) {
	expenses, err := s.monthExpenses(ctx, owner, month)
	if err != nil {
		return nil, fmt.Errorf("list month expenses: %w", err)
	}
	budgets, err := s.budgets.ListBudgets(ctx, owner, month, true)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	spending := CategoryTotals(expenses)
	totalSpent := Total(expenses)
	daysInMonth := month.Days()
	elapsed := month.ElapsedDays(s.now())

	summary := SummaryTotals{
		TotalSpent:    core.Round2(totalSpent),
		TotalExpenses: len(expenses),
		DaysElapsed:   elapsed,
		DaysInMonth:   daysInMonth,
	}
	if elapsed > 0 {
		summary.AveragePerDay = core.Round2(totalSpent / float64(elapsed))
		summary.ProjectForMonth = core.Round2(totalSpent / float64(elapsed) * float64(daysInMonth))
	}

	comparison := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		summary.TotalBudget += b.Limit
		comparison = append(comparison, EvaluateBudget(b, spending[b.Category]))
	}

	rounded := make(map[core.Category]float64, len(spending))
	for cat, amt := range spending {
		rounded[cat] = core.Round2(amt)
	}
	top := TopCategories(expenses, topCategoryLimit)
	for i := range top {
		top[i].Amount = core.Round2(top[i].Amount)
	}

	return &MonthlySummary{
		Month:            month,
		Summary:          summary,
		CategorySpending: rounded,
		BudgetComparison: comparison,
		TopCategories:    top,
	}, nil
}

// Trends returns the last 12 months as a chronological series. The month
// windows are fetched concurrently but combined by input index, so the
// output order never depends on which query returns first.
func (s *Service) Trends(ctx context.Context, owner string) ([]MonthTotal, error) {
	months := core.CurrentMonth(s.now()).Preceding(trendMonths)
	series := make([]MonthTotal, len(months))

	g, gctx := errgroup.WithContext(ctx)
	for i, month := range months {
		g.Go(func() error {
			expenses, err := s.monthExpenses(gctx, owner, month)
			if err != nil {
				return fmt.Errorf("month %s: %w", month, err)
			}
			series[i] = SummarizeMonth(month, expenses)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return series, nil
}

// ExpenseRef is a compact expense reference embedded in breakdown rows.
type ExpenseRef struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// CategoryRow is one category's share of a monthly breakdown.
type CategoryRow struct {
	Category   core.Category `json:"category"`
	Total      float64       `json:"total"`
	Count      int           `json:"count"`
	Percentage int           `json:"percentage"`
	Average    float64       `json:"average"`
	TopExpense ExpenseRef    `json:"topExpense"`
}

// CategoryBreakdownResult is the per-category view for one month.
type CategoryBreakdownResult struct {
	Month        core.Month    `json:"month"`
	TotalSpent   float64       `json:"totalSpent"`
	CategoryData []CategoryRow `json:"categoryData"`
}

// CategoryBreakdown splits one month's spending per category, including
// each category's share of the total and its single largest expense.
func (s *Service) CategoryBreakdown(ctx context.Context, owner string, month core.Month) (*CategoryBreakdownResult, error) {
	expenses, err := s.monthExpenses(ctx, owner, month)
	if err != nil {
		return nil, fmt.Errorf("list month expenses: %w", err)
	}

	totalSpent := Total(expenses)
	byCat := make(map[core.Category][]core.Expense)
	order := make([]core.Category, 0)
	for _, e := range expenses {
		if _, ok := byCat[e.Category]; !ok {
			order = append(order, e.Category)
		}
		byCat[e.Category] = append(byCat[e.Category], e)
	}

	rows := make([]CategoryRow, 0, len(order))
	for _, cat := range order {
		group := byCat[cat]
		var sum float64
		top := group[0]
		for _, e := range group {
			sum += e.Amount
			if e.Amount > top.Amount {
				top = e
			}
		}
		row := CategoryRow{
			Category: cat,
			Total:    core.Round2(sum),
			Count:    len(group),
			Average:  core.Round2(sum / float64(len(group))),
			TopExpense: ExpenseRef{
				ID: top.ID, Title: top.Title, Amount: core.Round2(top.Amount), Date: top.Date,
			},
		}
		if totalSpent > 0 {
			row.Percentage = core.RoundPct(sum / totalSpent * 100)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })

	return &CategoryBreakdownResult{
		Month:        month,
		TotalSpent:   core.Round2(totalSpent),
		CategoryData: rows,
	}, nil
}

// ComparisonResult contrasts the current month with the previous one.
type ComparisonResult struct {
	CurrentMonth  MonthTotal      `json:"currentMonth"`
	PreviousMonth MonthTotal      `json:"previousMonth"`
	Comparison    ComparisonDelta `json:"comparison"`
}

// Comparison fetches the current and previous month windows concurrently
// and reports their delta.
func (s *Service) Comparison(ctx context.Context, owner string) (*ComparisonResult, error) {
	current := core.CurrentMonth(s.now())
	previous := current.Prev()

	var curExp, prevExp []core.Expense
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		curExp, err = s.monthExpenses(gctx, owner, current)
		return err
	})
	g.Go(func() error {
		var err error
		prevExp, err = s.monthExpenses(gctx, owner, previous)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list comparison windows: %w", err)
	}

	cur := SummarizeMonth(current, curExp)
	prev := SummarizeMonth(previous, prevExp)
	return &ComparisonResult{
		CurrentMonth:  cur,
		PreviousMonth: prev,
		Comparison:    MonthOverMonth(cur, prev),
	}, nil
}

// CategoryProjection extrapolates one category's month total.
type CategoryProjection struct {
	Category       core.Category `json:"category"`
	CurrentSpent   float64       `json:"currentSpent"`
	ProjectedTotal float64       `json:"projectedTotal"`
}

// ForecastCurrent describes the month-to-date spend state.
type ForecastCurrent struct {
	Spent       float64 `json:"spent"`
	DaysElapsed int     `json:"daysElapsed"`
	AvgPerDay   float64 `json:"avgPerDay"`
}

// ForecastFigures is the projected remainder of the month.
type ForecastFigures struct {
	ProjectedTotal     float64 `json:"projectedTotal"`
	RemainingDays      int     `json:"remainingDays"`
	ProjectedRemaining float64 `json:"projectedRemaining"`
}

// ForecastResult is the linear month forecast.
type ForecastResult struct {
	Month              core.Month           `json:"month"`
	Current            ForecastCurrent      `json:"current"`
	Forecast           ForecastFigures      `json:"forecast"`
	CategoryProjection []CategoryProjection `json:"categoryProjection"`
}

// Forecast projects the month total from the spend rate over the elapsed
// days, overall and per category.
func (s *Service) Forecast(ctx context.Context, owner string, month core.Month) (*ForecastResult, error) {
	expenses, err := s.monthExpenses(ctx, owner, month)
	if err != nil {
		return nil, fmt.Errorf("list month expenses: %w", err)
	}

	daysInMonth := month.Days()
	elapsed := month.ElapsedDays(s.now())
	total := Total(expenses)
	p := Project(total, elapsed, daysInMonth)

	projections := make([]CategoryProjection, 0)
	for _, ct := range TopCategories(expenses, 0) {
		cp := Project(ct.Amount, elapsed, daysInMonth)
		projections = append(projections, CategoryProjection{
			Category:       ct.Category,
			CurrentSpent:   core.Round2(ct.Amount),
			ProjectedTotal: core.Round2(cp.ProjectedTotal),
		})
	}

	return &ForecastResult{
		Month: month,
		Current: ForecastCurrent{
			Spent:       core.Round2(total),
			DaysElapsed: elapsed,
			AvgPerDay:   core.Round2(p.AvgPerDay),
		},
		Forecast: ForecastFigures{
			ProjectedTotal:     core.Round2(p.ProjectedTotal),
			RemainingDays:      p.RemainingDays,
			ProjectedRemaining: core.Round2(p.ProjectedRemaining),
		},
		CategoryProjection: projections,
	}, nil
}

// AnomalyRow is one reported anomaly.
type AnomalyRow struct {
	Date           time.Time     `json:"date"`
	Category       core.Category `json:"category"`
	Amount         float64       `json:"amount"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	AvgForCategory float64       `json:"avgForCategory"`
	ExcessAmount   float64       `json:"excessAmount"`
	Severity       string        `json:"severity"`
}

// Anomalies detects statistical outliers over a trailing 3-month window,
// newest first, capped to 10.
func (s *Service) Anomalies(ctx context.Context, owner string) ([]AnomalyRow, error) {
	now := s.now()
	expenses, err := s.expenses.ListExpenses(ctx, store.ExpenseFilter{
		Owner: owner,
		From:  now.AddDate(0, -anomalyWindowMonths, 0),
		To:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("list anomaly window: %w", err)
	}

	rows := make([]AnomalyRow, 0)
	for _, a := range DetectAnomalies(expenses, anomalyLimit) {
		rows = append(rows, AnomalyRow{
			Date:           a.Expense.Date,
			Category:       a.Expense.Category,
			Amount:         core.Round2(a.Expense.Amount),
			Title:          a.Expense.Title,
			Description:    a.Expense.Description,
			AvgForCategory: core.Round2(a.CategoryMean),
			ExcessAmount:   core.Round2(a.Excess),
			Severity:       a.Severity,
		})
	}
	return rows, nil
}

// CategoryBudgetStatus is the budget slice of a category insight.
type CategoryBudgetStatus struct {
	Limit      float64 `json:"limit"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// CategoryInsight is the 3-month detail view of one category.
type CategoryInsight struct {
	Category       core.Category         `json:"category"`
	Total          float64               `json:"total"`
	Average        float64               `json:"average"`
	Max            float64               `json:"max"`
	Min            float64               `json:"min"`
	Count          int                   `json:"count"`
	Budget         *CategoryBudgetStatus `json:"budget,omitempty"`
	RecentExpenses []ExpenseRef          `json:"recentExpenses"`
	Message        string                `json:"message,omitempty"`
}

// CategoryInsights reports 3-month statistics, budget status, and recent
// expenses for one category. A known category with no expenses yields an
// empty result with an explanatory message, not an error.
func (s *Service) CategoryInsights(ctx context.Context, owner string, category core.Category) (*CategoryInsight, error) {
	if !category.Valid() {
		return nil, core.ErrInvalidCategory
	}

	now := s.now()
	expenses, err := s.expenses.ListExpenses(ctx, store.ExpenseFilter{
		Owner:    owner,
		From:     now.AddDate(0, -categoryWindowMonths, 0),
		To:       now,
		Category: category,
	})
	if err != nil {
		return nil, fmt.Errorf("list category window: %w", err)
	}
	if len(expenses) == 0 {
		return &CategoryInsight{Category: category, Message: "No expenses in this category"}, nil
	}

	st := CategoryStats(expenses)[category]
	insight := &CategoryInsight{
		Category: category,
		Total:    core.Round2(st.Total),
		Average:  core.Round2(st.Mean),
		Max:      core.Round2(st.Max),
		Min:      core.Round2(st.Min),
		Count:    st.Count,
	}

	budgets, err := s.budgets.ListBudgets(ctx, owner, core.CurrentMonth(now), true)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	for _, b := range budgets {
		if b.Category != category {
			continue
		}
		insight.Budget = &CategoryBudgetStatus{
			Limit:      b.Limit,
			Spent:      core.Round2(st.Total),
			Remaining:  core.Round2(b.Limit - st.Total),
			Percentage: core.Round2(st.Total / b.Limit * 100),
		}
		break
	}

	// Store contract: expenses arrive date-descending.
	for i, e := range expenses {
		if i == recentExpenseLimit {
			break
		}
		insight.RecentExpenses = append(insight.RecentExpenses, ExpenseRef{
			ID: e.ID, Title: e.Title, Amount: core.Round2(e.Amount), Date: e.Date,
		})
	}
	return insight, nil
}
