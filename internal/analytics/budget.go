package analytics

import (
	"spendsight/internal/core"
)

// BudgetStatus joins one budget to the aggregated spend for the same
// (owner, category, month). PercentageUsed is rounded for display, but the
// alert comparison uses the unrounded percentage so a budget at exactly its
// threshold always fires.
type BudgetStatus struct {
	Category       core.Category `json:"category"`
	Limit          float64       `json:"limit"`
	Spent          float64       `json:"spent"`
	Remaining      float64       `json:"remaining"`
	PercentageUsed int           `json:"percentageUsed"`
	IsExceeded     bool          `json:"isExceeded"`
	AlertTriggered bool          `json:"alertTriggered"`
}

// EvaluateBudget computes remaining/exceeded/alert state for one budget.
// The data model guarantees limit > 0; callers must pass the spend for the
// budget's own category and month.
func EvaluateBudget(b core.Budget, spent float64) BudgetStatus {
	pct := spent / b.Limit * 100
	return BudgetStatus{
		Category:       b.Category,
		Limit:          b.Limit,
		Spent:          core.Round2(spent),
		Remaining:      core.Round2(b.Limit - spent),
		PercentageUsed: core.RoundPct(pct),
		IsExceeded:     spent > b.Limit,
		AlertTriggered: pct >= float64(b.AlertThreshold),
	}
}
