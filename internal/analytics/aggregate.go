// Package analytics computes aggregate views over expense records: category
// totals and statistics, monthly series, month-over-month comparisons,
// linear forecasts, anomaly detection, and budget evaluation. Every function
// here is pure with respect to its input slice; nothing is mutated or
// retained across calls.
package analytics

import (
	"math"
	"sort"

	"spendsight/internal/core"
)

// CategoryTotal pairs a category with its summed spend.
type CategoryTotal struct {
	Category core.Category `json:"category"`
	Amount   float64       `json:"amount"`
}

// CategoryStat holds per-category statistics over one window of expenses.
// StdDev is the population standard deviation (divisor = count): the window
// is treated as the whole population of interest, not a sample.
type CategoryStat struct {
	Total  float64
	Count  int
	Mean   float64
	StdDev float64
	Max    float64
	Min    float64
}

// Total sums all expense amounts at full precision.
func Total(expenses []core.Expense) float64 {
	var sum float64
	for _, e := range expenses {
		sum += e.Amount
	}
	return sum
}

// CategoryTotals sums amounts grouped by category.
func CategoryTotals(expenses []core.Expense) map[core.Category]float64 {
	totals := make(map[core.Category]float64)
	for _, e := range expenses {
		totals[e.Category] += e.Amount
	}
	return totals
}

// TopCategories ranks categories by total spend, descending, truncated to n.
// Ties keep first-seen order (stable sort over insertion order).
func TopCategories(expenses []core.Expense, n int) []CategoryTotal {
	totals := make(map[core.Category]int) // category -> index into ranked
	ranked := make([]CategoryTotal, 0)
	for _, e := range expenses {
		if i, ok := totals[e.Category]; ok {
			ranked[i].Amount += e.Amount
			continue
		}
		totals[e.Category] = len(ranked)
		ranked = append(ranked, CategoryTotal{Category: e.Category, Amount: e.Amount})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Amount > ranked[j].Amount })
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// CategoryStats computes total, count, mean, population standard deviation,
// and min/max per category. An empty input yields an empty map; no category
// ever divides by zero because only seen categories get entries.
func CategoryStats(expenses []core.Expense) map[core.Category]CategoryStat {
	amounts := make(map[core.Category][]float64)
	for _, e := range expenses {
		amounts[e.Category] = append(amounts[e.Category], e.Amount)
	}

	stats := make(map[core.Category]CategoryStat, len(amounts))
	for cat, vals := range amounts {
		var sum float64
		max, min := vals[0], vals[0]
		for _, v := range vals {
			sum += v
			if v > max {
				max = v
			}
			if v < min {
				min = v
			}
		}
		mean := sum / float64(len(vals))
		var variance float64
		for _, v := range vals {
			variance += (v - mean) * (v - mean)
		}
		variance /= float64(len(vals))
		stats[cat] = CategoryStat{
			Total:  sum,
			Count:  len(vals),
			Mean:   mean,
			StdDev: math.Sqrt(variance),
			Max:    max,
			Min:    min,
		}
	}
	return stats
}
