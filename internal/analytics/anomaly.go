package analytics

import (
	"sort"

	"spendsight/internal/core"
)

// Anomaly severity tiers.
const (
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Anomaly references one expense that exceeded its category's statistical
// norm within the evaluation window, together with the statistics in force
// when it was flagged. Anomalies are ephemeral: they always reflect the
// current window and are never persisted.
type Anomaly struct {
	Expense      core.Expense
	CategoryMean float64
	StdDev       float64
	Excess       float64 // amount above the category mean
	Severity     string
}

// DetectAnomalies flags expenses whose amount exceeds their category's
// mean + 1.5 population standard deviations within the given window.
// Severity is "high" above mean + 2 stddev, "medium" otherwise. Results
// are sorted by expense date descending and capped to limit (0 = no cap).
//
// A category with a single expense has stddev 0, so its threshold equals
// that expense's own amount and the strict > comparison never flags it:
// one data point cannot be statistically anomalous.
func DetectAnomalies(expenses []core.Expense, limit int) []Anomaly {
	stats := CategoryStats(expenses)

	var anomalies []Anomaly
	for _, e := range expenses {
		st := stats[e.Category]
		threshold := st.Mean + 1.5*st.StdDev
		if e.Amount <= threshold {
			continue
		}
		severity := SeverityMedium
		if e.Amount > st.Mean+2*st.StdDev {
			severity = SeverityHigh
		}
		anomalies = append(anomalies, Anomaly{
			Expense:      e,
			CategoryMean: st.Mean,
			StdDev:       st.StdDev,
			Excess:       e.Amount - st.Mean,
			Severity:     severity,
		})
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].Expense.Date.After(anomalies[j].Expense.Date)
	})
	if limit > 0 && len(anomalies) > limit {
		anomalies = anomalies[:limit]
	}
	return anomalies
}
