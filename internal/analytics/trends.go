package analytics

import (
	"spendsight/internal/core"
)

// Trend direction labels for month-over-month comparisons.
const (
	TrendIncreased = "increased"
	TrendDecreased = "decreased"
	TrendSame      = "same"
)

// MonthTotal is one entry of a monthly series. Total and Average are
// rounded here because a MonthTotal is a presentation value.
type MonthTotal struct {
	Month   core.Month `json:"month"`
	Total   float64    `json:"total"`
	Count   int        `json:"count"`
	Average float64    `json:"average"`
}

// SummarizeMonth aggregates one month's window of expenses.
func SummarizeMonth(month core.Month, expenses []core.Expense) MonthTotal {
	total := Total(expenses)
	mt := MonthTotal{
		Month: month,
		Total: core.Round2(total),
		Count: len(expenses),
	}
	if mt.Count > 0 {
		mt.Average = core.Round2(total / float64(mt.Count))
	}
	return mt
}

// ComparisonDelta describes how the current month relates to the previous
// one. PercentageChange is 0 when the previous total is 0; spending from a
// standing start is reported as an increase without a meaningful percent.
type ComparisonDelta struct {
	Difference       float64 `json:"difference"`
	PercentageChange float64 `json:"percentageChange"`
	Trend            string  `json:"trend"`
}

// MonthOverMonth compares two month summaries.
func MonthOverMonth(current, previous MonthTotal) ComparisonDelta {
	diff := current.Total - previous.Total
	d := ComparisonDelta{
		Difference: core.Round2(diff),
		Trend:      TrendSame,
	}
	if previous.Total > 0 {
		d.PercentageChange = core.Round2(diff / previous.Total * 100)
	}
	switch {
	case diff > 0:
		d.Trend = TrendIncreased
	case diff < 0:
		d.Trend = TrendDecreased
	}
	return d
}

// Projection is the result of a linear day-rate extrapolation.
type Projection struct {
	AvgPerDay          float64
	ProjectedTotal     float64
	RemainingDays      int
	ProjectedRemaining float64
}

// Project extrapolates a month total linearly from the spend rate so far.
// elapsed = 0 yields a zero projection rather than dividing by zero. The
// model is deliberately naive (no seasonality or weekday weighting) so the
// forecast stays auditable: projectedTotal == currentTotal whenever the
// month is fully elapsed.
func Project(currentTotal float64, elapsed, daysInMonth int) Projection {
	var p Projection
	if elapsed <= 0 {
		p.RemainingDays = daysInMonth
		return p
	}
	avgPerDay := currentTotal / float64(elapsed)
	p.AvgPerDay = avgPerDay
	p.ProjectedTotal = avgPerDay * float64(daysInMonth)
	p.RemainingDays = daysInMonth - elapsed
	p.ProjectedRemaining = avgPerDay * float64(p.RemainingDays)
	return p
}
