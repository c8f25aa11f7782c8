package insights

import (
	"fmt"
	"strings"
)

// FallbackInsight derives the four narratives from the snapshot alone.
// Rule-based and deterministic: the same snapshot always yields the same
// text, which is what makes stored digests comparable over time.
func FallbackInsight(data *SpendingData) Insight {
	if data == nil {
		return Insight{
			Anomalies:       "No data available",
			Trends:          "Start logging expenses to see trends",
			Recommendations: "Log your daily expenses to get personalized recommendations",
			Savings:         "N/A",
		}
	}

	topName := "Unknown"
	var topAmount float64
	if len(data.TopCategories) > 0 {
		topName = string(data.TopCategories[0].Category)
		topAmount = data.TopCategories[0].Amount
	}

	var topTotal float64
	for _, ct := range data.TopCategories {
		topTotal += ct.Amount
	}
	var topShare float64
	if data.TotalSpending > 0 {
		topShare = topTotal / data.TotalSpending * 100
	}

	direction := "decreasing"
	if data.MonthlyTrend > 0 {
		direction = "increasing"
	}
	trendMag := data.MonthlyTrend
	if trendMag < 0 {
		trendMag = -trendMag
	}

	savings := topAmount * 0.10

	return Insight{
		Anomalies: anomalyNarrative(data),
		Trends: fmt.Sprintf(
			"Your spending is %s by %.1f%% month-over-month. You're averaging $%.2f/month over the last 6 months, with the current month at $%.2f.",
			direction, trendMag, data.AvgMonthlySpending, data.CurrentMonthSpending),
		Recommendations: fmt.Sprintf(
			"1) Focus on %s, your highest category at $%.2f. 2) Your top %d categories account for %.0f%% of spending; review them for savings opportunities. 3) Set budget alerts to control spending in %s. 4) Consider meal planning or cashback strategies based on your spending pattern.",
			topName, topAmount, len(data.TopCategories), topShare, topName),
		Savings: fmt.Sprintf(
			"Reducing %s by 10%% could save ~$%.2f/month (~$%.2f/year). Applied across your top categories, potential annual savings: $%.2f.",
			topName, savings, savings*12, savings*12*2.5),
	}
}

func anomalyNarrative(data *SpendingData) string {
	if len(data.Anomalies) == 0 {
		return "No significant spending anomalies detected. Your expenses are following normal patterns."
	}
	parts := make([]string, 0, len(data.Anomalies))
	for _, a := range data.Anomalies {
		parts = append(parts, fmt.Sprintf("%s ($%.2f)", a.Category, a.Amount))
	}
	var overPct float64
	if data.AvgMonthlySpending > 0 {
		overPct = data.Anomalies[0].Difference / data.AvgMonthlySpending * 100
	}
	return fmt.Sprintf("Found %d unusual expense(s): %s. These are %.0f%% higher than your category average.",
		len(data.Anomalies), strings.Join(parts, ", "), overPct)
}
