package insights

import (
	"fmt"
	"strings"
)

// InsightsPrompt renders the spending snapshot into an instruction for the
// text-generation collaborator. Every figure comes from the snapshot so the
// collaborator has nothing to invent.
func InsightsPrompt(data *SpendingData) string {
	if data == nil {
		return "The user has no expense data available. Encourage them to start logging expenses."
	}

	var b strings.Builder
	b.WriteString("You are a financial advisor. Analyze this spending data and provide insights based on the real numbers.\n\n")
	writeDataSection(&b, data)

	b.WriteString("\nINSTRUCTIONS:\n")
	b.WriteString("1. Provide specific numbers from this data, not generic advice\n")
	b.WriteString("2. Reference actual amounts, percentages, and dates\n")
	b.WriteString("3. Give 4 actionable insights based on this user's data\n")
	b.WriteString("4. Format the response as a valid JSON object with keys: anomalies, trends, recommendations, savings\n")
	return b.String()
}

// ChatPrompt renders the snapshot plus the user's question.
func ChatPrompt(data *SpendingData, question string) string {
	var b strings.Builder
	b.WriteString("You are a financial advisor. Answer the user's question using only their actual spending data below. ")
	b.WriteString("Provide specific numbers and percentages from the data, not generic advice.\n\n")
	if data == nil {
		b.WriteString("The user has no expense data in the last 6 months.\n")
	} else {
		writeDataSection(&b, data)
	}
	fmt.Fprintf(&b, "\nUser question: %q\n\n", question)
	b.WriteString("Answer in 2-3 sentences, citing specific dollar amounts from the data. ")
	b.WriteString("If the question is about something not in the data, say you need more information.")
	return b.String()
}

func writeDataSection(b *strings.Builder, data *SpendingData) {
	direction := "DECREASING"
	if data.MonthlyTrend > 0 {
		direction = "INCREASING"
	}
	b.WriteString("SPENDING DATA (last 6 months):\n")
	fmt.Fprintf(b, "- Total spending: $%.2f\n", data.TotalSpending)
	fmt.Fprintf(b, "- Average monthly: $%.2f\n", data.AvgMonthlySpending)
	fmt.Fprintf(b, "- Current month: $%.2f\n", data.CurrentMonthSpending)
	fmt.Fprintf(b, "- Monthly trend: %.2f%% (%s)\n", data.MonthlyTrend, direction)
	fmt.Fprintf(b, "- Transactions: %d\n", data.ExpenseCount)

	b.WriteString("\nCATEGORY BREAKDOWN (sorted by amount):\n")
	for i, ct := range data.TopCategories {
		pct := 0.0
		if data.TotalSpending > 0 {
			pct = ct.Amount / data.TotalSpending * 100
		}
		fmt.Fprintf(b, "%d. %s: $%.2f (%.1f%% of total, ~$%.2f/month)\n",
			i+1, ct.Category, ct.Amount, pct, ct.Amount/windowMonths)
	}

	b.WriteString("\nUNUSUAL EXPENSES:\n")
	if len(data.Anomalies) == 0 {
		b.WriteString("- None detected. Spending is consistent.\n")
	}
	for _, a := range data.Anomalies {
		fmt.Fprintf(b, "- %s: $%.2f on %s (%s), $%.2f above the category average\n",
			a.Category, a.Amount, a.Date.Format("2006-01-02"), a.Title, a.Difference)
	}

	b.WriteString("\nBUDGETS:\n")
	if len(data.Budgets) == 0 {
		b.WriteString("- No budgets set\n")
	}
	for _, bd := range data.Budgets {
		spent := data.CategorySpending[bd.Category]
		pct := spent / bd.Limit * 100
		status := "OK"
		if pct > 100 {
			status = "OVER"
		}
		fmt.Fprintf(b, "- %s: $%.2f spent / $%.2f limit (%.0f%%) %s\n",
			bd.Category, spent, bd.Limit, pct, status)
	}
}
