package insights

import (
	"fmt"
	"regexp"
	"strings"

	"spendsight/internal/core"
)

// intentRule pairs a question predicate with a response builder. Rules that
// need spending data are skipped when the owner has none.
type intentRule struct {
	name      string
	needsData bool
	match     func(q string) bool
	respond   func(q string, data *SpendingData) string
}

func containsAny(subs ...string) func(string) bool {
	return func(q string) bool {
		for _, s := range subs {
			if strings.Contains(q, s) {
				return true
			}
		}
		return false
	}
}

var categoryPattern = regexp.MustCompile(
	`\b(food|groceries|grocery|dining|restaurant|transport|transportation|gas|taxi|entertainment|health|healthcare|gym|shopping|clothing|bills|utilities|rent|electric|internet|subscription|education|tuition|travel|flight|hotel)\b`)

// categorySynonyms maps question words to the category enum.
var categorySynonyms = map[string]core.Category{
	"food": core.CategoryFood, "groceries": core.CategoryFood,
	"grocery": core.CategoryFood, "dining": core.CategoryFood,
	"restaurant": core.CategoryFood,
	"transport":  core.CategoryTransportation, "transportation": core.CategoryTransportation,
	"gas": core.CategoryTransportation, "taxi": core.CategoryTransportation,
	"entertainment": core.CategoryEntertainment,
	"health":        core.CategoryHealthcare, "healthcare": core.CategoryHealthcare,
	"gym":      core.CategoryHealthcare,
	"shopping": core.CategoryShopping, "clothing": core.CategoryShopping,
	"bills": core.CategoryBills, "utilities": core.CategoryBills,
	"rent": core.CategoryBills, "electric": core.CategoryBills,
	"internet": core.CategoryBills, "subscription": core.CategoryBills,
	"education": core.CategoryEducation, "tuition": core.CategoryEducation,
	"travel": core.CategoryTravel, "flight": core.CategoryTravel,
	"hotel": core.CategoryTravel,
}

// chatIntents is the complete routing table for rule-based chat answers.
// Order matters: the first matching rule wins, so broader matchers (total,
// greeting, help) sit below the specific ones. Tests pin this order.
var chatIntents = []intentRule{
	{
		name: "trend", needsData: true,
		match:   containsAny("trend", "pattern", "how is my"),
		respond: trendAnswer,
	},
	{
		name: "budget", needsData: true,
		match:   containsAny("budget", "status", "how much spent"),
		respond: budgetAnswer,
	},
	{
		name: "savings", needsData: true,
		match:   containsAny("save", "reduce", "cut"),
		respond: savingsAnswer,
	},
	{
		name: "breakdown", needsData: true,
		match:   containsAny("categor", "where", "breakdown", "spending by"),
		respond: breakdownAnswer,
	},
	{
		name: "forecast", needsData: true,
		match:   containsAny("predict", "next month", "forecast", "will spend"),
		respond: forecastAnswer,
	},
	{
		name: "anomaly", needsData: true,
		match:   containsAny("anomal", "unusual", "strange", "outlier"),
		respond: anomalyAnswer,
	},
	{
		name: "category", needsData: true,
		match:   func(q string) bool { return categoryPattern.MatchString(q) },
		respond: categoryAnswer,
	},
	{
		name: "total", needsData: true,
		match:   containsAny("total", "how much", "overall"),
		respond: totalAnswer,
	},
	{
		name:  "greeting",
		match: containsAny("hello", "hi", "hey"),
		respond: func(string, *SpendingData) string {
			return "Hello! I'm your spending assistant. I analyze your expenses to help you make better financial decisions. Ask me about spending trends, budget status, savings tips, future predictions, or any specific category."
		},
	},
	{
		name:  "help",
		match: containsAny("help", "what can", "capabilities"),
		respond: func(string, *SpendingData) string {
			return "I can help with spending trends, budget status, savings tips, spending predictions, unusual expenses, and category analysis. What would you like to know?"
		},
	},
}

const genericAnswer = `I can analyze your spending data to answer questions about trends, budget status, savings opportunities, and future predictions. Try asking: "What are my spending trends?" or "Where can I save money?"`

// ChatFallback routes a question through the intent table and renders a
// data-grounded answer without any external collaborator.
func ChatFallback(question string, data *SpendingData) string {
	q := strings.ToLower(question)
	for _, rule := range chatIntents {
		if rule.needsData && (data == nil || data.TotalSpending == 0) {
			continue
		}
		if rule.match(q) {
			return rule.respond(q, data)
		}
	}
	return genericAnswer
}

func trendAnswer(_ string, data *SpendingData) string {
	direction := "stable"
	if data.MonthlyTrend > 0 {
		direction = "increasing"
	} else if data.MonthlyTrend < 0 {
		direction = "decreasing"
	}
	mag := data.MonthlyTrend
	if mag < 0 {
		mag = -mag
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your spending is %s by %.1f%% month-over-month. ", direction, mag)
	diff := data.CurrentMonthSpending - data.AvgMonthlySpending
	if diff >= 0 {
		fmt.Fprintf(&b, "Your current month ($%.2f) is $%.2f higher than your 6-month average ($%.2f). ",
			data.CurrentMonthSpending, diff, data.AvgMonthlySpending)
	} else {
		fmt.Fprintf(&b, "Your current month ($%.2f) is $%.2f lower than your 6-month average ($%.2f). ",
			data.CurrentMonthSpending, -diff, data.AvgMonthlySpending)
	}
	if len(data.TopCategories) > 0 {
		top := data.TopCategories[0]
		var share float64
		if data.TotalSpending > 0 {
			share = top.Amount / data.TotalSpending * 100
		}
		fmt.Fprintf(&b, "%s is your biggest category at $%.2f (%.1f%% of total spending).",
			top.Category, top.Amount, share)
	}
	return b.String()
}

func budgetAnswer(_ string, data *SpendingData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total spent (6 months): $%.2f across %d transactions. Average monthly: $%.2f. Current month: $%.2f. ",
		data.TotalSpending, data.ExpenseCount, data.AvgMonthlySpending, data.CurrentMonthSpending)

	if n := len(data.TopCategories); n > 0 {
		if n > 3 {
			n = 3
		}
		parts := make([]string, 0, n)
		for i := 0; i < n; i++ {
			ct := data.TopCategories[i]
			parts = append(parts, fmt.Sprintf("%d. %s ($%.2f)", i+1, ct.Category, ct.Amount))
		}
		fmt.Fprintf(&b, "Your top %d categories: %s. ", n, strings.Join(parts, ", "))
	}

	if len(data.Budgets) == 0 {
		b.WriteString("You're tracking your money well!")
		return b.String()
	}
	b.WriteString("Budget status: ")
	for i, budget := range data.Budgets {
		if i > 0 {
			b.WriteString(", ")
		}
		spent := data.CategorySpending[budget.Category]
		pct := spent / budget.Limit * 100
		if pct > 100 {
			fmt.Fprintf(&b, "%s over budget by $%.2f (%.0f%%)", budget.Category, spent-budget.Limit, pct)
		} else {
			fmt.Fprintf(&b, "%s at %.0f%% of $%.2f", budget.Category, pct, budget.Limit)
		}
	}
	b.WriteString(".")
	return b.String()
}

// savingsTiers are the suggested reduction percentages for the top three
// categories, steepest first.
var savingsTiers = [3]float64{15, 10, 8}

func savingsAnswer(_ string, data *SpendingData) string {
	var b strings.Builder
	var potential float64
	for i, ct := range data.TopCategories {
		if i == len(savingsTiers) {
			break
		}
		pct := savingsTiers[i]
		monthly := ct.Amount * pct / 100
		fmt.Fprintf(&b, "%d. %s: reducing by %.0f%% could save $%.2f/month ($%.2f/year). ",
			i+1, ct.Category, pct, monthly, monthly*12)
		potential += ct.Amount * 0.10
	}
	if len(data.Anomalies) > 0 {
		fmt.Fprintf(&b, "Also, you have %d unusual expense(s) that could be avoided. ", len(data.Anomalies))
	}
	fmt.Fprintf(&b, "Total potential savings: ~$%.2f/month or $%.2f/year.", potential, potential*12)
	return b.String()
}

func breakdownAnswer(_ string, data *SpendingData) string {
	var b strings.Builder
	b.WriteString("Your spending breakdown (6 months): ")
	for i, ct := range data.TopCategories {
		var share float64
		if data.TotalSpending > 0 {
			share = ct.Amount / data.TotalSpending * 100
		}
		fmt.Fprintf(&b, "%d. %s: $%.2f (%.1f%%, ~$%.2f/month), ",
			i+1, ct.Category, ct.Amount, share, ct.Amount/windowMonths)
	}
	fmt.Fprintf(&b, "these %d categories represent your complete spending pattern.", len(data.TopCategories))
	return b.String()
}

func forecastAnswer(_ string, data *SpendingData) string {
	trendFactor := (100 + data.MonthlyTrend) / 100
	predicted := data.AvgMonthlySpending * trendFactor
	low := data.AvgMonthlySpending * 0.9
	high := predicted * 1.1

	direction := "stable"
	if data.MonthlyTrend > 0 {
		direction = "increasing"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on your %s trend (%+.1f%%): next month prediction is $%.2f (range $%.2f-$%.2f). ",
		direction, data.MonthlyTrend, predicted, low, high)
	if len(data.TopCategories) > 0 {
		top := data.TopCategories[0]
		fmt.Fprintf(&b, "Your %s category may reach ~$%.2f. ", top.Category, top.Amount*trendFactor)
	}
	switch {
	case data.MonthlyTrend > 5:
		fmt.Fprintf(&b, "At this rate you're on track to spend ~$%.0f annually, %.1f%% more than your current pace.",
			predicted*12, data.MonthlyTrend)
	case data.MonthlyTrend < -5:
		b.WriteString("Good news: your spending is decreasing. Keep this up to save significantly.")
	default:
		fmt.Fprintf(&b, "Your spending appears to be stabilizing around $%.2f/month.", data.AvgMonthlySpending)
	}
	return b.String()
}

func anomalyAnswer(_ string, data *SpendingData) string {
	if len(data.Anomalies) == 0 {
		return "No unusual spending detected. Your expenses are following consistent patterns with no significant outliers."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d unusual expense(s): ", len(data.Anomalies))
	var excess float64
	for i, a := range data.Anomalies {
		fmt.Fprintf(&b, "%d. %s: $%.2f (%s), $%.2f above the category average. ",
			i+1, a.Category, a.Amount, a.Title, a.Difference)
		excess += a.Difference
	}
	fmt.Fprintf(&b, "Total excess from anomalies: $%.2f. Review and potentially avoid these purchases.", excess)
	return b.String()
}

func categoryAnswer(q string, data *SpendingData) string {
	match := categoryPattern.FindString(q)
	cat, ok := categorySynonyms[match]
	if !ok {
		return genericAnswer
	}
	amount, spent := data.CategorySpending[cat]
	if !spent {
		return fmt.Sprintf("You have no %s expenses in the last 6 months.", cat)
	}
	var share float64
	if data.TotalSpending > 0 {
		share = amount / data.TotalSpending * 100
	}
	return fmt.Sprintf("Your %s spending: $%.2f total (%.1f%% of all spending), averaging $%.2f/month. This is a key category to monitor for potential savings.",
		cat, amount, share, amount/windowMonths)
}

func totalAnswer(_ string, data *SpendingData) string {
	return fmt.Sprintf("Total spending (6 months): $%.2f. Monthly average: $%.2f. Current month: $%.2f. You've logged %d transactions.",
		data.TotalSpending, data.AvgMonthlySpending, data.CurrentMonthSpending, data.ExpenseCount)
}
