package insights

import (
	"strings"
	"testing"
	"time"

	"spendsight/internal/analytics"
	"spendsight/internal/core"
)

func snapshot() *SpendingData {
	return &SpendingData{
		TotalSpending:        3000,
		AvgMonthlySpending:   500,
		MonthlyTrend:         12.5,
		ExpenseCount:         42,
		CurrentMonthSpending: 620,
		Currency:             "USD",
		CategorySpending: map[core.Category]float64{
			core.CategoryFood:     1200,
			core.CategoryBills:    900,
			core.CategoryShopping: 600,
			core.CategoryTravel:   300,
		},
		TopCategories: []analytics.CategoryTotal{
			{Category: core.CategoryFood, Amount: 1200},
			{Category: core.CategoryBills, Amount: 900},
			{Category: core.CategoryShopping, Amount: 600},
			{Category: core.CategoryTravel, Amount: 300},
		},
		Anomalies: []AnomalyNote{
			{Date: time.Now(), Category: core.CategoryFood, Title: "team dinner", Amount: 250, Difference: 120},
		},
		Budgets: []BudgetRef{
			{Category: core.CategoryFood, Limit: 1000},
		},
	}
}

func TestParseInsightJSON(t *testing.T) {
	text := "Here you go:\n```json\n{\"anomalies\":\"a\",\"trends\":\"t\",\"recommendations\":\"r\",\"savings\":\"s\"}\n```"
	in, ok := ParseInsight(text)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if in.Anomalies != "a" || in.Trends != "t" || in.Recommendations != "r" || in.Savings != "s" {
		t.Errorf("parsed = %+v", in)
	}
}

func TestParseInsightLineFallback(t *testing.T) {
	text := "First insight.\n\nSecond insight.\nThird insight.\nFourth insight.\nExtra line."
	in, ok := ParseInsight(text)
	if !ok {
		t.Fatal("expected line fallback to succeed")
	}
	if in.Anomalies != "First insight." || in.Savings != "Fourth insight." {
		t.Errorf("parsed = %+v", in)
	}
}

func TestParseInsightShortText(t *testing.T) {
	in, ok := ParseInsight("Only one line.")
	if !ok {
		t.Fatal("one line is still usable")
	}
	if in.Trends != "Spending is stable" {
		t.Errorf("missing lines must take defaults, got %q", in.Trends)
	}
}

func TestParseInsightEmpty(t *testing.T) {
	if _, ok := ParseInsight("   \n  \n"); ok {
		t.Error("blank text must not parse")
	}
}

func TestParseInsightMalformedJSONFallsToLines(t *testing.T) {
	in, ok := ParseInsight("{not json at all\nsecond line")
	if !ok {
		t.Fatal("expected line fallback")
	}
	if in.Anomalies != "{not json at all" {
		t.Errorf("got %q", in.Anomalies)
	}
}

func TestFallbackInsightNoData(t *testing.T) {
	in := FallbackInsight(nil)
	if in.Savings != "N/A" || in.Anomalies != "No data available" {
		t.Errorf("no-data fallback = %+v", in)
	}
}

func TestFallbackInsightDeterministic(t *testing.T) {
	a := FallbackInsight(snapshot())
	b := FallbackInsight(snapshot())
	if a != b {
		t.Error("same snapshot must yield identical narratives")
	}
	if !strings.Contains(a.Recommendations, "Food") {
		t.Errorf("recommendations must name the top category: %q", a.Recommendations)
	}
	if !strings.Contains(a.Savings, "$120.00/month") {
		t.Errorf("savings must quote 10%% of the top category: %q", a.Savings)
	}
	if !strings.Contains(a.Anomalies, "1 unusual expense(s)") {
		t.Errorf("anomalies = %q", a.Anomalies)
	}
}

func TestChatIntentOrder(t *testing.T) {
	want := []string{
		"trend", "budget", "savings", "breakdown", "forecast",
		"anomaly", "category", "total", "greeting", "help",
	}
	if len(chatIntents) != len(want) {
		t.Fatalf("intent table has %d rules, want %d", len(chatIntents), len(want))
	}
	for i, name := range want {
		if chatIntents[i].name != name {
			t.Errorf("rule %d = %s, want %s", i, chatIntents[i].name, name)
		}
	}
}

func TestChatFallbackRouting(t *testing.T) {
	data := snapshot()
	tests := []struct {
		name     string
		question string
		contains string
	}{
		{"trend", "What are my spending trends?", "month-over-month"},
		{"trend wins over budget", "How is my budget trend?", "month-over-month"},
		{"budget", "What's my budget status?", "Budget status"},
		{"savings", "Where can I save money?", "Total potential savings"},
		{"breakdown", "Show my category breakdown", "spending breakdown"},
		{"forecast", "Predict my next month", "next month prediction"},
		{"anomaly", "Any unusual expenses?", "unusual expense(s)"},
		{"named category", "How much do I spend on groceries?", "Food spending"},
		{"total", "How much overall?", "Total spending (6 months)"},
		{"greeting", "hello there", "spending assistant"},
		{"help", "what can you do", "category analysis"},
		{"generic", "tell me a joke", "Try asking"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChatFallback(tt.question, data)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("ChatFallback(%q) = %q, want substring %q", tt.question, got, tt.contains)
			}
		})
	}
}

func TestChatFallbackSavingsTiers(t *testing.T) {
	got := ChatFallback("how can I reduce spending", snapshot())
	for _, want := range []string{
		"Food: reducing by 15% could save $180.00/month",
		"Bills: reducing by 10% could save $90.00/month",
		"Shopping: reducing by 8% could save $48.00/month",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("savings answer missing %q:\n%s", want, got)
		}
	}
	// 10% of the top three categories: 120 + 90 + 60
	if !strings.Contains(got, "~$270.00/month") {
		t.Errorf("total potential savings wrong:\n%s", got)
	}
}

func TestChatFallbackNoData(t *testing.T) {
	got := ChatFallback("what are my trends?", nil)
	if got != genericAnswer {
		t.Errorf("data questions without data must get the generic answer, got %q", got)
	}
	greet := ChatFallback("hello", nil)
	if !strings.Contains(greet, "spending assistant") {
		t.Errorf("greeting must work without data, got %q", greet)
	}
}

func TestInsightsPromptEmbedsFigures(t *testing.T) {
	p := InsightsPrompt(snapshot())
	for _, want := range []string{"$3000.00", "$500.00", "12.50%", "Food: $1200.00", "team dinner", "anomalies, trends, recommendations, savings"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestInsightsPromptNoData(t *testing.T) {
	p := InsightsPrompt(nil)
	if !strings.Contains(p, "no expense data") {
		t.Errorf("prompt = %q", p)
	}
}

func TestChatPromptQuotesQuestion(t *testing.T) {
	p := ChatPrompt(snapshot(), "where does my money go?")
	if !strings.Contains(p, `"where does my money go?"`) {
		t.Error("chat prompt must quote the question")
	}
	if !strings.Contains(p, "$3000.00") {
		t.Error("chat prompt must embed the data")
	}
}
