package insights

import (
	"encoding/json"
	"strings"
)

// Insight is the four-part narrative every insight generation produces,
// whatever produced it.
type Insight struct {
	Anomalies       string `json:"anomalies"`
	Trends          string `json:"trends"`
	Recommendations string `json:"recommendations"`
	Savings         string `json:"savings"`
}

// ParseInsight normalizes collaborator output into an Insight. It first
// tries the JSON object embedded in the text (models often wrap it in
// prose or code fences), then falls back to reading the first four
// non-empty lines. ok is false only when the text yields nothing usable.
func ParseInsight(text string) (Insight, bool) {
	if in, ok := parseEmbeddedJSON(text); ok {
		return in, true
	}
	return parseLines(text)
}

func parseEmbeddedJSON(text string) (Insight, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Insight{}, false
	}
	var in Insight
	if err := json.Unmarshal([]byte(text[start:end+1]), &in); err != nil {
		return Insight{}, false
	}
	if in == (Insight{}) {
		return Insight{}, false
	}
	return in, true
}

func parseLines(text string) (Insight, bool) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			lines = append(lines, s)
		}
		if len(lines) == 4 {
			break
		}
	}
	if len(lines) == 0 {
		return Insight{}, false
	}
	pick := func(i int, fallback string) string {
		if i < len(lines) {
			return lines[i]
		}
		return fallback
	}
	return Insight{
		Anomalies:       pick(0, "No anomalies detected"),
		Trends:          pick(1, "Spending is stable"),
		Recommendations: pick(2, "Review your spending categories"),
		Savings:         pick(3, "Potential savings available"),
	}, true
}
