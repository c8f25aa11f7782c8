// Package core holds the domain types shared by every engine: expenses,
// budgets, categories, calendar months, and money helpers.
package core

import (
	"math"
	"strconv"
	"strings"
)

// Round2 rounds a dollar amount to two decimal places. It is the single
// presentation-boundary rounding helper: aggregation accumulates at full
// precision and results are rounded exactly once, when a response field is
// built. Rounding inside intermediate computations would let the fallback
// narrative and the aggregation engine drift apart on the same data.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundPct rounds a percentage to the nearest whole percent.
func RoundPct(v float64) int {
	return int(math.Round(v))
}

// ParseAmount converts a decimal string to a positive dollar amount.
// Both dot and comma decimal separators are accepted; anything beyond two
// fractional digits is half-up rounded.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrInvalidAmount
	}
	v = Round2(v)
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}
