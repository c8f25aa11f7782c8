package core

import (
	"fmt"
	"time"
)

// Month names a calendar month as a YYYY-MM string. Lexicographic order of
// valid values matches chronological order.
type Month string

// ParseMonth validates a YYYY-MM string and returns it as a Month.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return "", ErrInvalidMonth
	}
	// time.Parse accepts "2006-1"; require the canonical form.
	if t.Format("2006-01") != s {
		return "", ErrInvalidMonth
	}
	return Month(s), nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month(t.Format("2006-01"))
}

// CurrentMonth returns the month containing now in its location.
func CurrentMonth(now time.Time) Month {
	return MonthOf(now)
}

func (m Month) String() string { return string(m) }

func (m Month) year() (int, time.Month) {
	t, err := time.Parse("2006-01", string(m))
	if err != nil {
		// Months are validated at the boundary; a malformed value here is a
		// programming error.
		panic(fmt.Sprintf("malformed month %q", string(m)))
	}
	return t.Year(), t.Month()
}

// Range returns the first instant of the month and 23:59:59 of its last
// calendar day. Day counts come from native date normalization, so leap
// years need no special casing.
func (m Month) Range() (start, end time.Time) {
	y, mo := m.year()
	start = time.Date(y, mo, 1, 0, 0, 0, 0, time.Local)
	end = time.Date(y, mo+1, 0, 23, 59, 59, 0, time.Local)
	return start, end
}

// Days returns the number of calendar days in the month.
func (m Month) Days() int {
	_, end := m.Range()
	return end.Day()
}

// Prev returns the preceding month, rolling over year boundaries.
func (m Month) Prev() Month {
	y, mo := m.year()
	return MonthOf(time.Date(y, mo-1, 1, 0, 0, 0, 0, time.UTC))
}

// Next returns the following month.
func (m Month) Next() Month {
	y, mo := m.year()
	return MonthOf(time.Date(y, mo+1, 1, 0, 0, 0, 0, time.UTC))
}

// Preceding returns n consecutive months ending at m, oldest first.
func (m Month) Preceding(n int) []Month {
	y, mo := m.year()
	months := make([]Month, 0, n)
	for i := n - 1; i >= 0; i-- {
		months = append(months, MonthOf(time.Date(y, mo-time.Month(i), 1, 0, 0, 0, 0, time.UTC)))
	}
	return months
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return MonthOf(t) == m
}

// ElapsedDays returns how many days of the month have passed as of now:
// the full day count for past months, the current day-of-month for the
// in-progress month, and 0 for months that have not started.
//
// The reference behavior treated the in-progress month as fully elapsed,
// which inflated nothing but collapsed every forecast to the current total.
// Using the true elapsed day count keeps forecasts meaningful mid-month.
func (m Month) ElapsedDays(now time.Time) int {
	switch nowMonth := MonthOf(now); {
	case m < nowMonth:
		return m.Days()
	case m == nowMonth:
		return now.Day()
	default:
		return 0
	}
}
