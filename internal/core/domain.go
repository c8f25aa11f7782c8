package core

import (
	"errors"
	"strings"
	"time"
)

// Category is one of the fixed set of expense categories.
type Category string

const (
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryEntertainment  Category = "Entertainment"
	CategoryHealthcare     Category = "Healthcare"
	CategoryShopping       Category = "Shopping"
	CategoryBills          Category = "Bills"
	CategoryEducation      Category = "Education"
	CategoryTravel         Category = "Travel"
	CategoryOther          Category = "Other"
)

// Categories lists every valid category in declaration order.
var Categories = []Category{
	CategoryFood, CategoryTransportation, CategoryEntertainment, CategoryHealthcare,
	CategoryShopping, CategoryBills, CategoryEducation, CategoryTravel, CategoryOther,
}

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidMonth     = errors.New("invalid month, expected YYYY-MM")
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyOwner       = errors.New("empty owner")
	ErrInvalidThreshold = errors.New("alert threshold must be between 1 and 100")
)

// ParseCategory validates a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

func (c Category) String() string { return string(c) }

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Expense is a single logged expense. Amounts are dollars with two decimal
// places of currency precision; intermediate analytics keep full precision.
type Expense struct {
	ID          string
	Owner       string
	Title       string
	Amount      float64
	Category    Category
	Date        time.Time
	Description string
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Owner) == "" {
		return ErrEmptyOwner
	}
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > 100 {
		return errors.New("title too long (max 100 characters)")
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if e.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if len(e.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}

// Budget caps spending for one category in one month. At most one active
// budget may exist per (owner, category, month); storage enforces this.
type Budget struct {
	ID             string
	Owner          string
	Category       Category
	Month          Month
	Limit          float64
	AlertThreshold int
	Description    string
	Active         bool
}

// DefaultAlertThreshold is the percent-used level at which alerts fire
// when a budget does not specify its own.
const DefaultAlertThreshold = 80

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Owner) == "" {
		return ErrEmptyOwner
	}
	if !b.Category.Valid() {
		return ErrInvalidCategory
	}
	if _, err := ParseMonth(string(b.Month)); err != nil {
		return err
	}
	if b.Limit <= 0 {
		return ErrInvalidAmount
	}
	if b.AlertThreshold < 1 || b.AlertThreshold > 100 {
		return ErrInvalidThreshold
	}
	if len(b.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
