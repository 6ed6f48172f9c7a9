package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Category is one of the closed set of expense categories.
type Category string

const (
	Food          Category = "Food"
	Transport     Category = "Transportation"
	Entertainment Category = "Entertainment"
	Shopping      Category = "Shopping"
	Bills         Category = "Bills"
	Tech          Category = "Tech"
	Other         Category = "Other"
)

// Categories lists every expense category in display order.
var Categories = []Category{Food, Transport, Entertainment, Shopping, Bills, Tech, Other}

// totalName is the budget-only sentinel meaning "all categories combined".
const totalName = "Total"

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategory resolves s case-insensitively. Unknown names, including the
// budget sentinel "Total", are rejected with the closest valid suggestion.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	if strings.EqualFold(s, totalName) {
		return "", fmt.Errorf("%q is only valid for budgets, not expenses", totalName)
	}
	if best := closestCategory(s); best != "" {
		return "", fmt.Errorf("unknown category %q (did you mean %s?)", s, best)
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// closestCategory returns the category within edit distance 3 of s, if any.
func closestCategory(s string) Category {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	best := Category("")
	bestDist := 4
	for _, c := range Categories {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(string(c)))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// BudgetCategory is either a single expense Category or Total, which matches
// every category. The zero value is Total.
type BudgetCategory struct {
	category Category
}

// TotalCategory returns the all-categories budget scope.
func TotalCategory() BudgetCategory { return BudgetCategory{} }

// CategoryOf scopes a budget to a single expense category.
func CategoryOf(c Category) BudgetCategory { return BudgetCategory{category: c} }

// ParseBudgetCategory accepts "Total" or any expense category name.
func ParseBudgetCategory(s string) (BudgetCategory, error) {
	if strings.EqualFold(strings.TrimSpace(s), totalName) {
		return TotalCategory(), nil
	}
	c, err := ParseCategory(s)
	if err != nil {
		return BudgetCategory{}, err
	}
	return CategoryOf(c), nil
}

func (b BudgetCategory) IsTotal() bool { return b.category == "" }

// Category returns the scoped category; it is empty for Total.
func (b BudgetCategory) Category() Category { return b.category }

// Matches reports whether an expense in c counts against this budget.
func (b BudgetCategory) Matches(c Category) bool {
	return b.IsTotal() || b.category == c
}

func (b BudgetCategory) String() string {
	if b.IsTotal() {
		return totalName
	}
	return string(b.category)
}

func (b BudgetCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BudgetCategory) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBudgetCategory(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b BudgetCategory) Value() (driver.Value, error) {
	return b.String(), nil
}

func (b *BudgetCategory) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseBudgetCategory(v)
		if err != nil {
			return err
		}
		*b = parsed
		return nil
	case []byte:
		return b.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into BudgetCategory", src)
	}
}

// Period is the calendar window a budget's limit applies to.
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// Periods lists every budget period.
var Periods = []Period{Weekly, Monthly, Yearly}

func (p Period) Valid() bool {
	return p == Weekly || p == Monthly || p == Yearly
}

// ParsePeriod resolves s case-insensitively.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown period %q (want weekly, monthly or yearly)", s)
	}
	return p, nil
}
