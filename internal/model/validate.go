package model

import (
	"sort"
	"strings"
	"time"
)

// FieldErrors maps a record field name to a human-readable problem.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid " + strings.Join(parts, "; ")
}

// errOrNil avoids returning a non-nil error interface wrapping an empty map.
func (fe FieldErrors) errOrNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// ValidateExpense checks an expense as entered by the user. The date must not
// be later than now's calendar date.
func ValidateExpense(e Expense, now time.Time) error {
	errs := FieldErrors{}

	if e.Date.IsZero() {
		errs["date"] = "Date is required"
	} else if e.Date.After(DateOf(now)) {
		errs["date"] = "Date cannot be in the future"
	}

	if !e.Amount.IsPositive() {
		errs["amount"] = "Amount must be a positive number"
	}

	if e.Category == "" {
		errs["category"] = "Category is required"
	} else if !e.Category.Valid() {
		errs["category"] = "Unknown category " + string(e.Category)
	}

	desc := strings.TrimSpace(e.Description)
	switch {
	case desc == "":
		errs["description"] = "Description is required"
	case len([]rune(desc)) < 3:
		errs["description"] = "Description must be at least 3 characters"
	}

	return errs.errOrNil()
}

// ValidateBudget checks a budget before it is saved.
func ValidateBudget(b Budget) error {
	errs := FieldErrors{}

	if strings.TrimSpace(b.Name) == "" {
		errs["name"] = "Name is required"
	}
	if !b.Category.IsTotal() && !b.Category.Category().Valid() {
		errs["category"] = "Unknown category " + b.Category.String()
	}
	if !b.Amount.IsPositive() {
		errs["amount"] = "Amount must be a positive number"
	}
	if !b.Period.Valid() {
		errs["period"] = "Period must be weekly, monthly or yearly"
	}
	if b.AlertThreshold < 0 || b.AlertThreshold > 100 {
		errs["alertThreshold"] = "Alert threshold must be between 0 and 100"
	}
	if b.StartDate.IsZero() {
		errs["startDate"] = "Start date is required"
	} else if b.EndDate != nil && !b.EndDate.IsZero() && b.EndDate.Before(b.StartDate) {
		errs["endDate"] = "End date cannot be before start date"
	}

	return errs.errOrNil()
}
