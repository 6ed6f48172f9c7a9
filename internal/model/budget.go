// Package model defines the budget and expense records and the derived
// progress views computed from them.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a user-defined spending limit. Edits replace the whole record.
type Budget struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Category       BudgetCategory  `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	Period         Period          `json:"period"`
	StartDate      Date            `json:"startDate"`
	EndDate        *Date           `json:"endDate,omitempty"`
	AlertThreshold float64         `json:"alertThreshold"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Expense is a single recorded purchase.
type Expense struct {
	ID          string          `json:"id"`
	Date        Date            `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// BudgetProgress is the derived state of one budget for the period
// containing "now". It is recomputed on every read and never stored.
type BudgetProgress struct {
	Budget         Budget          `json:"budget"`
	PeriodStart    Date            `json:"periodStart"`
	PeriodEnd      Date            `json:"periodEnd"`
	Spent          decimal.Decimal `json:"spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	Percentage     float64         `json:"percentage"`
	IsOverBudget   bool            `json:"isOverBudget"`
	ShouldAlert    bool            `json:"shouldAlert"`
	DaysRemaining  int             `json:"daysRemaining"`
	DailyAllowance decimal.Decimal `json:"dailyAllowance"`
}

// BudgetSummary folds the progress of every active budget.
type BudgetSummary struct {
	TotalBudgeted   decimal.Decimal  `json:"totalBudgeted"`
	TotalSpent      decimal.Decimal  `json:"totalSpent"`
	TotalRemaining  decimal.Decimal  `json:"totalRemaining"`
	OverBudgetCount int              `json:"overBudgetCount"`
	AlertCount      int              `json:"alertCount"`
	BudgetProgress  []BudgetProgress `json:"budgetProgress"`
}
