package model

import "github.com/shopspring/decimal"

// CategorySummary holds the spend attributed to one category.
type CategorySummary struct {
	Category   Category        `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
	Count      int             `json:"count"`
}

// ExpenseSummary is the all-time and current-month view of recorded expenses.
type ExpenseSummary struct {
	TotalExpenses   decimal.Decimal   `json:"totalExpenses"`
	MonthlyTotal    decimal.Decimal   `json:"monthlyTotal"`
	CategorySummary []CategorySummary `json:"categorySummary"`
	TopCategories   []CategorySummary `json:"topCategories"`
}

// MonthlySpending is the total spent in one calendar month (YYYY-MM).
type MonthlySpending struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// DailySpending is the total spent on one calendar day.
type DailySpending struct {
	Date   Date            `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}
