package source

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Keys under which the web app keeps its records in browser storage.
const (
	StorageKeyExpenses = "expense-tracker-expenses"
	StorageKeyBudgets  = "expense-tracker-budgets"
)

// RawExpense is an expense record as written by an export. Amounts may be
// JSON numbers or strings.
type RawExpense struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

// RawBudget is a budget record as written by an export. Older exports omit
// isActive and capitalize the period.
type RawBudget struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	Period         string          `json:"period"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	AlertThreshold *float64        `json:"alertThreshold"`
	IsActive       *bool           `json:"isActive"`
	CreatedAt      string          `json:"createdAt"`
	UpdatedAt      string          `json:"updatedAt"`
}

// envelope is the {"budgets": [...], "expenses": [...]} export shape.
type envelope struct {
	Budgets  json.RawMessage `json:"budgets"`
	Expenses json.RawMessage `json:"expenses"`
}

// DiscoveredFile is a JSON export found during directory scanning.
type DiscoveredFile struct {
	Path      string
	MtimeNs   int64
	SizeBytes int64
}
