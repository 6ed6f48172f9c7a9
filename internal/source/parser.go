// Package source discovers and parses JSON exports of budgets and expenses.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/moneyplan/internal/model"
)

// ErrUnknownFormat is returned for JSON that is none of the supported shapes.
var ErrUnknownFormat = errors.New("unrecognized export format")

// ParseResult holds the output of parsing a single export file.
type ParseResult struct {
	File        DiscoveredFile
	Budgets     []model.Budget
	Expenses    []model.Expense
	ParseErrors int
	Err         error
}

// ParseFile reads an export file. Three shapes are accepted:
//   - a JSON array of expense records
//   - {"budgets": [...], "expenses": [...]}
//   - a browser storage dump whose expense/budget keys hold arrays or
//     JSON-encoded strings of arrays
//
// Records that fail to decode or validate are counted in ParseErrors and
// skipped.
func ParseFile(df DiscoveredFile) ParseResult {
	data, err := os.ReadFile(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	pr := Parse(data)
	pr.File = df
	return pr
}

// Parse decodes export bytes. See ParseFile for the accepted shapes.
func Parse(data []byte) ParseResult {
	var pr ParseResult
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return pr
	}

	switch data[0] {
	case '[':
		pr.Expenses, pr.ParseErrors = decodeExpenses(data)
		return pr
	case '{':
	default:
		pr.Err = ErrUnknownFormat
		return pr
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		pr.Err = fmt.Errorf("decoding export: %w", err)
		return pr
	}

	budgetsRaw, hasBudgets := obj["budgets"]
	expensesRaw, hasExpenses := obj["expenses"]
	if !hasBudgets && !hasExpenses {
		budgetsRaw, hasBudgets = obj[StorageKeyBudgets]
		expensesRaw, hasExpenses = obj[StorageKeyExpenses]
	}
	if !hasBudgets && !hasExpenses {
		pr.Err = ErrUnknownFormat
		return pr
	}

	var bad int
	if hasBudgets {
		pr.Budgets, bad = decodeBudgets(unquote(budgetsRaw))
		pr.ParseErrors += bad
	}
	if hasExpenses {
		pr.Expenses, bad = decodeExpenses(unquote(expensesRaw))
		pr.ParseErrors += bad
	}
	return pr
}

// unquote unwraps a JSON string holding JSON, as browser storage values are.
func unquote(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return raw
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return raw
	}
	return json.RawMessage(s)
}

func splitArray(data []byte) ([]json.RawMessage, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, true
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	return items, true
}

func decodeExpenses(data []byte) ([]model.Expense, int) {
	items, ok := splitArray(data)
	if !ok {
		return nil, 1
	}
	var out []model.Expense
	bad := 0
	for i, item := range items {
		var raw RawExpense
		if err := json.Unmarshal(item, &raw); err != nil {
			bad++
			continue
		}
		e, err := raw.toModel(i)
		if err != nil {
			bad++
			continue
		}
		out = append(out, e)
	}
	return out, bad
}

func decodeBudgets(data []byte) ([]model.Budget, int) {
	items, ok := splitArray(data)
	if !ok {
		return nil, 1
	}
	var out []model.Budget
	bad := 0
	for _, item := range items {
		var raw RawBudget
		if err := json.Unmarshal(item, &raw); err != nil {
			bad++
			continue
		}
		b, err := raw.toModel()
		if err != nil {
			bad++
			continue
		}
		out = append(out, b)
	}
	return out, bad
}

// toModel converts r. Records without an id get one derived from their
// content and their position in the file, so identical purchases stay
// separate records.
func (r RawExpense) toModel(index int) (model.Expense, error) {
	date, err := model.ParseDate(r.Date)
	if err != nil {
		return model.Expense{}, err
	}
	category, err := model.ParseCategory(r.Category)
	if err != nil {
		return model.Expense{}, err
	}
	if r.Amount.IsNegative() {
		return model.Expense{}, fmt.Errorf("negative amount %s", r.Amount)
	}

	e := model.Expense{
		ID:          strings.TrimSpace(r.ID),
		Date:        date,
		Amount:      r.Amount,
		Category:    category,
		Description: strings.TrimSpace(r.Description),
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}
	if e.ID == "" {
		e.ID = contentID(strconv.Itoa(index), e.Date.String(), e.Amount.String(), string(e.Category), e.Description)
	}
	return e, nil
}

func (r RawBudget) toModel() (model.Budget, error) {
	category, err := model.ParseBudgetCategory(r.Category)
	if err != nil {
		return model.Budget{}, err
	}
	period, err := model.ParsePeriod(r.Period)
	if err != nil {
		return model.Budget{}, err
	}
	start, err := model.ParseDate(r.StartDate)
	if err != nil {
		return model.Budget{}, err
	}

	b := model.Budget{
		ID:             strings.TrimSpace(r.ID),
		Name:           strings.TrimSpace(r.Name),
		Category:       category,
		Amount:         r.Amount,
		Period:         period,
		StartDate:      start,
		AlertThreshold: 80,
		IsActive:       true,
		CreatedAt:      parseTimestamp(r.CreatedAt),
		UpdatedAt:      parseTimestamp(r.UpdatedAt),
	}
	if strings.TrimSpace(r.EndDate) != "" {
		end, err := model.ParseDate(r.EndDate)
		if err != nil {
			return model.Budget{}, err
		}
		b.EndDate = &end
	}
	if r.AlertThreshold != nil {
		b.AlertThreshold = *r.AlertThreshold
	}
	if r.IsActive != nil {
		b.IsActive = *r.IsActive
	}
	if b.Name == "" {
		b.Name = category.String() + " budget"
	}
	if b.ID == "" {
		b.ID = contentID(b.Name, category.String(), string(period), start.String())
	}
	if err := model.ValidateBudget(b); err != nil {
		return model.Budget{}, err
	}
	return b, nil
}

// contentID derives a stable id for records exported without one, so that
// re-importing the same file updates rather than duplicates them.
func contentID(parts ...string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(parts, "\x1f"))).String()
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
