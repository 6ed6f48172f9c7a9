package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/moneyplan/internal/model"
	"github.com/theirongolddev/moneyplan/internal/store"
)

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func exp(t *testing.T, date, amount string, c model.Category, desc string) model.Expense {
	t.Helper()
	return model.Expense{
		ID:          date + desc,
		Date:        mustDate(t, date),
		Amount:      decimal.RequireFromString(amount),
		Category:    c,
		Description: desc,
	}
}

func TestSummarizeExpenses(t *testing.T) {
	now := time.Date(2025, time.May, 20, 10, 0, 0, 0, time.UTC)
	expenses := []model.Expense{
		exp(t, "2025-05-01", "30", model.Food, "Groceries"),
		exp(t, "2025-05-02", "10", model.Food, "Coffee"),
		exp(t, "2025-04-28", "60", model.Bills, "Phone"),
		exp(t, "2025-05-03", "100", model.Tech, "Keyboard"),
	}

	s := SummarizeExpenses(expenses, now)
	if !s.TotalExpenses.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("total = %s, want 200", s.TotalExpenses)
	}
	if !s.MonthlyTotal.Equal(decimal.NewFromInt(140)) {
		t.Fatalf("monthly = %s, want 140", s.MonthlyTotal)
	}
	if len(s.CategorySummary) != 3 {
		t.Fatalf("categories = %d, want 3", len(s.CategorySummary))
	}
	first := s.CategorySummary[0]
	if first.Category != model.Tech || first.Percentage != 50 || first.Count != 1 {
		t.Fatalf("largest category = %+v, want Tech 50%% x1", first)
	}
	food := s.CategorySummary[2]
	if food.Category != model.Food || food.Count != 2 || food.Percentage != 20 {
		t.Fatalf("smallest category = %+v, want Food 20%% x2", food)
	}
	if len(s.TopCategories) != 3 {
		t.Fatalf("top = %d, want 3", len(s.TopCategories))
	}
}

func TestSummarizeExpenses_TopFive(t *testing.T) {
	now := time.Date(2025, time.May, 20, 10, 0, 0, 0, time.UTC)
	var expenses []model.Expense
	for i, c := range model.Categories {
		expenses = append(expenses, model.Expense{
			ID: string(c), Date: mustDate(t, "2025-05-01"), Category: c,
			Amount: decimal.NewFromInt(int64(i + 1)),
		})
	}
	s := SummarizeExpenses(expenses, now)
	if len(s.TopCategories) != TopCategoryCount {
		t.Fatalf("top = %d, want %d", len(s.TopCategories), TopCategoryCount)
	}
	if s.TopCategories[0].Category != model.Other {
		t.Fatalf("top category = %s, want Other", s.TopCategories[0].Category)
	}
	if empty := SummarizeExpenses(nil, now); !empty.TotalExpenses.IsZero() || len(empty.TopCategories) != 0 {
		t.Fatalf("empty summary = %+v", empty)
	}
}

func TestMonthlyTotals(t *testing.T) {
	months := MonthlyTotals([]model.Expense{
		exp(t, "2025-03-05", "5", model.Food, "a"),
		exp(t, "2024-12-31", "7", model.Food, "b"),
		exp(t, "2025-03-20", "1.5", model.Tech, "c"),
	})
	if len(months) != 2 {
		t.Fatalf("months = %d, want 2", len(months))
	}
	if months[0].Month != "2024-12" || months[1].Month != "2025-03" {
		t.Fatalf("months = %s, %s; want ascending", months[0].Month, months[1].Month)
	}
	if months[1].Amount.String() != "6.5" {
		t.Fatalf("March = %s, want 6.5", months[1].Amount)
	}
}

func TestDailyTotals_FillsGaps(t *testing.T) {
	days := DailyTotals([]model.Expense{
		exp(t, "2025-05-02", "3", model.Food, "a"),
		exp(t, "2025-05-02", "4", model.Food, "b"),
		exp(t, "2025-05-09", "100", model.Food, "outside"),
	}, mustDate(t, "2025-05-01"), mustDate(t, "2025-05-04"))

	if len(days) != 4 {
		t.Fatalf("days = %d, want 4", len(days))
	}
	if !days[0].Amount.IsZero() || !days[1].Amount.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("day amounts = %s, %s; want 0, 7", days[0].Amount, days[1].Amount)
	}
	if days[3].Date.String() != "2025-05-04" {
		t.Fatalf("last day = %s, want 2025-05-04", days[3].Date)
	}
	if got := DailyTotals(nil, mustDate(t, "2025-05-04"), mustDate(t, "2025-05-01")); got != nil {
		t.Fatalf("reversed range = %v, want nil", got)
	}
}

func TestFilterExpenses(t *testing.T) {
	expenses := []model.Expense{
		exp(t, "2025-05-01", "5", model.Food, "Lunch at school"),
		exp(t, "2025-05-03", "15", model.Entertainment, "Movie night"),
		exp(t, "2025-05-05", "8", model.Food, "Late LUNCH"),
	}

	got := FilterExpenses(expenses, ExpenseFilter{Category: "All", Search: "lunch"})
	if len(got) != 2 {
		t.Fatalf("search matched %d, want 2", len(got))
	}

	got = FilterExpenses(expenses, ExpenseFilter{Category: "food", From: mustDate(t, "2025-05-02")})
	if len(got) != 1 || got[0].Description != "Late LUNCH" {
		t.Fatalf("category+from = %+v", got)
	}

	got = FilterExpenses(expenses, ExpenseFilter{To: mustDate(t, "2025-05-03")})
	if len(got) != 2 {
		t.Fatalf("to filter matched %d, want 2", len(got))
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_MergesByID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"),
		`[{"id":"e1","date":"2025-01-01","amount":1,"category":"Food","description":"old"}]`)
	writeFile(t, filepath.Join(dir, "b.json"),
		`{"expenses":[{"id":"e1","date":"2025-01-01","amount":2,"category":"Food","description":"new"}],
		  "budgets":[{"id":"b1","name":"Food","category":"Food","amount":50,"period":"monthly","startDate":"2025-01-01"}]}`)
	writeFile(t, filepath.Join(dir, "broken.json"), `{"nope":true}`)

	var calls atomic.Int32
	result, err := Load(dir, func(current, total int) {
		calls.Add(1)
		if total != 3 {
			t.Errorf("progress total = %d, want 3", total)
		}
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("progress calls = %d, want 3", n)
	}
	if result.ParsedFiles != 2 || result.FileErrors != 1 {
		t.Fatalf("parsed/errors = %d/%d, want 2/1", result.ParsedFiles, result.FileErrors)
	}
	if len(result.Expenses) != 1 || result.Expenses[0].Description != "new" {
		t.Fatalf("expenses = %+v, want single merged record", result.Expenses)
	}
	if len(result.Budgets) != 1 {
		t.Fatalf("budgets = %d, want 1", len(result.Budgets))
	}
}

func TestImport_SkipsUnchangedFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "export.json"),
		`[{"id":"e1","date":"2025-01-01","amount":1,"category":"Food","description":"Snack"}]`)

	st, err := store.Open(filepath.Join(t.TempDir(), "moneyplan.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer func() { _ = st.Close() }()

	first, err := Import(ctx, dir, st, nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if first.Imported != 1 || first.Unchanged != 0 || len(first.Expenses) != 1 {
		t.Fatalf("first import = %+v", first)
	}

	second, err := Import(ctx, dir, st, nil)
	if err != nil {
		t.Fatalf("Import again: %v", err)
	}
	if second.Imported != 0 || second.Unchanged != 1 {
		t.Fatalf("second import = %+v, want everything unchanged", second)
	}

	// Appending a record changes the size, so the file is re-imported.
	writeFile(t, filepath.Join(dir, "export.json"),
		`[{"id":"e1","date":"2025-01-01","amount":1,"category":"Food","description":"Snack"},
		  {"id":"e2","date":"2025-01-02","amount":3,"category":"Tech","description":"Charger"}]`)
	third, err := Import(ctx, dir, st, nil)
	if err != nil {
		t.Fatalf("Import third: %v", err)
	}
	if third.Imported != 1 {
		t.Fatalf("third import = %+v, want the file re-imported", third)
	}

	expenses, err := st.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("stored expenses = %d, want 2", len(expenses))
	}
}
