package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/moneyplan/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "moneyplan.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moneyplan.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i+1, err)
		}
	}
}

func TestBudgetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	end := model.NewDate(2025, time.December, 31)
	saved, err := s.SaveBudget(ctx, model.Budget{
		Name:           "Groceries",
		Category:       model.CategoryOf(model.Food),
		Amount:         decimal.RequireFromString("412.37"),
		Period:         model.Monthly,
		StartDate:      model.NewDate(2025, time.January, 1),
		EndDate:        &end,
		AlertThreshold: 75.5,
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("saved budget missing id or timestamps: %+v", saved)
	}

	got, err := s.GetBudget(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if !got.Amount.Equal(saved.Amount) || got.Amount.String() != "412.37" {
		t.Fatalf("amount = %s, want 412.37", got.Amount)
	}
	if got.Category.Category() != model.Food || got.Period != model.Monthly {
		t.Fatalf("category/period = %s/%s", got.Category, got.Period)
	}
	if got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Fatalf("end date = %v, want %s", got.EndDate, end)
	}
	if got.AlertThreshold != 75.5 || !got.IsActive {
		t.Fatalf("threshold/active = %v/%v", got.AlertThreshold, got.IsActive)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, saved.CreatedAt)
	}
}

func TestSaveBudget_FullReplace(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	end := model.NewDate(2025, time.June, 30)
	first, err := s.SaveBudget(ctx, model.Budget{
		ID:        "b1",
		Name:      "Everything",
		Category:  model.TotalCategory(),
		Amount:    decimal.NewFromInt(1000),
		Period:    model.Monthly,
		StartDate: model.NewDate(2025, time.January, 1),
		EndDate:   &end,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}

	edit := first
	edit.Name = "Weekly fun"
	edit.Category = model.CategoryOf(model.Entertainment)
	edit.Period = model.Weekly
	edit.EndDate = nil
	if _, err := s.SaveBudget(ctx, edit); err != nil {
		t.Fatalf("SaveBudget edit: %v", err)
	}

	budgets, err := s.ListBudgets(ctx)
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("budgets = %d, want 1", len(budgets))
	}
	b := budgets[0]
	if b.Name != "Weekly fun" || b.Period != model.Weekly || b.EndDate != nil {
		t.Fatalf("edit not fully applied: %+v", b)
	}
	if !b.Category.Matches(model.Entertainment) || b.Category.Matches(model.Food) {
		t.Fatalf("category = %s, want Entertainment", b.Category)
	}
}

func TestSaveBudget_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	created := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)
	first, err := s.SaveBudget(ctx, model.Budget{
		Name:      "Transit",
		Category:  model.CategoryOf(model.Transport),
		Amount:    decimal.NewFromInt(80),
		Period:    model.Monthly,
		StartDate: model.NewDate(2024, time.March, 1),
		IsActive:  true,
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}

	edit := first
	edit.CreatedAt = time.Time{}
	edit.Amount = decimal.NewFromInt(90)
	saved, err := s.SaveBudget(ctx, edit)
	if err != nil {
		t.Fatalf("SaveBudget edit: %v", err)
	}
	if !saved.CreatedAt.Equal(created) {
		t.Fatalf("returned CreatedAt = %v, want %v", saved.CreatedAt, created)
	}
	if !saved.Amount.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("returned Amount = %s, want 90", saved.Amount)
	}

	stored, err := s.GetBudget(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if !stored.CreatedAt.Equal(saved.CreatedAt) {
		t.Fatalf("stored CreatedAt = %v, returned %v", stored.CreatedAt, saved.CreatedAt)
	}
}

func TestSetBudgetActiveAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	b, err := s.SaveBudget(ctx, model.Budget{
		Name: "Bills", Category: model.CategoryOf(model.Bills),
		Amount: decimal.NewFromInt(200), Period: model.Monthly,
		StartDate: model.NewDate(2025, time.March, 1), IsActive: true,
	})
	if err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}

	if err := s.SetBudgetActive(ctx, b.ID, false); err != nil {
		t.Fatalf("SetBudgetActive: %v", err)
	}
	got, _ := s.GetBudget(ctx, b.ID)
	if got.IsActive {
		t.Fatal("budget still active after disable")
	}

	counts, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.Budgets != 1 || counts.ActiveBudgets != 0 {
		t.Fatalf("counts = %+v, want 1 budget, 0 active", counts)
	}

	if err := s.DeleteBudget(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}
	if _, err := s.GetBudget(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetBudget after delete err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteBudget(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
	if err := s.SetBudgetActive(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetBudgetActive(missing) err = %v, want ErrNotFound", err)
	}
}

func TestExpenses(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, e := range []model.Expense{
		{Date: model.NewDate(2025, time.May, 1), Amount: decimal.RequireFromString("0.10"), Category: model.Food, Description: "Gum"},
		{Date: model.NewDate(2025, time.May, 3), Amount: decimal.RequireFromString("19.99"), Category: model.Tech, Description: "Cable"},
		{Date: model.NewDate(2025, time.May, 2), Amount: decimal.RequireFromString("0.20"), Category: model.Food, Description: "Mints"},
	} {
		if _, err := s.SaveExpense(ctx, e); err != nil {
			t.Fatalf("SaveExpense: %v", err)
		}
	}

	expenses, err := s.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 3 {
		t.Fatalf("expenses = %d, want 3", len(expenses))
	}
	if expenses[0].Description != "Cable" || expenses[2].Description != "Gum" {
		t.Fatalf("order = %s, %s, %s; want newest first", expenses[0].Description, expenses[1].Description, expenses[2].Description)
	}

	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	if sum.String() != "20.29" {
		t.Fatalf("sum = %s, want 20.29 exactly", sum)
	}

	if err := s.DeleteExpense(ctx, expenses[0].ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if _, err := s.GetExpense(ctx, expenses[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetExpense after delete err = %v, want ErrNotFound", err)
	}
}

func TestImportFileAndTracking(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	expenses := []model.Expense{
		{ID: "e1", Date: model.NewDate(2025, time.April, 1), Amount: decimal.NewFromInt(5), Category: model.Other, Description: "Stamps"},
	}
	fi := FileInfo{MtimeNs: 42, SizeBytes: 100}
	if err := s.ImportFile(ctx, "/tmp/export.json", fi, nil, expenses); err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	// Re-importing the same ids updates in place.
	expenses[0].Description = "Stamps and envelopes"
	if err := s.ImportFile(ctx, "/tmp/export.json", FileInfo{MtimeNs: 43, SizeBytes: 120}, nil, expenses); err != nil {
		t.Fatalf("ImportFile again: %v", err)
	}

	got, err := s.GetExpense(ctx, "e1")
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Description != "Stamps and envelopes" {
		t.Fatalf("description = %q, want updated", got.Description)
	}

	tracked, err := s.TrackedFiles(ctx)
	if err != nil {
		t.Fatalf("TrackedFiles: %v", err)
	}
	if tracked["/tmp/export.json"] != (FileInfo{MtimeNs: 43, SizeBytes: 120}) {
		t.Fatalf("tracked = %+v", tracked)
	}

	counts, _ := s.Counts(ctx)
	if counts.Expenses != 1 || counts.ImportedFiles != 1 {
		t.Fatalf("counts = %+v, want 1 expense and 1 file", counts)
	}
}
