package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/moneyplan/internal/model"
)

// writeExport creates a temp JSON file and returns a DiscoveredFile for it.
func writeExport(t *testing.T, body string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "export.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path}
}

func TestParseFile_ExpenseArray(t *testing.T) {
	df := writeExport(t, `[
		{"id":"exp-1","date":"2024-11-01","amount":12.50,"category":"Food","description":"Lunch","createdAt":"2024-11-01T12:00:00Z","updatedAt":"2024-11-01T12:00:00Z"},
		{"id":"exp-2","date":"2024-11-02","amount":"25.00","category":"entertainment","description":"Movie"},
		{"id":"exp-3","date":"not a date","amount":1,"category":"Food","description":"bad"},
		{"id":"exp-4","date":"2024-11-03","amount":3,"category":"Snacks","description":"bad"}
	]`)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Expenses) != 2 {
		t.Fatalf("expenses = %d, want 2", len(result.Expenses))
	}
	if result.ParseErrors != 2 {
		t.Errorf("ParseErrors = %d, want 2", result.ParseErrors)
	}

	e := result.Expenses[0]
	if e.Amount.String() != "12.5" || e.Date.String() != "2024-11-01" || e.Category != model.Food {
		t.Errorf("first expense = %+v", e)
	}
	if e.CreatedAt.IsZero() {
		t.Error("createdAt was not parsed")
	}
	if result.Expenses[1].Category != model.Entertainment {
		t.Errorf("category = %q, want Entertainment", result.Expenses[1].Category)
	}
}

func TestParse_Envelope(t *testing.T) {
	result := Parse([]byte(`{
		"budgets": [
			{"id":"budget-1","name":"Monthly Food Budget","category":"Food","amount":80.00,"period":"Monthly","alertThreshold":75,"startDate":"2024-11-01","endDate":"2024-11-30"},
			{"id":"budget-2","name":"Everything","category":"Total","amount":500,"period":"yearly","startDate":"2024-01-01","isActive":false}
		],
		"expenses": [
			{"id":"exp-1","date":"2024-11-01","amount":12.5,"category":"Food","description":"Lunch"}
		]
	}`))
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Budgets) != 2 || len(result.Expenses) != 1 {
		t.Fatalf("budgets/expenses = %d/%d, want 2/1", len(result.Budgets), len(result.Expenses))
	}

	food := result.Budgets[0]
	if food.Period != model.Monthly || food.AlertThreshold != 75 || !food.IsActive {
		t.Errorf("food budget = %+v", food)
	}
	if food.EndDate == nil || food.EndDate.String() != "2024-11-30" {
		t.Errorf("end date = %v, want 2024-11-30", food.EndDate)
	}

	total := result.Budgets[1]
	if !total.Category.IsTotal() || total.IsActive || total.AlertThreshold != 80 {
		t.Errorf("total budget = %+v", total)
	}
}

func TestParse_BrowserStorageDump(t *testing.T) {
	result := Parse([]byte(`{
		"expense-tracker-expenses": "[{\"id\":\"e1\",\"date\":\"2025-01-02\",\"amount\":4,\"category\":\"Tech\",\"description\":\"Cable\"}]",
		"expense-tracker-budgets": [{"id":"b1","name":"Tech","category":"Tech","amount":40,"period":"weekly","startDate":"2025-01-01"}],
		"expense-tracker-income": "[]"
	}`))
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Expenses) != 1 || result.Expenses[0].ID != "e1" {
		t.Fatalf("expenses = %+v", result.Expenses)
	}
	if len(result.Budgets) != 1 || result.Budgets[0].Period != model.Weekly {
		t.Fatalf("budgets = %+v", result.Budgets)
	}
}

func TestParse_StableIDsWithoutID(t *testing.T) {
	body := []byte(`[{"date":"2025-01-02","amount":4,"category":"Tech","description":"Cable"}]`)
	a := Parse(body)
	b := Parse(body)
	if len(a.Expenses) != 1 || a.Expenses[0].ID == "" {
		t.Fatalf("expenses = %+v", a.Expenses)
	}
	if a.Expenses[0].ID != b.Expenses[0].ID {
		t.Fatalf("ids differ across parses: %s vs %s", a.Expenses[0].ID, b.Expenses[0].ID)
	}
}

func TestParse_IdenticalExpensesWithoutIDStaySeparate(t *testing.T) {
	body := []byte(`[
		{"date":"2025-01-02","amount":3.5,"category":"Food","description":"Coffee"},
		{"date":"2025-01-02","amount":3.5,"category":"Food","description":"Coffee"}
	]`)
	result := Parse(body)
	if len(result.Expenses) != 2 {
		t.Fatalf("expenses = %d, want 2", len(result.Expenses))
	}
	if result.Expenses[0].ID == result.Expenses[1].ID {
		t.Fatalf("identical purchases share id %s", result.Expenses[0].ID)
	}

	again := Parse(body)
	for i := range result.Expenses {
		if again.Expenses[i].ID != result.Expenses[i].ID {
			t.Fatalf("expense %d id changed across parses: %s vs %s", i, result.Expenses[i].ID, again.Expenses[i].ID)
		}
	}
}

func TestParse_UnknownShape(t *testing.T) {
	for _, body := range []string{`{"foo": 1}`, `42`} {
		if err := Parse([]byte(body)).Err; !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("Parse(%s) err = %v, want ErrUnknownFormat", body, err)
		}
	}
	if err := Parse([]byte(`{"expenses": [`)).Err; err == nil {
		t.Error("truncated JSON should fail")
	}
	if pr := Parse([]byte("  ")); pr.Err != nil || len(pr.Expenses) != 0 {
		t.Errorf("empty input = %+v, want empty result", pr)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.JSON", "notes.txt", filepath.Join("sub", "c.json"), filepath.Join(".hidden", "d.json")} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("[]"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	var names []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f.Path)
		names = append(names, filepath.ToSlash(rel))
		if f.SizeBytes != 2 || f.MtimeNs == 0 {
			t.Errorf("%s: size=%d mtime=%d", rel, f.SizeBytes, f.MtimeNs)
		}
	}
	if got := strings.Join(names, ","); got != "a.JSON,b.json,sub/c.json" {
		t.Fatalf("files = %s, want a.JSON,b.json,sub/c.json", got)
	}

	missing, err := ScanDir(filepath.Join(dir, "nope"))
	if err != nil || missing != nil {
		t.Fatalf("missing dir = %v, %v; want nil, nil", missing, err)
	}
}
