package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateJSON_RoundTrip(t *testing.T) {
	d := NewDate(2025, time.March, 9)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2025-03-09"` {
		t.Fatalf("marshal = %s, want \"2025-03-09\"", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip = %s, want %s", back, d)
	}
}

func TestDateJSON_NullAndTimestamp(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`null`), &d); err != nil || !d.IsZero() {
		t.Fatalf("null -> %v (err %v), want zero date", d, err)
	}
	if err := json.Unmarshal([]byte(`"2025-06-30T18:04:05Z"`), &d); err != nil {
		t.Fatalf("unmarshal timestamp: %v", err)
	}
	if d.String() != "2025-06-30" {
		t.Fatalf("timestamp date = %s, want 2025-06-30", d)
	}
	data, _ := json.Marshal(Date{})
	if string(data) != "null" {
		t.Fatalf("zero date marshal = %s, want null", data)
	}
}

func TestDate_DaysSinceAcrossDST(t *testing.T) {
	from := NewDate(2025, time.March, 1)
	to := NewDate(2025, time.April, 1)
	if got := to.DaysSince(from); got != 31 {
		t.Fatalf("DaysSince = %d, want 31", got)
	}
	if got := from.DaysSince(to); got != -31 {
		t.Fatalf("reverse DaysSince = %d, want -31", got)
	}
}

func TestDateOf_UsesOwnLocation(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	late := time.Date(2025, 1, 31, 23, 30, 0, 0, loc)
	if got := DateOf(late).String(); got != "2025-01-31" {
		t.Fatalf("DateOf = %s, want 2025-01-31", got)
	}
}

func TestDate_Scan(t *testing.T) {
	var d Date
	if err := d.Scan("2024-02-29"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if d.Month() != time.February || d.Day() != 29 {
		t.Fatalf("scanned %s, want 2024-02-29", d)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Fatalf("scan nil = %v (err %v), want zero", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Fatal("scan int should fail")
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("  food ")
	if err != nil || c != Food {
		t.Fatalf("ParseCategory(food) = %q, %v; want Food", c, err)
	}

	_, err = ParseCategory("Transportaton")
	if err == nil || !strings.Contains(err.Error(), "Transportation") {
		t.Fatalf("typo error = %v, want suggestion of Transportation", err)
	}

	if _, err := ParseCategory("Total"); err == nil {
		t.Fatal("ParseCategory(Total) should be rejected for expenses")
	}
	_, err = ParseCategory("zzzzzzzzzz")
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("far-off name error = %v, want no suggestion", err)
	}
}

func TestBudgetCategory_Matches(t *testing.T) {
	total := TotalCategory()
	for _, c := range Categories {
		if !total.Matches(c) {
			t.Fatalf("Total should match %s", c)
		}
	}
	food := CategoryOf(Food)
	if !food.Matches(Food) || food.Matches(Bills) {
		t.Fatal("Food budget should match only Food")
	}
	if food.IsTotal() || !total.IsTotal() {
		t.Fatal("IsTotal mismatch")
	}
}

func TestBudgetCategory_JSON(t *testing.T) {
	b := Budget{Category: TotalCategory(), Amount: decimal.RequireFromString("100.10")}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"category":"Total"`) {
		t.Fatalf("marshal = %s, want category Total", data)
	}

	var back Budget
	raw := `{"category":"Tech","amount":"12.345","period":"weekly","startDate":"2025-01-01"}`
	if err := json.Unmarshal([]byte(raw), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Category.Category() != Tech {
		t.Fatalf("category = %s, want Tech", back.Category)
	}
	if !back.Amount.Equal(decimal.RequireFromString("12.345")) {
		t.Fatalf("amount = %s, want 12.345", back.Amount)
	}
	if back.EndDate != nil {
		t.Fatalf("endDate = %v, want nil", back.EndDate)
	}

	if err := json.Unmarshal([]byte(`{"category":"Snacks"}`), &back); err == nil {
		t.Fatal("unknown budget category should fail to decode")
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("Yearly")
	if err != nil || p != Yearly {
		t.Fatalf("ParsePeriod(Yearly) = %q, %v", p, err)
	}
	if _, err := ParsePeriod("daily"); err == nil {
		t.Fatal("ParsePeriod(daily) should fail")
	}
}

func TestValidateExpense(t *testing.T) {
	now := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	ok := Expense{
		Date:        NewDate(2025, time.May, 10),
		Amount:      decimal.NewFromInt(5),
		Category:    Food,
		Description: "Lunch",
	}
	if err := ValidateExpense(ok, now); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	bad := Expense{
		Date:        NewDate(2025, time.May, 11),
		Amount:      decimal.Zero,
		Description: " ab ",
	}
	err := ValidateExpense(bad, now)
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want FieldErrors", err)
	}
	for _, field := range []string{"date", "amount", "category", "description"} {
		if _, ok := fe[field]; !ok {
			t.Fatalf("missing error for %s in %v", field, fe)
		}
	}
}

func TestValidateBudget(t *testing.T) {
	start := NewDate(2025, time.June, 1)
	end := NewDate(2025, time.May, 1)
	b := Budget{
		Name:           "",
		Category:       CategoryOf(Food),
		Amount:         decimal.NewFromInt(-1),
		Period:         "daily",
		StartDate:      start,
		EndDate:        &end,
		AlertThreshold: 120,
	}
	err := ValidateBudget(b)
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want FieldErrors", err)
	}
	if len(fe) != 5 {
		t.Fatalf("got %d field errors (%v), want 5", len(fe), fe)
	}

	b.Name = "Groceries"
	b.Amount = decimal.NewFromInt(300)
	b.Period = Monthly
	b.EndDate = nil
	b.AlertThreshold = 80
	if err := ValidateBudget(b); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}
}
