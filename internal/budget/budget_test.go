package budget

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/moneyplan/internal/model"
)

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expense(t *testing.T, date string, amount string, c model.Category) model.Expense {
	t.Helper()
	return model.Expense{
		ID:          date + "-" + amount,
		Date:        mustDate(t, date),
		Amount:      dec(amount),
		Category:    c,
		Description: "test",
	}
}

func foodBudget(t *testing.T) model.Budget {
	t.Helper()
	return model.Budget{
		ID:             "food",
		Name:           "Food",
		Category:       model.CategoryOf(model.Food),
		Amount:         dec("100"),
		Period:         model.Monthly,
		StartDate:      mustDate(t, "2025-01-01"),
		AlertThreshold: 80,
		IsActive:       true,
	}
}

var midMay = time.Date(2025, time.May, 10, 12, 0, 0, 0, time.UTC)

func TestResolvePeriod(t *testing.T) {
	wed := time.Date(2025, time.May, 7, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		period     model.Period
		now        time.Time
		start, end string
	}{
		{model.Monthly, wed, "2025-05-01", "2025-05-31"},
		{model.Monthly, time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), "2024-02-01", "2024-02-29"},
		{model.Weekly, wed, "2025-05-04", "2025-05-10"},
		{model.Weekly, time.Date(2025, time.May, 4, 0, 0, 0, 0, time.UTC), "2025-05-04", "2025-05-10"},
		{model.Weekly, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), "2024-12-29", "2025-01-04"},
		{model.Yearly, wed, "2025-01-01", "2025-12-31"},
		{model.Period("fortnightly"), wed, "2025-05-01", "2025-05-31"},
	}
	for _, tc := range cases {
		w := ResolvePeriod(tc.period, tc.now)
		if w.Start.String() != tc.start || w.End.String() != tc.end {
			t.Fatalf("ResolvePeriod(%s, %s) = [%s, %s], want [%s, %s]",
				tc.period, tc.now.Format("2006-01-02"), w.Start, w.End, tc.start, tc.end)
		}
	}
}

func TestResolvePeriod_UsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 2025-05-31T20:00Z is already June 1st in UTC+10.
	now := time.Date(2025, time.May, 31, 20, 0, 0, 0, time.UTC).In(loc)
	w := ResolvePeriod(model.Monthly, now)
	if w.Start.String() != "2025-06-01" {
		t.Fatalf("start = %s, want 2025-06-01", w.Start)
	}
	if got := ResolvePeriod(model.Yearly, now).Days(); got != 365 {
		t.Fatalf("yearly days = %d, want 365", got)
	}
}

func TestCalculateProgress_Scenarios(t *testing.T) {
	b := foodBudget(t)
	expenses := []model.Expense{
		expense(t, "2025-05-02", "30", model.Food),
		expense(t, "2025-05-03", "45", model.Food),
	}

	// A
	p := CalculateProgress(b, expenses, midMay)
	if !p.Spent.Equal(dec("75")) || !p.Remaining.Equal(dec("25")) {
		t.Fatalf("A: spent/remaining = %s/%s, want 75/25", p.Spent, p.Remaining)
	}
	if p.Percentage != 75 || p.IsOverBudget || p.ShouldAlert {
		t.Fatalf("A: pct=%v over=%v alert=%v, want 75 false false", p.Percentage, p.IsOverBudget, p.ShouldAlert)
	}

	// B
	expenses = append(expenses, expense(t, "2025-05-04", "10", model.Food))
	p = CalculateProgress(b, expenses, midMay)
	if !p.Spent.Equal(dec("85")) || p.Percentage != 85 || !p.ShouldAlert || p.IsOverBudget {
		t.Fatalf("B: spent=%s pct=%v alert=%v over=%v, want 85 85 true false",
			p.Spent, p.Percentage, p.ShouldAlert, p.IsOverBudget)
	}

	// C
	expenses = append(expenses, expense(t, "2025-05-05", "20", model.Food))
	p = CalculateProgress(b, expenses, midMay)
	if !p.Spent.Equal(dec("105")) || !p.Remaining.IsZero() || !p.IsOverBudget {
		t.Fatalf("C: spent=%s remaining=%s over=%v, want 105 0 true", p.Spent, p.Remaining, p.IsOverBudget)
	}
	if !p.DailyAllowance.IsZero() {
		t.Fatalf("C: daily allowance = %s, want 0", p.DailyAllowance)
	}
}

func TestCalculateProgress_WindowAndCategory(t *testing.T) {
	b := foodBudget(t)
	expenses := []model.Expense{
		expense(t, "2025-04-30", "50", model.Food),  // previous month
		expense(t, "2025-05-01", "10", model.Food),  // first day, inclusive
		expense(t, "2025-05-31", "5", model.Food),   // last day, inclusive
		expense(t, "2025-06-01", "50", model.Food),  // next month
		expense(t, "2025-05-09", "40", model.Bills), // other category
		{Amount: dec("99"), Category: model.Food},   // undated
	}
	p := CalculateProgress(b, expenses, midMay)
	if !p.Spent.Equal(dec("15")) {
		t.Fatalf("spent = %s, want 15", p.Spent)
	}
	if p.PeriodStart.String() != "2025-05-01" || p.PeriodEnd.String() != "2025-05-31" {
		t.Fatalf("period = [%s, %s], want May", p.PeriodStart, p.PeriodEnd)
	}

	b.Category = model.TotalCategory()
	p = CalculateProgress(b, expenses, midMay)
	if !p.Spent.Equal(dec("55")) {
		t.Fatalf("Total spent = %s, want 55 (all categories in window)", p.Spent)
	}
}

func TestCalculateProgress_CategoryPartition(t *testing.T) {
	var expenses []model.Expense
	for i, c := range model.Categories {
		expenses = append(expenses, expense(t, "2025-05-0"+string(rune('1'+i)), "7", c))
	}

	total := foodBudget(t)
	total.Category = model.TotalCategory()
	totalSpent := CalculateProgress(total, expenses, midMay).Spent

	sum := decimal.Zero
	for _, c := range model.Categories {
		b := foodBudget(t)
		b.Category = model.CategoryOf(c)
		sum = sum.Add(CalculateProgress(b, expenses, midMay).Spent)
	}
	if !sum.Equal(totalSpent) {
		t.Fatalf("sum of category spends = %s, Total spend = %s", sum, totalSpent)
	}
}

func TestCalculateProgress_ZeroAmount(t *testing.T) {
	b := foodBudget(t)
	b.Amount = decimal.Zero
	p := CalculateProgress(b, []model.Expense{expense(t, "2025-05-02", "12", model.Food)}, midMay)
	if p.Percentage != 0 {
		t.Fatalf("percentage = %v, want 0", p.Percentage)
	}
	if !p.DailyAllowance.IsZero() || !p.Remaining.IsZero() {
		t.Fatalf("allowance/remaining = %s/%s, want 0/0", p.DailyAllowance, p.Remaining)
	}
	if !p.IsOverBudget {
		t.Fatal("spending against a zero budget should be over budget")
	}
}

func TestCalculateProgress_NegativeAmountsClamp(t *testing.T) {
	b := foodBudget(t)
	p := CalculateProgress(b, []model.Expense{
		expense(t, "2025-05-02", "-40", model.Food),
		expense(t, "2025-05-03", "10", model.Food),
	}, midMay)
	if !p.Spent.Equal(dec("10")) {
		t.Fatalf("spent = %s, want 10 (negative expense ignored)", p.Spent)
	}
}

func TestCalculateProgress_DaysRemaining(t *testing.T) {
	b := foodBudget(t)
	// Midnight of May 31 is 20.5 days after midday May 10.
	p := CalculateProgress(b, nil, midMay)
	if p.DaysRemaining != 21 {
		t.Fatalf("days remaining = %d, want 21", p.DaysRemaining)
	}
	if !p.DailyAllowance.Equal(dec("100").Div(dec("21"))) {
		t.Fatalf("daily allowance = %s, want 100/21", p.DailyAllowance)
	}

	lastDay := time.Date(2025, time.May, 31, 8, 0, 0, 0, time.UTC)
	p = CalculateProgress(b, nil, lastDay)
	if p.DaysRemaining != 0 || !p.DailyAllowance.IsZero() {
		t.Fatalf("last day: remaining=%d allowance=%s, want 0 and 0", p.DaysRemaining, p.DailyAllowance)
	}

	b.Period = model.Weekly
	wed := time.Date(2025, time.May, 7, 0, 0, 0, 0, time.UTC)
	if got := CalculateProgress(b, nil, wed).DaysRemaining; got != 3 {
		t.Fatalf("weekly days remaining = %d, want 3", got)
	}
}

func TestCalculateProgress_AlertThresholdBoundary(t *testing.T) {
	b := foodBudget(t)
	b.AlertThreshold = 80
	p := CalculateProgress(b, []model.Expense{expense(t, "2025-05-02", "80", model.Food)}, midMay)
	if !p.ShouldAlert {
		t.Fatal("percentage equal to threshold should alert")
	}
	b.AlertThreshold = 0
	if !CalculateProgress(b, nil, midMay).ShouldAlert {
		t.Fatal("a zero threshold alerts even with no spend")
	}
}

func TestCalculateProgress_Monotonic(t *testing.T) {
	b := foodBudget(t)
	base := []model.Expense{expense(t, "2025-05-02", "60", model.Food)}
	before := CalculateProgress(b, base, midMay)
	after := CalculateProgress(b, append(base, expense(t, "2025-05-03", "25", model.Food)), midMay)

	if after.Spent.LessThan(before.Spent) || after.Percentage < before.Percentage {
		t.Fatal("adding an expense decreased spent or percentage")
	}
	if after.Remaining.GreaterThan(before.Remaining) || after.DailyAllowance.GreaterThan(before.DailyAllowance) {
		t.Fatal("adding an expense increased remaining or allowance")
	}
	if before.IsOverBudget && !after.IsOverBudget {
		t.Fatal("adding an expense cleared the over-budget flag")
	}
}

func TestCalculateProgress_DoesNotMutateInputs(t *testing.T) {
	b := foodBudget(t)
	expenses := []model.Expense{expense(t, "2025-05-02", "30", model.Food)}
	snapshot := append([]model.Expense(nil), expenses...)
	CalculateProgress(b, expenses, midMay)
	if !reflect.DeepEqual(expenses, snapshot) {
		t.Fatal("CalculateProgress modified its expense slice")
	}
}

func TestGenerateSummary(t *testing.T) {
	food := foodBudget(t)
	bills := foodBudget(t)
	bills.ID, bills.Name = "bills", "Bills"
	bills.Category = model.CategoryOf(model.Bills)
	bills.Amount = dec("50")
	inactive := foodBudget(t)
	inactive.ID, inactive.IsActive = "off", false

	expenses := []model.Expense{
		expense(t, "2025-05-02", "85", model.Food),
		expense(t, "2025-05-02", "70", model.Bills),
	}

	s := GenerateSummary([]model.Budget{food, inactive, bills}, expenses, midMay)
	if len(s.BudgetProgress) != 2 {
		t.Fatalf("progress entries = %d, want 2", len(s.BudgetProgress))
	}
	if s.BudgetProgress[0].Budget.ID != "food" || s.BudgetProgress[1].Budget.ID != "bills" {
		t.Fatal("summary did not preserve input budget order")
	}
	if !s.TotalBudgeted.Equal(dec("150")) || !s.TotalSpent.Equal(dec("155")) {
		t.Fatalf("budgeted/spent = %s/%s, want 150/155", s.TotalBudgeted, s.TotalSpent)
	}
	if !s.TotalRemaining.IsZero() {
		t.Fatalf("total remaining = %s, want 0", s.TotalRemaining)
	}
	if s.OverBudgetCount != 1 || s.AlertCount != 2 {
		t.Fatalf("over/alert = %d/%d, want 1/2", s.OverBudgetCount, s.AlertCount)
	}

	again := GenerateSummary([]model.Budget{food, inactive, bills}, expenses, midMay)
	if !reflect.DeepEqual(s, again) {
		t.Fatal("GenerateSummary is not idempotent")
	}
}

func TestGenerateSummary_Empty(t *testing.T) {
	s := GenerateSummary(nil, nil, midMay)
	if !s.TotalBudgeted.IsZero() || !s.TotalSpent.IsZero() || len(s.BudgetProgress) != 0 {
		t.Fatalf("empty summary = %+v, want zero values", s)
	}
}

func streakBudget(t *testing.T) model.Budget {
	t.Helper()
	return model.Budget{
		ID:        "total",
		Name:      "Everything",
		Category:  model.TotalCategory(),
		Amount:    dec("70"),
		Period:    model.Monthly,
		StartDate: mustDate(t, "2025-05-01"),
		IsActive:  true,
	}
}

func TestCalculateStreak_NoBudgets(t *testing.T) {
	if got := CalculateStreak([]model.Expense{expense(t, "2025-05-02", "5", model.Food)}, nil, midMay); got != 0 {
		t.Fatalf("streak = %d, want 0", got)
	}
}

func TestCalculateStreak_NoExpensesCaps(t *testing.T) {
	got := CalculateStreak(nil, []model.Budget{streakBudget(t)}, midMay)
	if got != MaxStreak {
		t.Fatalf("streak = %d, want %d", got, MaxStreak)
	}
}

func TestCalculateStreak_BreaksOnOverspendDay(t *testing.T) {
	now := time.Date(2025, time.May, 20, 18, 0, 0, 0, time.UTC)
	expenses := []model.Expense{expense(t, "2025-05-05", "200", model.Food)}
	// May 6 through May 20 count; May 5 breaks.
	got := CalculateStreak(expenses, []model.Budget{streakBudget(t)}, now)
	if got != 15 {
		t.Fatalf("streak = %d, want 15", got)
	}
}

func TestCalculateStreak_CumulativeCheckIsRetroactive(t *testing.T) {
	now := time.Date(2025, time.May, 20, 18, 0, 0, 0, time.UTC)
	expenses := []model.Expense{
		expense(t, "2025-05-02", "200", model.Food),
		expense(t, "2025-05-18", "1", model.Food),
	}
	// The small spend on May 18 is judged with May 2's spend included.
	got := CalculateStreak(expenses, []model.Budget{streakBudget(t)}, now)
	if got != 2 {
		t.Fatalf("streak = %d, want 2", got)
	}
}

func TestCalculateStreak_WithinAllowance(t *testing.T) {
	b := streakBudget(t)
	end := mustDate(t, "2025-05-31")
	b.EndDate = &end
	b.Amount = dec("300") // 10 per day over 30 days

	now := time.Date(2025, time.May, 10, 12, 0, 0, 0, time.UTC)
	var expenses []model.Expense
	for d := 1; d <= 10; d++ {
		expenses = append(expenses, model.Expense{
			Date:     model.NewDate(2025, time.May, d),
			Amount:   dec("10"),
			Category: model.Food,
		})
	}
	if got := CalculateStreak(expenses, []model.Budget{b}, now); got != MaxStreak {
		t.Fatalf("streak = %d, want %d", got, MaxStreak)
	}

	// One cent over the cumulative allowance on the latest day.
	expenses[9].Amount = dec("10.01")
	if got := CalculateStreak(expenses, []model.Budget{b}, now); got != 0 {
		t.Fatalf("streak = %d, want 0", got)
	}
}

func TestCalculateStreak_IgnoresBudgetsOutsideDay(t *testing.T) {
	b := streakBudget(t)
	b.StartDate = mustDate(t, "2025-05-15")
	b.Category = model.CategoryOf(model.Food)

	now := time.Date(2025, time.May, 20, 12, 0, 0, 0, time.UTC)
	expenses := []model.Expense{
		expense(t, "2025-05-10", "500", model.Food),  // before start
		expense(t, "2025-05-19", "500", model.Bills), // other category
	}
	if got := CalculateStreak(expenses, []model.Budget{b}, now); got != MaxStreak {
		t.Fatalf("streak = %d, want %d", got, MaxStreak)
	}
}

func TestCalculateStreak_ZeroLengthBudgetNeverBreaks(t *testing.T) {
	b := streakBudget(t)
	b.StartDate = mustDate(t, "2025-05-20")
	end := b.StartDate
	b.EndDate = &end

	now := time.Date(2025, time.May, 20, 12, 0, 0, 0, time.UTC)
	expenses := []model.Expense{expense(t, "2025-05-20", "1000", model.Food)}
	if got := CalculateStreak(expenses, []model.Budget{b}, now); got != MaxStreak {
		t.Fatalf("streak = %d, want %d", got, MaxStreak)
	}
}

func TestCalculateStreak_SkipsInactiveBudgets(t *testing.T) {
	b := streakBudget(t)
	b.IsActive = false

	expenses := []model.Expense{expense(t, "2025-05-09", "500", model.Food)}
	if got := CalculateStreak(expenses, []model.Budget{b}, midMay); got != MaxStreak {
		t.Fatalf("streak = %d, want %d", got, MaxStreak)
	}

	// An active budget next to the disabled one still breaks it.
	active := streakBudget(t)
	active.ID = "active"
	if got := CalculateStreak(expenses, []model.Budget{b, active}, midMay); got != 1 {
		t.Fatalf("streak with active budget = %d, want 1", got)
	}
}

func TestCalculateStreak_OpenEndedLengthRoundsUp(t *testing.T) {
	b := streakBudget(t)
	b.StartDate = mustDate(t, "2025-05-20")
	b.Amount = dec("365")
	expenses := []model.Expense{expense(t, "2025-05-20", "1", model.Food)}

	// At midnight the budget spans exactly 365 days, so 1 per day is allowed.
	midnight := time.Date(2025, time.May, 20, 0, 0, 0, 0, time.UTC)
	if got := CalculateStreak(expenses, []model.Budget{b}, midnight); got != MaxStreak {
		t.Fatalf("streak at midnight = %d, want %d", got, MaxStreak)
	}

	// Later that day it spans 366 days and the allowance drops below 1.
	evening := time.Date(2025, time.May, 20, 18, 0, 0, 0, time.UTC)
	if got := CalculateStreak(expenses, []model.Budget{b}, evening); got != 0 {
		t.Fatalf("streak in the evening = %d, want 0", got)
	}
}

func TestBadgeFor(t *testing.T) {
	cases := []struct {
		days  int
		title string
		msg   string
	}{
		{0, "Getting Started", "Start your streak!"},
		{1, "Getting Started", "1 day on budget!"},
		{3, "Budget Star", "3 days on budget!"},
		{7, "Budget Hero", "7 days on budget!"},
		{14, "Budget Champion", "14 days on budget!"},
		{29, "Budget Champion", "29 days on budget!"},
		{365, "Budget Master", "365 days on budget!"},
	}
	for _, tc := range cases {
		b := BadgeFor(tc.days)
		if b.Title != tc.title || b.Message() != tc.msg {
			t.Fatalf("BadgeFor(%d) = %q/%q, want %q/%q", tc.days, b.Title, b.Message(), tc.title, tc.msg)
		}
	}
}
