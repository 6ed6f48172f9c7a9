package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/moneyplan/internal/model"
)

// TopCategoryCount is how many categories SummarizeExpenses ranks.
const TopCategoryCount = 5

// SummarizeExpenses computes all-time and current-month totals and the
// per-category breakdown, largest first.
func SummarizeExpenses(expenses []model.Expense, now time.Time) model.ExpenseSummary {
	thisMonth := model.DateOf(now).MonthKey()

	s := model.ExpenseSummary{
		TotalExpenses:   decimal.Zero,
		MonthlyTotal:    decimal.Zero,
		CategorySummary: []model.CategorySummary{},
		TopCategories:   []model.CategorySummary{},
	}
	byCat := make(map[model.Category]*model.CategorySummary)

	for _, e := range expenses {
		s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
		if e.Date.MonthKey() == thisMonth {
			s.MonthlyTotal = s.MonthlyTotal.Add(e.Amount)
		}
		cs, ok := byCat[e.Category]
		if !ok {
			cs = &model.CategorySummary{Category: e.Category, Amount: decimal.Zero}
			byCat[e.Category] = cs
		}
		cs.Amount = cs.Amount.Add(e.Amount)
		cs.Count++
	}

	for _, c := range categoryOrder(byCat) {
		cs := byCat[c]
		if s.TotalExpenses.IsPositive() {
			cs.Percentage = cs.Amount.Div(s.TotalExpenses).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		s.CategorySummary = append(s.CategorySummary, *cs)
	}
	sort.SliceStable(s.CategorySummary, func(i, j int) bool {
		return s.CategorySummary[i].Amount.GreaterThan(s.CategorySummary[j].Amount)
	})

	top := s.CategorySummary
	if len(top) > TopCategoryCount {
		top = top[:TopCategoryCount]
	}
	s.TopCategories = append(s.TopCategories, top...)
	return s
}

// categoryOrder lists the categories present in m, known ones first in
// display order.
func categoryOrder(m map[model.Category]*model.CategorySummary) []model.Category {
	var out []model.Category
	for _, c := range model.Categories {
		if _, ok := m[c]; ok {
			out = append(out, c)
		}
	}
	var extra []model.Category
	for c := range m {
		if !c.Valid() {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// MonthlyTotals sums expenses per calendar month, oldest month first.
func MonthlyTotals(expenses []model.Expense) []model.MonthlySpending {
	byMonth := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		key := e.Date.MonthKey()
		if key == "" {
			continue
		}
		byMonth[key] = byMonth[key].Add(e.Amount)
	}

	months := make([]model.MonthlySpending, 0, len(byMonth))
	for month, amount := range byMonth {
		months = append(months, model.MonthlySpending{Month: month, Amount: amount})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months
}

// DailyTotals sums expenses per day over [from, to], oldest first. Days with
// no spending are present with a zero amount.
func DailyTotals(expenses []model.Expense, from, to model.Date) []model.DailySpending {
	if to.Before(from) {
		return nil
	}
	byDay := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if e.Date.IsZero() || !e.Date.Between(from, to) {
			continue
		}
		key := e.Date.String()
		byDay[key] = byDay[key].Add(e.Amount)
	}

	days := make([]model.DailySpending, 0, to.DaysSince(from)+1)
	for d := from; !d.After(to); d = d.AddDays(1) {
		amount, ok := byDay[d.String()]
		if !ok {
			amount = decimal.Zero
		}
		days = append(days, model.DailySpending{Date: d, Amount: amount})
	}
	return days
}

// ExpenseFilter selects expenses for listing. Zero fields match everything.
type ExpenseFilter struct {
	Category string // a category name, or "" / "All"
	From     model.Date
	To       model.Date
	Search   string // case-insensitive substring of the description
}

// FilterExpenses returns the expenses matching f, preserving order.
func FilterExpenses(expenses []model.Expense, f ExpenseFilter) []model.Expense {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]model.Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Category != "" && !strings.EqualFold(f.Category, "All") && !strings.EqualFold(f.Category, string(e.Category)) {
			continue
		}
		if !f.From.IsZero() && e.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && e.Date.After(f.To) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		out = append(out, e)
	}
	return out
}
