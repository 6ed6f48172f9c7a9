package budget

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/moneyplan/internal/model"
)

var hundred = decimal.NewFromInt(100)

// CalculateProgress returns the state of b for the calendar period containing
// now. It never fails: negative amounts count as zero and undated expenses
// fall outside every window.
func CalculateProgress(b model.Budget, expenses []model.Expense, now time.Time) model.BudgetProgress {
	window := ResolvePeriod(b.Period, now)
	limit := nonNegative(b.Amount)

	spent := decimal.Zero
	for _, e := range expenses {
		if !window.Contains(e.Date) || !b.Category.Matches(e.Category) {
			continue
		}
		spent = spent.Add(nonNegative(e.Amount))
	}

	p := model.BudgetProgress{
		Budget:         b,
		PeriodStart:    window.Start,
		PeriodEnd:      window.End,
		Spent:          spent,
		Remaining:      nonNegative(limit.Sub(spent)),
		IsOverBudget:   spent.GreaterThan(limit),
		DailyAllowance: decimal.Zero,
	}

	pct := decimal.Zero
	if limit.IsPositive() {
		pct = spent.Div(limit).Mul(hundred)
	}
	p.Percentage = pct.InexactFloat64()
	p.ShouldAlert = pct.GreaterThanOrEqual(decimal.NewFromFloat(b.AlertThreshold))

	p.DaysRemaining = daysUntil(window.End, now)
	if p.DaysRemaining > 0 {
		p.DailyAllowance = p.Remaining.Div(decimal.NewFromInt(int64(p.DaysRemaining)))
	}

	return p
}

// daysUntil counts the days, rounded up, from now to midnight at the start of
// end in now's location. It is zero once that midnight has passed.
func daysUntil(end model.Date, now time.Time) int {
	left := end.In(now.Location()).Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
