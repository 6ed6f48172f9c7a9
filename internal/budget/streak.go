package budget

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/moneyplan/internal/model"
)

// MaxStreak is how many days the streak walk looks back at most.
const MaxStreak = 365

// CalculateStreak counts consecutive days, walking back from now's calendar
// date, on which no budget's cumulative spend got ahead of its prorated
// allowance. Days without any expense always count.
//
// For each day with expenses, every active budget whose [StartDate, EndDate]
// range covers the day is checked. Open-ended budgets end 365 days after now,
// and their length is counted in whole days rounded up from that instant.
// Spend is summed from the budget's start date through the day and compared
// with amount/periodDays * elapsedDays. The first day that fails ends the
// walk without being counted.
func CalculateStreak(expenses []model.Expense, budgets []model.Budget, now time.Time) int {
	if len(budgets) == 0 {
		return 0
	}

	today := model.DateOf(now)
	horizon := today.AddDays(MaxStreak)

	spendDays := make(map[model.Date]struct{}, len(expenses))
	for _, e := range expenses {
		if !e.Date.IsZero() {
			spendDays[e.Date] = struct{}{}
		}
	}

	streak := 0
	for i := 0; i < MaxStreak; i++ {
		cursor := today.AddDays(-i)
		if _, ok := spendDays[cursor]; ok {
			for _, b := range budgets {
				if !b.IsActive {
					continue
				}
				if aheadOfSchedule(b, expenses, cursor, now, horizon) {
					return streak
				}
			}
		}
		streak++
	}
	return streak
}

// aheadOfSchedule reports whether b's spend from its start date through day
// exceeds the share of its amount allotted to the days elapsed so far.
func aheadOfSchedule(b model.Budget, expenses []model.Expense, day model.Date, now time.Time, horizon model.Date) bool {
	if b.StartDate.IsZero() {
		return false
	}
	end := horizon
	openEnded := b.EndDate == nil || b.EndDate.IsZero()
	if !openEnded {
		end = *b.EndDate
	}
	if !day.Between(b.StartDate, end) {
		return false
	}

	var periodDays int
	if openEnded {
		periodDays = openEndedDays(b.StartDate, now)
	} else {
		periodDays = end.DaysSince(b.StartDate)
	}
	if periodDays <= 0 {
		// A zero-length budget has an unbounded daily allowance.
		return false
	}
	elapsed := day.DaysSince(b.StartDate) + 1

	spent := decimal.Zero
	for _, e := range expenses {
		if e.Date.IsZero() || !b.Category.Matches(e.Category) {
			continue
		}
		if e.Date.Between(b.StartDate, day) {
			spent = spent.Add(nonNegative(e.Amount))
		}
	}

	// spent > amount/periodDays*elapsed, cross-multiplied to stay exact.
	lhs := spent.Mul(decimal.NewFromInt(int64(periodDays)))
	rhs := nonNegative(b.Amount).Mul(decimal.NewFromInt(int64(elapsed)))
	return lhs.GreaterThan(rhs)
}

// openEndedDays is the length of a budget with no end date: from midnight of
// start to now plus MaxStreak days, rounded up to whole days.
func openEndedDays(start model.Date, now time.Time) int {
	span := now.Add(MaxStreak * 24 * time.Hour).Sub(start.In(now.Location()))
	return int(math.Ceil(span.Hours() / 24))
}
