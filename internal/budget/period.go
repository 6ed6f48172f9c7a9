// Package budget computes budget progress, summaries and the on-budget streak
// from budget and expense records. Every function is a pure function of its
// arguments; callers pass "now" explicitly and recompute on every read.
package budget

import (
	"time"

	"github.com/theirongolddev/moneyplan/internal/model"
)

// Window is an inclusive range of calendar dates.
type Window struct {
	Start model.Date
	End   model.Date
}

// Contains reports whether d falls inside the window. The zero date never does.
func (w Window) Contains(d model.Date) bool {
	if d.IsZero() {
		return false
	}
	return d.Between(w.Start, w.End)
}

// Days returns the number of calendar days in the window.
func (w Window) Days() int {
	return w.End.DaysSince(w.Start) + 1
}

// ResolvePeriod returns the calendar period of kind p that contains now, as seen
// in now's location. Weeks run Sunday through Saturday. Unknown periods resolve
// as monthly.
func ResolvePeriod(p model.Period, now time.Time) Window {
	today := model.DateOf(now)

	switch p {
	case model.Weekly:
		start := today.AddDays(-int(today.Weekday()))
		return Window{Start: start, End: start.AddDays(6)}
	case model.Yearly:
		return Window{
			Start: model.NewDate(today.Year(), time.January, 1),
			End:   model.NewDate(today.Year(), time.December, 31),
		}
	default:
		start := model.NewDate(today.Year(), today.Month(), 1)
		return Window{Start: start, End: start.AddMonths(1).AddDays(-1)}
	}
}
