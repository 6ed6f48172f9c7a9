// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/moneyplan/internal/model"
)

// FormatMoney formats an amount as US dollars with thousands separators.
// e.g., 1234.5 -> "$1,234.50", -3 -> "-$3.00"
func FormatMoney(d decimal.Decimal) string {
	f := d.Round(2).InexactFloat64()
	if f < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -f)
	}
	return "$" + humanize.FormatFloat("#,###.##", f)
}

// FormatMoneyShort drops the cents for amounts of $1,000 or more.
func FormatMoneyShort(d decimal.Decimal) string {
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(1000)) {
		f := d.Round(0).InexactFloat64()
		if f < 0 {
			return "-$" + humanize.FormatFloat("#,###.", -f)
		}
		return "$" + humanize.FormatFloat("#,###.", f)
	}
	return FormatMoney(d)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a 0-100 percentage.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDate formats a calendar date for display, e.g. "Nov 1, 2024".
func FormatDate(d model.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.In(time.UTC).Format("Jan 2, 2006")
}

// FormatDaysLeft formats a remaining-days count.
func FormatDaysLeft(n int) string {
	switch n {
	case 0:
		return "ends today"
	case 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", n)
	}
}

// FormatDelta formats the change between two amounts with a sign.
func FormatDelta(current, previous decimal.Decimal) string {
	delta := current.Sub(previous)
	if delta.IsNegative() {
		return "-" + FormatMoney(delta.Neg())
	}
	return "+" + FormatMoney(delta)
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}

// FormatAgo renders a past timestamp relative to now, e.g. "3 days ago".
func FormatAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
