package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/moneyplan/internal/cli"
	"github.com/theirongolddev/moneyplan/internal/tui/components"
	"github.com/theirongolddev/moneyplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const overviewTopCategories = 5

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	sum := a.summary
	var b strings.Builder

	// Row 1: metric cards
	usedNote := ""
	if sum.TotalBudgeted.GreaterThan(decimal.Zero) {
		pct, _ := sum.TotalSpent.Div(sum.TotalBudgeted).Mul(decimal.NewFromInt(100)).Float64()
		usedNote = cli.FormatPercent(pct) + " used"
	}
	statusNote := "all on track"
	statusColor := t.Green
	switch {
	case sum.OverBudgetCount > 0:
		statusNote = fmt.Sprintf("%d over budget", sum.OverBudgetCount)
		statusColor = t.Red
	case sum.AlertCount > 0:
		statusNote = fmt.Sprintf("%d near limit", sum.AlertCount)
		statusColor = t.Orange
	}

	metrics := []components.Metric{
		{Label: "Budgeted", Value: cli.FormatMoney(sum.TotalBudgeted), Note: fmt.Sprintf("%d active", len(sum.BudgetProgress))},
		{Label: "Spent", Value: cli.FormatMoney(sum.TotalSpent), Note: usedNote, Color: t.Status(sum.OverBudgetCount > 0, sum.AlertCount > 0)},
		{Label: "Remaining", Value: cli.FormatMoney(sum.TotalRemaining), Note: statusNote, Color: statusColor},
	}
	if a.showBadge {
		metrics = append(metrics, components.Metric{
			Label: "Streak",
			Value: fmt.Sprintf("%s %d", a.badge.Icon, a.badge.Days),
			Note:  a.badge.Title,
			Color: t.Tier(a.badge.Tier),
		})
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: active budget progress
	budgetCard := components.ContentCard("Active Budgets", a.renderBudgetLines(components.CardInnerWidth(cw)), cw)
	b.WriteString(budgetCard)
	b.WriteString("\n")

	// Row 3: daily spending + top categories
	halves := components.LayoutRow(cw, 2)
	dailyCard := components.ContentCard(
		fmt.Sprintf("Last %d Days", dailyWindow),
		a.renderDailySpark(components.CardInnerWidth(halves[0])),
		halves[0],
	)
	catCard := components.ContentCard(
		"Top Categories",
		a.renderTopCategories(components.CardInnerWidth(halves[1])),
		halves[1],
	)

	if a.isCompactLayout() {
		dailyCard = components.ContentCard(fmt.Sprintf("Last %d Days", dailyWindow),
			a.renderDailySpark(components.CardInnerWidth(cw)), cw)
		catCard = components.ContentCard("Top Categories",
			a.renderTopCategories(components.CardInnerWidth(cw)), cw)
		b.WriteString(dailyCard)
		b.WriteString("\n")
		b.WriteString(catCard)
	} else {
		b.WriteString(components.CardRow([]string{dailyCard, catCard}))
	}

	return b.String()
}

func (a App) renderBudgetLines(innerW int) string {
	t := theme.Active
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	if len(a.summary.BudgetProgress) == 0 {
		return dimStyle.Render("No active budgets. Add one with `moneyplan budgets add`.")
	}

	labelW := 0
	for _, p := range a.summary.BudgetProgress {
		labelW = max(labelW, len([]rune(p.Budget.Name)))
	}
	if labelW > 20 {
		labelW = 20
	}

	// Room for "  $1,250 / $2,000  12 days left".
	const tailW = 34
	barW := innerW - tailW
	if barW < labelW+16 {
		barW = innerW
	}

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	lines := make([]string, 0, len(a.summary.BudgetProgress))
	for _, p := range a.summary.BudgetProgress {
		line := components.BudgetLine(p.Budget.Name, p.Percentage, p.IsOverBudget, p.ShouldAlert, labelW, barW)
		if barW < innerW {
			tail := fmt.Sprintf("  %s / %s  %s",
				cli.FormatMoneyShort(p.Spent),
				cli.FormatMoneyShort(p.Budget.Amount),
				cli.FormatDaysLeft(p.DaysRemaining))
			line += mutedStyle.Render(truncStr(tail, tailW))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (a App) renderDailySpark(innerW int) string {
	t := theme.Active
	if len(a.daily) == 0 {
		return ""
	}

	vals := make([]float64, len(a.daily))
	total := decimal.Zero
	peak := decimal.Zero
	for i, d := range a.daily {
		vals[i], _ = d.Amount.Float64()
		total = total.Add(d.Amount)
		if d.Amount.GreaterThan(peak) {
			peak = d.Amount
		}
	}

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)

	var b strings.Builder
	b.WriteString(components.Sparkline(components.Resample(vals, innerW), t.Blue))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Total ") + valueStyle.Render(cli.FormatMoney(total)))
	b.WriteString(mutedStyle.Render("  Peak ") + valueStyle.Render(cli.FormatMoney(peak)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("This month ") + valueStyle.Render(cli.FormatMoney(a.spending.MonthlyTotal)))
	return b.String()
}

func (a App) renderTopCategories(innerW int) string {
	t := theme.Active
	cats := a.spending.TopCategories
	if len(cats) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Render("No expenses recorded.")
	}
	if len(cats) > overviewTopCategories {
		cats = cats[:overviewTopCategories]
	}

	bars := make([]components.Bar, len(cats))
	for i, c := range cats {
		v, _ := c.Amount.Float64()
		bars[i] = components.Bar{
			Label: string(c.Category),
			Value: v,
			Text:  fmt.Sprintf("%s %4.1f%%", cli.FormatMoneyShort(c.Amount), c.Percentage),
		}
	}
	return components.HorizontalBars(bars, t.Accent, innerW)
}
