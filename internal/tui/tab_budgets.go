package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/moneyplan/internal/cli"
	"github.com/theirongolddev/moneyplan/internal/model"
	"github.com/theirongolddev/moneyplan/internal/tui/components"
	"github.com/theirongolddev/moneyplan/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// budgetsState holds the budgets tab state.
type budgetsState struct {
	cursor int
}

func (s *budgetsState) move(delta, n int) {
	s.cursor = clampCursor(s.cursor+delta, n)
}

func clampCursor(c, n int) int {
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

// visibleRange returns the [start, end) slice of n rows that keeps cursor
// on screen within visible rows.
func visibleRange(cursor, visible, n int) (int, int) {
	if visible < 1 {
		visible = 1
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > n {
		end = n
	}
	return start, end
}

func (a App) updateBudgetsKey(key string) (App, tea.Cmd, bool) {
	n := len(a.budgets)
	switch key {
	case "j", "down":
		a.budgetsTab.move(1, n)
	case "k", "up":
		a.budgetsTab.move(-1, n)
	case "g", "home":
		a.budgetsTab.cursor = 0
	case "G", "end":
		a.budgetsTab.cursor = clampCursor(n-1, n)
	case " ", "space":
		if n == 0 || a.refreshing {
			return a, nil, true
		}
		b := a.budgets[a.budgetsTab.cursor]
		return a, toggleBudgetCmd(a.repo, b.ID, !b.IsActive), true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderBudgetsTab(cw, h int) string {
	t := theme.Active

	if len(a.budgets) == 0 {
		return components.ContentCard("Budgets",
			lipgloss.NewStyle().Foreground(t.TextMuted).Render("No budgets yet. Add one with `moneyplan budgets add`."), cw)
	}

	leftW := cw * 2 / 5
	if leftW < 36 {
		leftW = 36
	}
	rightW := cw - leftW

	left := components.ContentCard(fmt.Sprintf("Budgets (%d)", len(a.budgets)), a.renderBudgetList(leftW, h), leftW)
	sel := a.budgetProgress[a.budgetsTab.cursor]
	right := components.ContentCard(sel.Budget.Name, a.renderBudgetDetail(sel, rightW), rightW)

	return components.CardRow([]string{left, right})
}

func (a App) renderBudgetList(w, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	visible := h - scrollOverhead
	start, end := visibleRange(a.budgetsTab.cursor, visible, len(a.budgets))

	var body strings.Builder
	for i := start; i < end; i++ {
		p := a.budgetProgress[i]

		marker := lipgloss.NewStyle().Foreground(t.Status(p.IsOverBudget, p.ShouldAlert)).Render("●")
		if !p.Budget.IsActive {
			marker = mutedStyle.Render("○")
		}

		pct := cli.FormatPercent(p.Percentage)
		nameW := innerW - 2 - len(pct) - 1
		line := fmt.Sprintf("%-*s %s", nameW, truncStr(p.Budget.Name, nameW), pct)

		style := rowStyle
		if !p.Budget.IsActive {
			style = mutedStyle
		}
		if i == a.budgetsTab.cursor {
			style = selectedStyle
		}
		body.WriteString(marker + " " + style.Render(line))
		body.WriteString("\n")
	}

	body.WriteString("\n")
	body.WriteString(mutedStyle.Render("[j/k] navigate  [space] enable/disable"))
	return body.String()
}

func (a App) renderBudgetDetail(p model.BudgetProgress, w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)
	b := p.Budget

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	statusStyle := lipgloss.NewStyle().Foreground(t.Status(p.IsOverBudget, p.ShouldAlert)).Bold(true)

	row := func(body *strings.Builder, label, value string) {
		body.WriteString(labelStyle.Render(fmt.Sprintf("%-16s", label)))
		body.WriteString(valueStyle.Render(value))
		body.WriteString("\n")
	}

	var body strings.Builder

	status := "On track"
	switch {
	case !b.IsActive:
		status = "Paused"
		statusStyle = labelStyle.Bold(true)
	case p.IsOverBudget:
		status = "Over budget"
	case p.ShouldAlert:
		status = "Near limit"
	}
	body.WriteString(statusStyle.Render(status))
	body.WriteString("\n\n")

	body.WriteString(components.BudgetLine("Used", p.Percentage, p.IsOverBudget, p.ShouldAlert, 6, innerW))
	body.WriteString("\n\n")

	body.WriteString(headerStyle.Render("CURRENT PERIOD"))
	body.WriteString("\n")
	row(&body, "Window", fmt.Sprintf("%s - %s", cli.FormatDate(p.PeriodStart), cli.FormatDate(p.PeriodEnd)))
	row(&body, "Spent", cli.FormatMoney(p.Spent)+" of "+cli.FormatMoney(b.Amount))
	row(&body, "Remaining", cli.FormatMoney(p.Remaining))
	row(&body, "Days left", cli.FormatDaysLeft(p.DaysRemaining))
	row(&body, "Daily allowance", cli.FormatMoney(p.DailyAllowance))
	body.WriteString("\n")

	body.WriteString(headerStyle.Render("BUDGET"))
	body.WriteString("\n")
	row(&body, "Category", b.Category.String())
	row(&body, "Period", string(b.Period))
	row(&body, "Alert at", cli.FormatPercent(b.AlertThreshold))
	row(&body, "Starts", cli.FormatDate(b.StartDate))
	if b.EndDate != nil {
		row(&body, "Ends", cli.FormatDate(*b.EndDate))
	}
	row(&body, "ID", truncStr(b.ID, innerW-16))

	return body.String()
}
