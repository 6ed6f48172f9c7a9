package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/moneyplan/internal/cli"
	"github.com/theirongolddev/moneyplan/internal/model"
	"github.com/theirongolddev/moneyplan/internal/pipeline"
	"github.com/theirongolddev/moneyplan/internal/tui/components"
	"github.com/theirongolddev/moneyplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// expensesState holds the expenses tab state.
type expensesState struct {
	cursor    int
	catIdx    int // 0 is "All", then model.Categories in order
	searching bool
	query     string
	input     textinput.Model
}

func newExpensesState() expensesState {
	ti := textinput.New()
	ti.Placeholder = "search descriptions"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 40
	return expensesState{input: ti}
}

func (s *expensesState) move(delta, n int) {
	s.cursor = clampCursor(s.cursor+delta, n)
}

// category returns the selected category filter, or "" for all.
func (s expensesState) category() string {
	if s.catIdx <= 0 || s.catIdx > len(model.Categories) {
		return ""
	}
	return string(model.Categories[s.catIdx-1])
}

func (a *App) applyExpenseFilter() {
	a.shownExpenses = pipeline.FilterExpenses(a.expenses, pipeline.ExpenseFilter{
		Category: a.expensesTab.category(),
		Search:   a.expensesTab.query,
	})
	a.expensesTab.cursor = clampCursor(a.expensesTab.cursor, len(a.shownExpenses))
}

func (a App) updateExpensesKey(key string) (App, tea.Cmd, bool) {
	n := len(a.shownExpenses)
	cats := len(model.Categories) + 1
	switch key {
	case "j", "down":
		a.expensesTab.move(1, n)
	case "k", "up":
		a.expensesTab.move(-1, n)
	case "g", "home":
		a.expensesTab.cursor = 0
	case "G", "end":
		a.expensesTab.cursor = clampCursor(n-1, n)
	case "c":
		a.expensesTab.catIdx = (a.expensesTab.catIdx + 1) % cats
		a.expensesTab.cursor = 0
		a.applyExpenseFilter()
	case "C":
		a.expensesTab.catIdx = (a.expensesTab.catIdx - 1 + cats) % cats
		a.expensesTab.cursor = 0
		a.applyExpenseFilter()
	case "/":
		a.expensesTab.searching = true
		a.expensesTab.input.SetValue(a.expensesTab.query)
		a.expensesTab.input.CursorEnd()
		return a, a.expensesTab.input.Focus(), true
	case "esc":
		a.expensesTab.catIdx = 0
		a.expensesTab.query = ""
		a.expensesTab.cursor = 0
		a.applyExpenseFilter()
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateExpensesSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.expensesTab.searching = false
		a.expensesTab.input.Blur()
		return a, nil
	case "esc":
		a.expensesTab.searching = false
		a.expensesTab.input.Blur()
		a.expensesTab.query = ""
		a.expensesTab.cursor = 0
		a.applyExpenseFilter()
		return a, nil
	}

	var cmd tea.Cmd
	a.expensesTab.input, cmd = a.expensesTab.input.Update(msg)
	a.expensesTab.query = a.expensesTab.input.Value()
	a.expensesTab.cursor = 0
	a.applyExpenseFilter()
	return a, cmd
}

func (a App) renderExpensesTab(cw, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	chipStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)

	var body strings.Builder

	// Filter line
	cat := a.expensesTab.category()
	if cat == "" {
		cat = "All"
	}
	body.WriteString(mutedStyle.Render("Category ") + chipStyle.Render(cat))
	switch {
	case a.expensesTab.searching:
		body.WriteString("   " + a.expensesTab.input.View())
	case a.expensesTab.query != "":
		body.WriteString(mutedStyle.Render("   Search ") + chipStyle.Render(fmt.Sprintf("%q", a.expensesTab.query)))
	}
	body.WriteString("\n\n")

	if len(a.shownExpenses) == 0 {
		body.WriteString(mutedStyle.Render("No matching expenses."))
		body.WriteString("\n")
	} else {
		const dateW, catW, amountW = 12, 15, 12
		descW := innerW - dateW - catW - amountW - 3
		if descW < 10 {
			descW = 10
		}

		body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %*s %s",
			dateW, "Date", catW, "Category", amountW, "Amount", "Description")))
		body.WriteString("\n")

		visible := h - scrollOverhead - 3
		start, end := visibleRange(a.expensesTab.cursor, visible, len(a.shownExpenses))
		for i := start; i < end; i++ {
			e := a.shownExpenses[i]
			line := fmt.Sprintf("%-*s %-*s %*s %s",
				dateW, cli.FormatDate(e.Date),
				catW, string(e.Category),
				amountW, cli.FormatMoney(e.Amount),
				truncStr(e.Description, descW))
			if i == a.expensesTab.cursor {
				body.WriteString(selectedStyle.Render(line))
			} else {
				body.WriteString(rowStyle.Render(line))
			}
			body.WriteString("\n")
		}
	}

	total := decimal.Zero
	for _, e := range a.shownExpenses {
		total = total.Add(e.Amount)
	}
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(fmt.Sprintf("%d of %d  ·  %s total   [c] category  [/] search  [Esc] clear",
		len(a.shownExpenses), len(a.expenses), cli.FormatMoney(total))))

	return components.ContentCard("Expenses", body.String(), cw)
}
