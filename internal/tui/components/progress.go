package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/moneyplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// LoadingBar renders the import progress bar with a percentage.
func LoadingBar(ratio float64, width int) string {
	t := theme.Active
	ratio = clampRatio(ratio)

	filled := int(ratio * float64(width))
	filledStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", ratio*100))
}

// BudgetBar renders a fixed-width bar for a budget's used percentage (0-100,
// values above 100 fill the bar). The fill color follows the budget state.
func BudgetBar(pct float64, over, alert bool, width int) string {
	t := theme.Active
	if width < 4 {
		width = 4
	}

	bar := progress.New(
		progress.WithSolidFill(string(t.Status(over, alert))),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)
	return bar.ViewAs(clampRatio(pct / 100))
}

// BudgetLine renders "label  [bar] pct" sized to width.
func BudgetLine(label string, pct float64, over, alert bool, labelW, width int) string {
	t := theme.Active

	pctStr := fmt.Sprintf("%5.1f%%", pct)
	barW := width - labelW - len(pctStr) - 2
	if barW < 4 {
		barW = 4
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	pctStyle := lipgloss.NewStyle().Foreground(t.Status(over, alert)).Bold(true)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) + " " +
		BudgetBar(pct, over, alert, barW) + " " +
		pctStyle.Render(pctStr)
}

func clampRatio(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
