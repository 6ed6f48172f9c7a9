package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/moneyplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom bar reports about the loaded data.
type StatusInfo struct {
	OverBudget int
	Alerts     int
	Refreshing bool
	DataAge    string
	Message    string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	overStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	alertStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	left := keyStyle.Render(" [?]help  [r]eload  [q]uit")

	var right []string
	if info.Message != "" {
		right = append(right, alertStyle.Render(info.Message))
	}
	if info.OverBudget > 0 {
		right = append(right, overStyle.Render(fmt.Sprintf("%d over", info.OverBudget)))
	}
	if info.Alerts > 0 {
		right = append(right, alertStyle.Render(fmt.Sprintf("%d near limit", info.Alerts)))
	}
	switch {
	case info.Refreshing:
		right = append(right, dimStyle.Render("reloading…"))
	case info.DataAge != "":
		right = append(right, dimStyle.Render("loaded "+info.DataAge))
	}
	rightStr := strings.Join(right, dimStyle.Render(" │ ")) + barStyle.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if padding < 0 {
		padding = 0
	}

	return left + barStyle.Render(strings.Repeat(" ", padding)) + rightStr
}
