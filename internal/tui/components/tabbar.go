package components

import (
	"strings"

	"github.com/theirongolddev/moneyplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tab indices, in display order.
const (
	TabOverview = iota
	TabBudgets
	TabExpenses
	TabSettings
)

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Budgets", Key: 'b', KeyPos: 0},
	{Name: "Expenses", Key: 'e', KeyPos: 0},
	{Name: "Settings", Key: 'x', KeyPos: -1},
}

// TabVisualWidth returns the rendered width of a tab, excluding the
// one-column separator that follows it.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active && tab.KeyPos < 0 {
		w += 3 // "[x]"
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index on one line.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)
	dimKeyStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)
	sepStyle := lipgloss.NewStyle().
		Foreground(t.Border).
		Background(t.Surface)

	var b strings.Builder
	for i, tab := range Tabs {
		if i == activeIdx {
			b.WriteString(activeStyle.Render(" " + tab.Name + " "))
		} else {
			b.WriteString(inactiveStyle.Render(" "))
			if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
				b.WriteString(inactiveStyle.Render(tab.Name[:tab.KeyPos]))
				b.WriteString(keyStyle.Render(string(tab.Name[tab.KeyPos])))
				b.WriteString(inactiveStyle.Render(tab.Name[tab.KeyPos+1:]))
			} else {
				b.WriteString(inactiveStyle.Render(tab.Name))
				b.WriteString(dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimKeyStyle.Render("]"))
			}
			b.WriteString(inactiveStyle.Render(" "))
		}
		if i < len(Tabs)-1 {
			b.WriteString(sepStyle.Render("│"))
		}
	}

	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(b.String())
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
