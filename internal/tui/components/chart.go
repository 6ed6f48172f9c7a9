package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/moneyplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Render(buf.String())
}

// Resample squeezes values into at most n buckets by summing neighbours, so
// a long series still fits a narrow sparkline.
func Resample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i, v := range values {
		out[i*n/len(values)] += v
	}
	return out
}

// Bar is one labelled entry of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	Text  string // right-hand annotation, e.g. a formatted amount
}

// HorizontalBars renders one line per bar, scaled to the largest value.
func HorizontalBars(bars []Bar, color lipgloss.Color, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW := 0, 0
	peak := 0.0
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		textW = max(textW, lipgloss.Width(b.Text))
		peak = max(peak, b.Value)
	}
	barMax := width - labelW - textW - 2
	if barMax < 1 {
		barMax = 1
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	barStyle := lipgloss.NewStyle().Foreground(color)
	textStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var out strings.Builder
	for i, b := range bars {
		n := 0
		if peak > 0 {
			n = int(b.Value / peak * float64(barMax))
		}
		fmt.Fprintf(&out, "%s %s%s %s",
			labelStyle.Render(fmt.Sprintf("%-*s", labelW, b.Label)),
			barStyle.Render(strings.Repeat("█", n)),
			strings.Repeat(" ", barMax-n),
			textStyle.Render(fmt.Sprintf("%*s", textW, b.Text)))
		if i < len(bars)-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}
