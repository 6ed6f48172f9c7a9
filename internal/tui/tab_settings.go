package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/moneyplan/internal/cli"
	"github.com/theirongolddev/moneyplan/internal/config"
	"github.com/theirongolddev/moneyplan/internal/model"
	"github.com/theirongolddev/moneyplan/internal/tui/components"
	"github.com/theirongolddev/moneyplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldTheme = iota
	settingsFieldThreshold
	settingsFieldPeriod
	settingsFieldImportDir
	settingsFieldShowBadge
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) updateSettingsKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter":
		m, cmd := a.settingsStartEdit()
		return m, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) settingsStartEdit() (App, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()

	switch a.settings.cursor {
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldThreshold:
		ti.Placeholder = "80 (percent, 0-100)"
		ti.SetValue(strconv.FormatFloat(cfg.Budget.DefaultAlertThreshold, 'f', -1, 64))
	case settingsFieldPeriod:
		ti.Placeholder = "weekly, monthly or yearly"
		ti.SetValue(cfg.Budget.DefaultPeriod)
	case settingsFieldImportDir:
		ti.Placeholder = "directory of exports (leave empty to disable)"
		ti.SetValue(a.importDir)
	case settingsFieldShowBadge:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.showBadge))
	}

	ti.CursorEnd()
	cmd := ti.Focus()
	a.settings.input = ti
	return a, cmd
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited value and persists it. Invalid values
// leave the config unchanged and are reported through saveErr.
func (a *App) settingsSave() {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldTheme:
		if !theme.Valid(val) {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
	case settingsFieldThreshold:
		f, err := parseThreshold(val)
		if err != nil {
			a.settings.saveErr = err
			return
		}
		cfg.Budget.DefaultAlertThreshold = f
	case settingsFieldPeriod:
		p, err := model.ParsePeriod(val)
		if err != nil {
			a.settings.saveErr = err
			return
		}
		cfg.Budget.DefaultPeriod = string(p)
	case settingsFieldImportDir:
		cfg.General.ImportDir = val
		a.importDir = val
	case settingsFieldShowBadge:
		b, err := strconv.ParseBool(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("show badge must be true or false")
			return
		}
		cfg.Streak.ShowBadge = b
		a.showBadge = b
	}

	a.settings.saveErr = config.Save(cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	importDir := a.importDir
	if importDir == "" {
		importDir = "(not set)"
	}

	fields := []struct{ label, value string }{
		{"Theme", cfg.Appearance.Theme},
		{"Alert Threshold", cli.FormatPercent(cfg.Budget.DefaultAlertThreshold)},
		{"Default Period", cfg.Budget.DefaultPeriod},
		{"Import Directory", importDir},
		{"Show Streak Badge", strconv.FormatBool(a.showBadge)},
	}

	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker)
			formBody.WriteString(label)
			formBody.WriteString(value)
			usedWidth := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if padLen := components.CardInnerWidth(cw) - usedWidth; padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Not saved: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Budgets:      ") + valueStyle.Render(cli.FormatNumber(int64(len(a.budgets)))) + "\n")
	infoBody.WriteString(labelStyle.Render("Expenses:     ") + valueStyle.Render(cli.FormatNumber(int64(len(a.expenses)))) + "\n")
	if a.lastImport != nil {
		infoBody.WriteString(labelStyle.Render("Last import:  ") + valueStyle.Render(fmt.Sprintf("%d files, %d budgets, %d expenses",
			a.lastImport.Imported, len(a.lastImport.Budgets), len(a.lastImport.Expenses))) + "\n")
	}
	if a.importErr != nil {
		infoBody.WriteString(labelStyle.Render("Import error: ") + lipgloss.NewStyle().Foreground(t.Orange).Render(a.importErr.Error()) + "\n")
	}
	infoBody.WriteString(labelStyle.Render("Load time:    ") + valueStyle.Render(fmt.Sprintf("%.1fs", a.loadTime.Seconds())) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.ConfigPath()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Data", infoBody.String(), cw))
	return b.String()
}
