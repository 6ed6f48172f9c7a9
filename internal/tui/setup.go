package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/moneyplan/internal/config"
	"github.com/theirongolddev/moneyplan/internal/model"
	"github.com/theirongolddev/moneyplan/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the first-run form. Threshold
// stays a string so the form can bind it directly.
type SetupValues struct {
	Theme     string
	Threshold string
	Period    string
	ImportDir string
	ShowBadge bool
}

// SetupValuesFrom seeds the form with the current config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Theme:     cfg.Appearance.Theme,
		Threshold: strconv.FormatFloat(cfg.Budget.DefaultAlertThreshold, 'f', -1, 64),
		Period:    cfg.Budget.DefaultPeriod,
		ImportDir: cfg.General.ImportDir,
		ShowBadge: cfg.Streak.ShowBadge,
	}
}

// Apply validates v and copies it into cfg. cfg is untouched on error.
func (v SetupValues) Apply(cfg *config.Config) error {
	if !theme.Valid(v.Theme) {
		return fmt.Errorf("unknown theme %q", v.Theme)
	}
	threshold, err := parseThreshold(v.Threshold)
	if err != nil {
		return err
	}
	period, err := model.ParsePeriod(v.Period)
	if err != nil {
		return err
	}

	cfg.Appearance.Theme = v.Theme
	cfg.Budget.DefaultAlertThreshold = threshold
	cfg.Budget.DefaultPeriod = string(period)
	cfg.General.ImportDir = strings.TrimSpace(v.ImportDir)
	cfg.Streak.ShowBadge = v.ShowBadge
	return nil
}

func parseThreshold(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.New("alert threshold must be a number")
	}
	if f < 0 || f > 100 {
		return 0, errors.New("alert threshold must be between 0 and 100")
	}
	return f, nil
}

func validateThreshold(s string) error {
	_, err := parseThreshold(s)
	return err
}

// NewSetupForm builds the first-run form bound to vals. It is shared by the
// dashboard and the setup command.
func NewSetupForm(header string, vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}
	periodOpts := make([]huh.Option[string], 0, len(model.Periods))
	for _, p := range model.Periods {
		periodOpts = append(periodOpts, huh.NewOption(string(p), string(p)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to moneyplan").
				Description(header),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewSelect[string]().
				Title("Default budget period").
				Options(periodOpts...).
				Value(&vals.Period),
			huh.NewInput().
				Title("Default alert threshold (%)").
				Description("Budgets warn once spending reaches this share of the limit.").
				Placeholder("80").
				Validate(validateThreshold).
				Value(&vals.Threshold),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Import directory").
				Description("Folder of JSON exports to import on start. Leave empty to skip.").
				Value(&vals.ImportDir),
			huh.NewConfirm().
				Title("Show streak badge?").
				Value(&vals.ShowBadge),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

func setupHeader(budgets, expenses int) string {
	if budgets == 0 && expenses == 0 {
		return "No budgets yet. Pick a few defaults and start tracking."
	}
	return fmt.Sprintf("Found %d budgets and %d expenses. Pick a few defaults.", budgets, expenses)
}
