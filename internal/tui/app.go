// Package tui provides the interactive Bubble Tea dashboard for moneyplan.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/moneyplan/internal/budget"
	"github.com/theirongolddev/moneyplan/internal/cli"
	"github.com/theirongolddev/moneyplan/internal/config"
	"github.com/theirongolddev/moneyplan/internal/model"
	"github.com/theirongolddev/moneyplan/internal/pipeline"
	"github.com/theirongolddev/moneyplan/internal/tui/components"
	"github.com/theirongolddev/moneyplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Repository is the store surface the dashboard reads, imports into and
// toggles budgets through.
type Repository interface {
	pipeline.ImportStore
	ListBudgets(ctx context.Context) ([]model.Budget, error)
	ListExpenses(ctx context.Context) ([]model.Expense, error)
	SetBudgetActive(ctx context.Context, id string, active bool) error
}

// DataLoadedMsg is sent when the initial import and load finish.
type DataLoadedMsg struct {
	Budgets   []model.Budget
	Expenses  []model.Expense
	Import    *pipeline.ImportResult
	ImportErr error
	Err       error
	LoadTime  time.Duration
}

// ProgressMsg reports import progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background reload completes.
type RefreshDataMsg DataLoadedMsg

// budgetToggledMsg reports the result of enabling or disabling a budget.
type budgetToggledMsg struct {
	id     string
	active bool
	err    error
}

// App is the root Bubble Tea model.
type App struct {
	repo      Repository
	now       func() time.Time
	importDir string
	showBadge bool

	// Data
	budgets    []model.Budget
	expenses   []model.Expense
	loaded     bool
	loadTime   time.Duration
	loadErr    error
	importErr  error
	lastImport *pipeline.ImportResult
	refreshing bool
	statusMsg  string

	// Derived on every load
	summary        model.BudgetSummary
	budgetProgress []model.BudgetProgress // every budget, in list order
	badge          budget.Badge
	spending       model.ExpenseSummary
	daily          []model.DailySpending
	shownExpenses  []model.Expense

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	budgetsTab  budgetsState
	expensesTab expensesState
	settings    settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 160

	// dailyWindow is how many days the overview sparkline covers.
	dailyWindow = 30

	scrollOverhead   = 6
	minContentHeight = 5
)

// loadConfigOrDefault loads config, returning defaults on error so the
// dashboard can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model. now supplies the clock used for every
// period and streak calculation.
func NewApp(repo Repository, cfg config.Config, now func() time.Time) App {
	if now == nil {
		now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		repo:        repo,
		now:         now,
		importDir:   cfg.General.ImportDir,
		showBadge:   cfg.Streak.ShowBadge,
		needSetup:   !config.Exists(),
		spinner:     sp,
		loadSub:     make(chan tea.Msg, 1),
		expensesTab: newExpensesState(),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.repo, a.importDir, a.loadSub),
		a.spinner.Tick,
	)
}

// setData replaces the loaded records and recomputes every derived view.
func (a *App) setData(budgets []model.Budget, expenses []model.Expense) {
	a.budgets = budgets
	a.expenses = expenses
	a.recompute()
}

func (a *App) recompute() {
	now := a.now()

	a.summary = budget.GenerateSummary(a.budgets, a.expenses, now)
	a.budgetProgress = make([]model.BudgetProgress, len(a.budgets))
	for i, b := range a.budgets {
		a.budgetProgress[i] = budget.CalculateProgress(b, a.expenses, now)
	}
	a.badge = budget.BadgeFor(budget.CalculateStreak(a.expenses, a.budgets, now))
	a.spending = pipeline.SummarizeExpenses(a.expenses, now)

	today := model.DateOf(now)
	a.daily = pipeline.DailyTotals(a.expenses, today.AddDays(-(dailyWindow - 1)), today)

	a.applyExpenseFilter()

	if a.budgetsTab.cursor >= len(a.budgets) {
		a.budgetsTab.cursor = len(a.budgets) - 1
	}
	if a.budgetsTab.cursor < 0 {
		a.budgetsTab.cursor = 0
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.loadErr = msg.Err
		a.importErr = msg.ImportErr
		a.lastImport = msg.Import
		a.setData(msg.Budgets, msg.Expenses)

		if a.needSetup {
			a.setupVals = SetupValuesFrom(loadConfigOrDefault())
			a.setupForm = NewSetupForm(setupHeader(len(a.budgets), len(a.expenses)), &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case RefreshDataMsg:
		a.refreshing = false
		a.loadTime = msg.LoadTime
		a.importErr = msg.ImportErr
		if msg.Import != nil {
			a.lastImport = msg.Import
		}
		if msg.Err != nil {
			a.statusMsg = "reload failed: " + msg.Err.Error()
			return a, nil
		}
		a.loadErr = nil
		a.setData(msg.Budgets, msg.Expenses)
		return a, nil

	case budgetToggledMsg:
		if msg.err != nil {
			a.statusMsg = "update failed: " + msg.err.Error()
			return a, nil
		}
		if msg.active {
			a.statusMsg = "budget enabled"
		} else {
			a.statusMsg = "budget disabled"
		}
		a.refreshing = true
		return a, refreshDataCmd(a.repo, "")

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.activeTab == components.TabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == components.TabExpenses && a.expensesTab.searching {
		return a.updateExpensesSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	a.statusMsg = ""

	var (
		handled bool
		cmd     tea.Cmd
	)
	switch a.activeTab {
	case components.TabBudgets:
		a, cmd, handled = a.updateBudgetsKey(key)
	case components.TabExpenses:
		a, cmd, handled = a.updateExpensesKey(key)
	case components.TabSettings:
		a, cmd, handled = a.updateSettingsKey(key)
	}
	if handled {
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.repo, a.importDir)
		}
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		switch a.activeTab {
		case components.TabBudgets:
			a.budgetsTab.move(-1, len(a.budgets))
		case components.TabExpenses:
			a.expensesTab.move(-1, len(a.shownExpenses))
		}
	case tea.MouseButtonWheelDown:
		switch a.activeTab {
		case components.TabBudgets:
			a.budgetsTab.move(1, len(a.budgets))
		case components.TabExpenses:
			a.expensesTab.move(1, len(a.shownExpenses))
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg := loadConfigOrDefault()
		if err := a.setupVals.Apply(&cfg); err == nil {
			if err := config.Save(cfg); err != nil {
				a.statusMsg = "config not saved: " + err.Error()
			}
			theme.SetActive(cfg.Appearance.Theme)
			a.importDir = cfg.General.ImportDir
		}
		a.needSetup = false
		a.setupForm = nil
		if a.importDir != "" {
			a.refreshing = true
			return a, refreshDataCmd(a.repo, a.importDir)
		}
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  moneyplan needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ moneyplan"))
	b.WriteString(subtitleStyle.Render(" · Budgets & Streaks"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := 40
		if barW > a.width-30 {
			barW = a.width - 30
		}
		if barW < 20 {
			barW = 20
		}
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Importing exports\n\n"))
		b.WriteString(components.LoadingBar(float64(a.progress)/float64(a.progressMax), barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
		b.WriteString(subtitleStyle.Render(" files"))
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Loading budgets..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	section := func(b *strings.Builder, title string, binds []struct{ key, desc string }) {
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		for _, bind := range binds {
			fmt.Fprintf(b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	section(&b, "Navigation", []struct{ key, desc string }{
		{"o b e x", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Move selection"},
		{"g G", "First / Last"},
	})
	b.WriteString("\n")
	section(&b, "Budgets", []struct{ key, desc string }{
		{"space", "Enable / Disable budget"},
	})
	b.WriteString("\n")
	section(&b, "Expenses", []struct{ key, desc string }{
		{"c C", "Next / Previous category"},
		{"/", "Search descriptions"},
		{"Esc", "Clear filters"},
	})
	b.WriteString("\n")
	section(&b, "General", []struct{ key, desc string }{
		{"r", "Re-import and reload"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	})
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		OverBudget: a.summary.OverBudgetCount,
		Alerts:     a.summary.AlertCount,
		Refreshing: a.refreshing,
		DataAge:    fmt.Sprintf("in %.1fs", a.loadTime.Seconds()),
		Message:    a.statusMsg,
	})

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case components.TabOverview:
		content = a.renderOverviewTab(cw)
	case components.TabBudgets:
		content = a.renderBudgetsTab(cw, contentH)
	case components.TabExpenses:
		content = a.renderExpensesTab(cw, contentH)
	case components.TabSettings:
		content = a.renderSettingsTab(cw)
	}
	if a.loadErr != nil {
		warn := lipgloss.NewStyle().Foreground(t.Red).Render("  Could not read the database: " + a.loadErr.Error())
		content = warn + "\n" + content
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Data loading ───────────────────────────────────────────────

// loadDataCmd imports importDir (when set) and reads the store in a
// background goroutine, streaming ProgressMsg updates and a final
// DataLoadedMsg through sub.
func loadDataCmd(repo Repository, importDir string, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			// Non-blocking send so import workers aren't stalled; the next
			// update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			sub <- DataLoadedMsg(load(repo, importDir, progressFn))
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd re-imports (when importDir is set) and reloads without
// progress UI.
func refreshDataCmd(repo Repository, importDir string) tea.Cmd {
	return func() tea.Msg {
		return load(repo, importDir, nil)
	}
}

func load(repo Repository, importDir string, progressFn pipeline.ProgressFunc) RefreshDataMsg {
	start := time.Now()
	ctx := context.Background()

	var msg RefreshDataMsg
	if importDir != "" {
		msg.Import, msg.ImportErr = pipeline.Import(ctx, importDir, repo, progressFn)
	}

	budgets, err := repo.ListBudgets(ctx)
	if err != nil {
		msg.Err = fmt.Errorf("listing budgets: %w", err)
		msg.LoadTime = time.Since(start)
		return msg
	}
	expenses, err := repo.ListExpenses(ctx)
	if err != nil {
		msg.Err = fmt.Errorf("listing expenses: %w", err)
		msg.LoadTime = time.Since(start)
		return msg
	}

	msg.Budgets = budgets
	msg.Expenses = expenses
	msg.LoadTime = time.Since(start)
	return msg
}

func toggleBudgetCmd(repo Repository, id string, active bool) tea.Cmd {
	return func() tea.Msg {
		err := repo.SetBudgetActive(context.Background(), id, active)
		return budgetToggledMsg{id: id, active: active, err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color,
// so gaps between cards keep the theme background.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
