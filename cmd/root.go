package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/moneyplan/internal/cli"
	"github.com/theirongolddev/moneyplan/internal/config"
	"github.com/theirongolddev/moneyplan/internal/model"
	"github.com/theirongolddev/moneyplan/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDB    string
	flagAsOf  string
	flagQuiet bool
)

var rootCmd = &cobra.Command{
	Use:   "moneyplan",
	Short: "Budget progress and streak tracker",
	Long:  "Track budgets against your expenses: period progress, alerts, and how many days you've stayed on budget.",
	RunE:  runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default from config or $"+config.EnvDB+")")
	rootCmd.PersistentFlags().StringVar(&flagAsOf, "as-of", "", "Evaluate as if today were this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig returns the config, falling back to defaults with a warning when
// the file can't be read.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Config error, using defaults: %v\n", err)
		}
		return config.DefaultConfig()
	}
	return cfg
}

// openStore opens the database named by --db, the environment or config.
func openStore(cfg config.Config) (*store.Store, error) {
	path := flagDB
	if path == "" {
		path = config.DBPath(cfg)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return st, nil
}

// nowFunc returns the clock used for every period and streak calculation.
// With --as-of it is pinned to noon of that day in the local zone.
func nowFunc() (func() time.Time, error) {
	if flagAsOf == "" {
		return time.Now, nil
	}
	d, err := model.ParseDate(flagAsOf)
	if err != nil {
		return nil, fmt.Errorf("--as-of: %w", err)
	}
	at := d.In(time.Local).Add(12 * time.Hour)
	return func() time.Time { return at }, nil
}

// records holds everything a report command needs.
type records struct {
	cfg      config.Config
	budgets  []model.Budget
	expenses []model.Expense
	now      time.Time
}

// loadRecords is the shared data loading path used by the report commands.
func loadRecords(ctx context.Context) (*records, error) {
	clock, err := nowFunc()
	if err != nil {
		return nil, err
	}
	cfg := loadConfig()

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	budgets, err := st.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := st.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}

	return &records{cfg: cfg, budgets: budgets, expenses: expenses, now: clock()}, nil
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}
