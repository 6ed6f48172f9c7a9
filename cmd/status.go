package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/moneyplan/internal/cli"
	"github.com/theirongolddev/moneyplan/internal/config"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database location, record counts and import history",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	dbPath := flagDB
	if dbPath == "" {
		dbPath = config.DBPath(cfg)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	counts, err := st.Counts(cmd.Context())
	if err != nil {
		return err
	}
	tracked, err := st.TrackedFiles(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MONEYPLAN STATUS"))
	fmt.Println()

	rows := [][]string{
		{"Database", dbPath},
		{"Budgets", fmt.Sprintf("%s (%s active)", formatNumber(int64(counts.Budgets)), formatNumber(int64(counts.ActiveBudgets)))},
		{"Expenses", formatNumber(int64(counts.Expenses))},
		{"---"},
		{"Import directory", valueOr(cfg.General.ImportDir, "not set")},
		{"Imported files", formatNumber(int64(counts.ImportedFiles))},
	}

	// Tracked files that have since been deleted are worth flagging.
	missing := 0
	for path := range tracked {
		if _, err := os.Stat(path); err != nil {
			missing++
		}
	}
	if missing > 0 {
		rows = append(rows, []string{"Missing on disk", formatNumber(int64(missing))})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Config", filepath.Clean(config.ConfigPath())},
	)

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Item", "Value"},
		Rows:    rows,
	}))
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
