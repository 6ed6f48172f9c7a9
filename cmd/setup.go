package cmd

import (
	"fmt"

	"github.com/theirongolddev/moneyplan/internal/config"
	"github.com/theirongolddev/moneyplan/internal/tui"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg := loadConfig()

	header := "Pick a theme and the defaults used for new budgets."
	if st, err := openStore(cfg); err == nil {
		if counts, err := st.Counts(cmd.Context()); err == nil && (counts.Budgets > 0 || counts.Expenses > 0) {
			header = fmt.Sprintf("Found %s budgets and %s expenses in %s.",
				formatNumber(int64(counts.Budgets)), formatNumber(int64(counts.Expenses)), config.DBPath(cfg))
		}
		_ = st.Close()
	}

	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(header, &vals).Run(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if err := vals.Apply(&cfg); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `moneyplan setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
