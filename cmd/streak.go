package cmd

import (
	"fmt"

	"github.com/theirongolddev/moneyplan/internal/budget"
	"github.com/theirongolddev/moneyplan/internal/cli"
	"github.com/theirongolddev/moneyplan/internal/model"

	"github.com/spf13/cobra"
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Consecutive days every budget stayed on pace",
	RunE:  runStreak,
}

func init() {
	rootCmd.AddCommand(streakCmd)
}

func runStreak(cmd *cobra.Command, _ []string) error {
	rec, err := loadRecords(cmd.Context())
	if err != nil {
		return err
	}

	days := budget.CalculateStreak(rec.expenses, rec.budgets, rec.now)

	fmt.Println()
	if !rec.cfg.Streak.ShowBadge {
		fmt.Printf("  Streak: %d days\n\n", days)
		return nil
	}

	badge := budget.BadgeFor(days)
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s", badge.Icon, badge.Title)))
	fmt.Println()
	fmt.Printf("  %s\n", badge.Message())
	if days > 0 {
		since := model.DateOf(rec.now).AddDays(-(days - 1))
		fmt.Printf("  %s\n", cli.Muted("On budget since "+cli.FormatDate(since)))
	}
	if next := nextBadgeAt(days); next > 0 {
		fmt.Printf("  %s\n", cli.Muted(fmt.Sprintf("%d more days to %s", next-days, budget.BadgeFor(next).Title)))
	}
	fmt.Println()
	return nil
}

// nextBadgeAt returns the streak length of the next badge tier, or 0 at the top.
func nextBadgeAt(days int) int {
	for _, at := range []int{3, 7, 14, 30} {
		if days < at {
			return at
		}
	}
	return 0
}
