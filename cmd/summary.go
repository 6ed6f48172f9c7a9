package cmd

import (
	"fmt"

	"github.com/theirongolddev/moneyplan/internal/budget"
	"github.com/theirongolddev/moneyplan/internal/cli"
	"github.com/theirongolddev/moneyplan/internal/model"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Progress of every active budget with totals and streak",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	rec, err := loadRecords(cmd.Context())
	if err != nil {
		return err
	}

	if len(rec.budgets) == 0 {
		fmt.Println("\n  No budgets yet.")
		fmt.Println("  Create one with `moneyplan budgets add` or `moneyplan import <dir>`.")
		return nil
	}

	sum := budget.GenerateSummary(rec.budgets, rec.expenses, rec.now)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BUDGETS  as of %s", cli.FormatDate(model.DateOf(rec.now)))))
	fmt.Println()

	if len(sum.BudgetProgress) == 0 {
		fmt.Println("  Every budget is disabled. Enable one with `moneyplan budgets enable <id>`.")
		return nil
	}

	rows := make([][]string, 0, len(sum.BudgetProgress)+4)
	for _, p := range sum.BudgetProgress {
		rows = append(rows, []string{
			p.Budget.Name,
			cli.RenderBudgetBar(p, 12) + " " + cli.StatusStyle(p).Render(cli.FormatPercent(p.Percentage)),
			cli.FormatMoney(p.Spent),
			cli.FormatMoney(p.Budget.Amount),
			cli.FormatMoney(p.Remaining),
			cli.FormatDaysLeft(p.DaysRemaining),
		})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Total", "", cli.FormatMoney(sum.TotalSpent), cli.FormatMoney(sum.TotalBudgeted), cli.FormatMoney(sum.TotalRemaining), ""},
	)

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Budget", "Used", "Spent", "Limit", "Remaining", "Period"},
		Rows:    rows,
	}))

	if sum.OverBudgetCount > 0 || sum.AlertCount > 0 {
		fmt.Printf("\n  %d over budget, %d near their alert threshold\n", sum.OverBudgetCount, sum.AlertCount)
	}

	if rec.cfg.Streak.ShowBadge {
		badge := budget.BadgeFor(budget.CalculateStreak(rec.expenses, rec.budgets, rec.now))
		fmt.Printf("\n  %s %s · %s\n", badge.Icon, badge.Title, badge.Message())
	}
	fmt.Println()

	return nil
}
