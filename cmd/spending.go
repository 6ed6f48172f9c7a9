package cmd

import (
	"fmt"

	"github.com/theirongolddev/moneyplan/internal/cli"
	"github.com/theirongolddev/moneyplan/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagSpendingMonths int

var spendingCmd = &cobra.Command{
	Use:   "spending",
	Short: "Spending by category and by month",
	RunE:  runSpending,
}

func init() {
	spendingCmd.Flags().IntVarP(&flagSpendingMonths, "months", "m", 6, "Recent months to show")
	rootCmd.AddCommand(spendingCmd)
}

func runSpending(cmd *cobra.Command, _ []string) error {
	rec, err := loadRecords(cmd.Context())
	if err != nil {
		return err
	}
	if len(rec.expenses) == 0 {
		fmt.Println("\n  No expenses recorded.")
		return nil
	}

	sum := pipeline.SummarizeExpenses(rec.expenses, rec.now)

	fmt.Println()
	fmt.Println(cli.RenderTitle("SPENDING"))
	fmt.Println()
	fmt.Printf("  All time    %s\n", cli.FormatMoney(sum.TotalExpenses))
	fmt.Printf("  This month  %s\n\n", cli.FormatMoney(sum.MonthlyTotal))

	rows := make([][]string, 0, len(sum.CategorySummary))
	for _, c := range sum.CategorySummary {
		rows = append(rows, []string{
			string(c.Category),
			formatNumber(int64(c.Count)),
			cli.FormatMoney(c.Amount),
			cli.FormatPercent(c.Percentage),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Category",
		Headers: []string{"Category", "Count", "Amount", "Share"},
		Rows:    rows,
	}))

	months := pipeline.MonthlyTotals(rec.expenses)
	if flagSpendingMonths > 0 && len(months) > flagSpendingMonths {
		months = months[len(months)-flagSpendingMonths:]
	}
	if len(months) == 0 {
		return nil
	}

	peak := 0.0
	for _, m := range months {
		peak = max(peak, m.Amount.InexactFloat64())
	}

	fmt.Println()
	fmt.Println("  " + cli.Header("By Month"))
	for i, m := range months {
		line := cli.RenderHorizontalBar(fmt.Sprintf("%-7s %10s", m.Month, cli.FormatMoney(m.Amount)), m.Amount.InexactFloat64(), peak, 30)
		if i > 0 {
			line += "  " + cli.Muted(cli.FormatDelta(m.Amount, months[i-1].Amount))
		}
		fmt.Println(line)
	}
	fmt.Println()
	return nil
}
