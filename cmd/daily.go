package cmd

import (
	"fmt"

	"github.com/theirongolddev/moneyplan/internal/cli"
	"github.com/theirongolddev/moneyplan/internal/model"
	"github.com/theirongolddev/moneyplan/internal/pipeline"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var flagDailyDays int

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily spending table",
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().IntVarP(&flagDailyDays, "days", "n", 14, "Days to show, ending today")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, _ []string) error {
	if flagDailyDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	rec, err := loadRecords(cmd.Context())
	if err != nil {
		return err
	}

	today := model.DateOf(rec.now)
	days := pipeline.DailyTotals(rec.expenses, today.AddDays(-(flagDailyDays - 1)), today)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY SPENDING  Last %dd", flagDailyDays)))
	fmt.Println()

	total := decimal.Zero
	spark := make([]float64, len(days))
	rows := make([][]string, 0, len(days)+2)
	// Newest first, like the expense list.
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		total = total.Add(d.Amount)
		spark[i] = d.Amount.InexactFloat64()
		rows = append(rows, []string{
			d.Date.String(),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			cli.FormatMoney(d.Amount),
		})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Total", "", cli.FormatMoney(total)},
	)

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Spent"},
		Rows:    rows,
	}))
	fmt.Printf("\n  %s\n\n", cli.RenderSparkline(spark))
	return nil
}
