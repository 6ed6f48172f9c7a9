package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/moneyplan/internal/cli"
	"github.com/theirongolddev/moneyplan/internal/model"
	"github.com/theirongolddev/moneyplan/internal/pipeline"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagExpCategory string
	flagExpFrom     string
	flagExpTo       string
	flagExpSearch   string
	flagExpLimit    int

	flagExpAddDate     string
	flagExpAddAmount   string
	flagExpAddCategory string
	flagExpAddDesc     string
)

var expensesCmd = &cobra.Command{
	Use:     "expenses",
	Aliases: []string{"expense"},
	Short:   "List expenses, newest first",
	RunE:    runExpenses,
}

var expensesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an expense",
	Args:  cobra.NoArgs,
	RunE:  runExpensesAdd,
}

var expensesRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete an expense",
	Args:    cobra.ExactArgs(1),
	RunE:    runExpensesRm,
}

func init() {
	expensesCmd.Flags().StringVarP(&flagExpCategory, "category", "c", "", "Only this category")
	expensesCmd.Flags().StringVar(&flagExpFrom, "from", "", "Earliest date (YYYY-MM-DD)")
	expensesCmd.Flags().StringVar(&flagExpTo, "to", "", "Latest date (YYYY-MM-DD)")
	expensesCmd.Flags().StringVarP(&flagExpSearch, "search", "s", "", "Description contains (case-insensitive)")
	expensesCmd.Flags().IntVarP(&flagExpLimit, "limit", "n", 50, "Max rows to show (0 for all)")

	expensesAddCmd.Flags().StringVar(&flagExpAddDate, "date", "", "Date of the purchase (YYYY-MM-DD, default today)")
	expensesAddCmd.Flags().StringVar(&flagExpAddAmount, "amount", "", "Amount spent")
	expensesAddCmd.Flags().StringVarP(&flagExpAddCategory, "category", "c", "", "Expense category")
	expensesAddCmd.Flags().StringVarP(&flagExpAddDesc, "description", "m", "", "What it was for")

	expensesCmd.AddCommand(expensesAddCmd, expensesRmCmd)
	rootCmd.AddCommand(expensesCmd)
}

func runExpenses(cmd *cobra.Command, _ []string) error {
	filter := pipeline.ExpenseFilter{Search: flagExpSearch}
	if flagExpCategory != "" && !strings.EqualFold(flagExpCategory, "All") {
		c, err := model.ParseCategory(flagExpCategory)
		if err != nil {
			return err
		}
		filter.Category = string(c)
	}
	var err error
	if filter.From, err = parseOptionalDate("--from", flagExpFrom); err != nil {
		return err
	}
	if filter.To, err = parseOptionalDate("--to", flagExpTo); err != nil {
		return err
	}

	rec, err := loadRecords(cmd.Context())
	if err != nil {
		return err
	}

	shown := pipeline.FilterExpenses(rec.expenses, filter)
	if len(shown) == 0 {
		fmt.Println("\n  No matching expenses.")
		return nil
	}

	total := decimal.Zero
	for _, e := range shown {
		total = total.Add(e.Amount)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("EXPENSES  %s matching", formatNumber(int64(len(shown))))))
	fmt.Println()

	limited := shown
	if flagExpLimit > 0 && len(limited) > flagExpLimit {
		limited = limited[:flagExpLimit]
	}

	rows := make([][]string, 0, len(limited)+2)
	for _, e := range limited {
		rows = append(rows, []string{
			shortID(e.ID),
			cli.FormatDate(e.Date),
			string(e.Category),
			cli.FormatMoney(e.Amount),
			e.Description,
		})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Total", "", "", cli.FormatMoney(total), ""},
	)

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Date", "Category", "Amount", "Description"},
		Rows:    rows,
	}))

	if len(limited) < len(shown) {
		fmt.Printf("\n  Showing %d of %d. Use --limit 0 for all.\n", len(limited), len(shown))
	}
	return nil
}

func runExpensesAdd(cmd *cobra.Command, _ []string) error {
	clock, err := nowFunc()
	if err != nil {
		return err
	}
	now := clock()

	errs := model.FieldErrors{}
	e := model.Expense{
		Date:        model.DateOf(now),
		Description: strings.TrimSpace(flagExpAddDesc),
	}
	if flagExpAddDate != "" {
		if e.Date, err = model.ParseDate(flagExpAddDate); err != nil {
			errs["date"] = err.Error()
		}
	}
	if d, err := decimal.NewFromString(strings.TrimSpace(flagExpAddAmount)); err != nil {
		errs["amount"] = "Amount must be a number"
	} else {
		e.Amount = d
	}
	if flagExpAddCategory == "" {
		errs["category"] = "Category is required"
	} else if c, err := model.ParseCategory(flagExpAddCategory); err != nil {
		errs["category"] = err.Error()
	} else {
		e.Category = c
	}

	if err := model.ValidateExpense(e, now); err != nil {
		var fe model.FieldErrors
		if errors.As(err, &fe) {
			for k, v := range fe {
				if _, set := errs[k]; !set {
					errs[k] = v
				}
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}

	st, err := openStore(loadConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.SaveExpense(cmd.Context(), e)
	if err != nil {
		return err
	}
	fmt.Printf("  Recorded %s for %s on %s (%s)\n",
		cli.FormatMoney(saved.Amount), saved.Category, cli.FormatDate(saved.Date), shortID(saved.ID))
	return nil
}

func runExpensesRm(cmd *cobra.Command, args []string) error {
	st, err := openStore(loadConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	expenses, err := st.ListExpenses(cmd.Context())
	if err != nil {
		return err
	}
	ids := make([]string, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}
	id, err := matchID("expense", ids, args[0])
	if err != nil {
		return err
	}

	if err := st.DeleteExpense(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("  Deleted expense %s\n", shortID(id))
	return nil
}

func parseOptionalDate(flag, s string) (model.Date, error) {
	if s == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, fmt.Errorf("%s: %w", flag, err)
	}
	return d, nil
}
