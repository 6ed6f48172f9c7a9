package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/moneyplan/internal/budget"
	"github.com/theirongolddev/moneyplan/internal/cli"
	"github.com/theirongolddev/moneyplan/internal/model"
	"github.com/theirongolddev/moneyplan/internal/store"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagBudgetName     string
	flagBudgetCategory string
	flagBudgetAmount   string
	flagBudgetPeriod   string
	flagBudgetStart    string
	flagBudgetEnd      string
	flagBudgetAlert    float64
	flagBudgetAll      bool
)

var budgetsCmd = &cobra.Command{
	Use:     "budgets",
	Aliases: []string{"budget"},
	Short:   "Per-budget progress for the current period",
	RunE:    runBudgets,
}

var budgetsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a budget",
	Args:  cobra.NoArgs,
	RunE:  runBudgetsAdd,
}

var budgetsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Replace fields of a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsEdit,
}

var budgetsRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a budget",
	Args:    cobra.ExactArgs(1),
	RunE:    runBudgetsRm,
}

var budgetsEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Include a budget in the summary and streak",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setBudgetActive(cmd.Context(), args[0], true) },
}

var budgetsDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Exclude a budget from the summary and streak",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setBudgetActive(cmd.Context(), args[0], false) },
}

func init() {
	budgetsCmd.Flags().BoolVarP(&flagBudgetAll, "all", "a", false, "Include disabled budgets")

	for _, c := range []*cobra.Command{budgetsAddCmd, budgetsEditCmd} {
		c.Flags().StringVar(&flagBudgetName, "name", "", "Budget name")
		c.Flags().StringVarP(&flagBudgetCategory, "category", "c", "", "Expense category, or Total for all categories")
		c.Flags().StringVar(&flagBudgetAmount, "amount", "", "Spending limit per period")
		c.Flags().StringVarP(&flagBudgetPeriod, "period", "p", "", "weekly, monthly or yearly (default from config)")
		c.Flags().StringVar(&flagBudgetStart, "start", "", "First day the budget applies (YYYY-MM-DD, default today)")
		c.Flags().StringVar(&flagBudgetEnd, "end", "", "Last day the budget applies (YYYY-MM-DD, \"none\" to clear)")
		c.Flags().Float64Var(&flagBudgetAlert, "alert", 0, "Alert threshold percent (default from config)")
	}

	budgetsCmd.AddCommand(budgetsAddCmd, budgetsEditCmd, budgetsRmCmd, budgetsEnableCmd, budgetsDisableCmd)
	rootCmd.AddCommand(budgetsCmd)
}

func runBudgets(cmd *cobra.Command, _ []string) error {
	rec, err := loadRecords(cmd.Context())
	if err != nil {
		return err
	}
	if len(rec.budgets) == 0 {
		fmt.Println("\n  No budgets yet. Create one with `moneyplan budgets add`.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGETS"))
	fmt.Println()

	rows := make([][]string, 0, len(rec.budgets))
	for _, b := range rec.budgets {
		if !b.IsActive && !flagBudgetAll {
			continue
		}
		p := budget.CalculateProgress(b, rec.expenses, rec.now)
		status := cli.StatusStyle(p).Render(cli.StatusLabel(p))
		if !b.IsActive {
			status = cli.Muted("off")
		}
		rows = append(rows, []string{
			shortID(b.ID),
			b.Name,
			b.Category.String(),
			string(b.Period),
			fmt.Sprintf("%s - %s", cli.FormatDate(p.PeriodStart), cli.FormatDate(p.PeriodEnd)),
			cli.FormatMoney(p.Spent) + " / " + cli.FormatMoney(b.Amount),
			cli.FormatPercent(p.Percentage),
			cli.FormatMoney(p.DailyAllowance) + "/day",
			status,
		})
	}
	if len(rows) == 0 {
		fmt.Println("  Every budget is disabled. Pass --all to list them.")
		return nil
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Name", "Category", "Period", "Window", "Spent", "Used", "Allowance", "Status"},
		Rows:    rows,
	}))
	return nil
}

func runBudgetsAdd(cmd *cobra.Command, _ []string) error {
	clock, err := nowFunc()
	if err != nil {
		return err
	}
	cfg := loadConfig()

	b := model.Budget{
		Name:           strings.TrimSpace(flagBudgetName),
		Period:         model.Period(cfg.Budget.DefaultPeriod),
		StartDate:      model.DateOf(clock()),
		AlertThreshold: cfg.Budget.DefaultAlertThreshold,
		IsActive:       true,
	}
	if err := applyBudgetFlags(cmd, &b, true); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.SaveBudget(cmd.Context(), b)
	if err != nil {
		return err
	}
	fmt.Printf("  Created budget %s (%s)\n", saved.Name, shortID(saved.ID))
	return nil
}

func runBudgetsEdit(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := resolveBudgetID(cmd.Context(), st, args[0])
	if err != nil {
		return err
	}
	b, err := st.GetBudget(cmd.Context(), id)
	if err != nil {
		return err
	}
	if err := applyBudgetFlags(cmd, &b, false); err != nil {
		return err
	}

	saved, err := st.SaveBudget(cmd.Context(), b)
	if err != nil {
		return err
	}
	fmt.Printf("  Updated budget %s (%s)\n", saved.Name, shortID(saved.ID))
	return nil
}

// applyBudgetFlags copies the flags the user set onto b and validates the
// result. Parse and validation problems are reported together.
func applyBudgetFlags(cmd *cobra.Command, b *model.Budget, creating bool) error {
	errs := model.FieldErrors{}
	changed := cmd.Flags().Changed

	if changed("name") {
		b.Name = strings.TrimSpace(flagBudgetName)
	}
	if changed("category") {
		c, err := model.ParseBudgetCategory(flagBudgetCategory)
		if err != nil {
			errs["category"] = err.Error()
		} else {
			b.Category = c
		}
	} else if creating {
		errs["category"] = "Category is required"
	}
	if changed("amount") {
		d, err := decimal.NewFromString(strings.TrimSpace(flagBudgetAmount))
		if err != nil {
			errs["amount"] = "Amount must be a number"
		} else {
			b.Amount = d
		}
	}
	if changed("period") {
		p, err := model.ParsePeriod(flagBudgetPeriod)
		if err != nil {
			errs["period"] = err.Error()
		} else {
			b.Period = p
		}
	}
	if changed("start") {
		d, err := model.ParseDate(flagBudgetStart)
		if err != nil {
			errs["startDate"] = err.Error()
		} else {
			b.StartDate = d
		}
	}
	if changed("end") {
		if strings.EqualFold(flagBudgetEnd, "none") || flagBudgetEnd == "" {
			b.EndDate = nil
		} else if d, err := model.ParseDate(flagBudgetEnd); err != nil {
			errs["endDate"] = err.Error()
		} else {
			b.EndDate = &d
		}
	}
	if changed("alert") {
		b.AlertThreshold = flagBudgetAlert
	}

	if err := model.ValidateBudget(*b); err != nil {
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
	return nil
}

func runBudgetsRm(cmd *cobra.Command, args []string) error {
	st, err := openStore(loadConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := resolveBudgetID(cmd.Context(), st, args[0])
	if err != nil {
		return err
	}
	if err := st.DeleteBudget(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("  Deleted budget %s\n", shortID(id))
	return nil
}

func setBudgetActive(ctx context.Context, idOrPrefix string, active bool) error {
	st, err := openStore(loadConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := resolveBudgetID(ctx, st, idOrPrefix)
	if err != nil {
		return err
	}
	if err := st.SetBudgetActive(ctx, id, active); err != nil {
		return err
	}
	state := "Disabled"
	if active {
		state = "Enabled"
	}
	fmt.Printf("  %s budget %s\n", state, shortID(id))
	return nil
}

// resolveBudgetID accepts a full id or a unique prefix of one.
func resolveBudgetID(ctx context.Context, st *store.Store, prefix string) (string, error) {
	budgets, err := st.ListBudgets(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(budgets))
	for i, b := range budgets {
		ids[i] = b.ID
	}
	return matchID("budget", ids, prefix)
}

func matchID(kind string, ids []string, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%s id is required", kind)
	}
	var match string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", fmt.Errorf("%s id %q is ambiguous", kind, prefix)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("%s %q: %w", kind, prefix, store.ErrNotFound)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
