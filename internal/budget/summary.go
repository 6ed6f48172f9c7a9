package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/moneyplan/internal/model"
)

// GenerateSummary computes progress for every active budget, preserving input
// order, and folds the totals.
func GenerateSummary(budgets []model.Budget, expenses []model.Expense, now time.Time) model.BudgetSummary {
	s := model.BudgetSummary{
		TotalBudgeted:  decimal.Zero,
		TotalSpent:     decimal.Zero,
		TotalRemaining: decimal.Zero,
		BudgetProgress: []model.BudgetProgress{},
	}

	for _, b := range budgets {
		if !b.IsActive {
			continue
		}
		p := CalculateProgress(b, expenses, now)
		s.BudgetProgress = append(s.BudgetProgress, p)

		s.TotalBudgeted = s.TotalBudgeted.Add(nonNegative(b.Amount))
		s.TotalSpent = s.TotalSpent.Add(p.Spent)
		if p.IsOverBudget {
			s.OverBudgetCount++
		}
		if p.ShouldAlert {
			s.AlertCount++
		}
	}

	s.TotalRemaining = nonNegative(s.TotalBudgeted.Sub(s.TotalSpent))
	return s
}
