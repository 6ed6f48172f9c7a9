package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/theirongolddev/moneyplan/internal/model"
)

const budgetColumns = `id, name, category, amount, period, start_date, end_date,
	alert_threshold, is_active, created_at, updated_at`

// ListBudgets returns every budget in creation order.
func (s *Store) ListBudgets(ctx context.Context) ([]model.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+budgetColumns+`
		FROM budgets ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	budgets := []model.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// GetBudget returns the budget with the given id or ErrNotFound.
func (s *Store) GetBudget(ctx context.Context, id string) (model.Budget, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Budget{}, fmt.Errorf("budget %q: %w", id, ErrNotFound)
	}
	return b, err
}

// SaveBudget inserts b or replaces the stored budget with the same id. A
// missing id is generated. The stored record is returned, so an update keeps
// the original CreatedAt.
func (s *Store) SaveBudget(ctx context.Context, b model.Budget) (model.Budget, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := stampNow()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	if err := upsertBudget(ctx, s.db, b); err != nil {
		return model.Budget{}, err
	}
	return s.GetBudget(ctx, b.ID)
}

// DeleteBudget removes a budget.
func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}
	return requireAffected(res, "budget", id)
}

// SetBudgetActive toggles whether a budget takes part in the summary.
func (s *Store) SetBudgetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE budgets SET is_active = ?, updated_at = ? WHERE id = ?",
		active, formatTime(stampNow()), id)
	if err != nil {
		return fmt.Errorf("updating budget: %w", err)
	}
	return requireAffected(res, "budget", id)
}

func upsertBudget(ctx context.Context, db execer, b model.Budget) error {
	var endDate any
	if b.EndDate != nil && !b.EndDate.IsZero() {
		endDate = b.EndDate.String()
	}
	_, err := db.ExecContext(ctx, `INSERT INTO budgets (`+budgetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			amount = excluded.amount,
			period = excluded.period,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			alert_threshold = excluded.alert_threshold,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`,
		b.ID, b.Name, b.Category.String(), b.Amount.String(), string(b.Period),
		b.StartDate.String(), endDate, b.AlertThreshold, b.IsActive,
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving budget %s: %w", b.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudget(r rowScanner) (model.Budget, error) {
	var b model.Budget
	var endDate model.Date
	var createdAt, updatedAt string
	var period string

	err := r.Scan(&b.ID, &b.Name, &b.Category, &b.Amount, &period, &b.StartDate, &endDate,
		&b.AlertThreshold, &b.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return model.Budget{}, err
	}

	b.Period = model.Period(period)
	if !endDate.IsZero() {
		b.EndDate = &endDate
	}
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return b, nil
}
