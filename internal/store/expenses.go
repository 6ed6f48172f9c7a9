package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/theirongolddev/moneyplan/internal/model"
)

const expenseColumns = `id, date, amount, category, description, created_at, updated_at`

// ListExpenses returns every expense, most recent first.
func (s *Store) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+expenseColumns+`
		FROM expenses ORDER BY date DESC, created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	expenses := []model.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// GetExpense returns the expense with the given id or ErrNotFound.
func (s *Store) GetExpense(ctx context.Context, id string) (model.Expense, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Expense{}, fmt.Errorf("expense %q: %w", id, ErrNotFound)
	}
	return e, err
}

// SaveExpense inserts e or replaces the stored expense with the same id and
// returns the stored record.
func (s *Store) SaveExpense(ctx context.Context, e model.Expense) (model.Expense, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := stampNow()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	if err := upsertExpense(ctx, s.db, e); err != nil {
		return model.Expense{}, err
	}
	return s.GetExpense(ctx, e.ID)
}

// DeleteExpense removes an expense.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	return requireAffected(res, "expense", id)
}

func upsertExpense(ctx context.Context, db execer, e model.Expense) error {
	_, err := db.ExecContext(ctx, `INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			amount = excluded.amount,
			category = excluded.category,
			description = excluded.description,
			updated_at = excluded.updated_at`,
		e.ID, e.Date.String(), e.Amount.String(), string(e.Category), e.Description,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving expense %s: %w", e.ID, err)
	}
	return nil
}

func scanExpense(r rowScanner) (model.Expense, error) {
	var e model.Expense
	var category, createdAt, updatedAt string

	err := r.Scan(&e.ID, &e.Date, &e.Amount, &category, &e.Description, &createdAt, &updatedAt)
	if err != nil {
		return model.Expense{}, err
	}
	e.Category = model.Category(category)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}
