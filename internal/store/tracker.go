package store

import (
	"context"
	"fmt"

	"github.com/theirongolddev/moneyplan/internal/model"
)

// FileInfo holds the tracked mtime and size for an imported file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// TrackedFiles returns a map of file_path -> FileInfo for all imported files.
func (s *Store) TrackedFiles(ctx context.Context) (map[string]FileInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT file_path, mtime_ns, size_bytes FROM import_files")
	if err != nil {
		return nil, fmt.Errorf("querying import files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// TrackFile records that path was imported at the given mtime and size.
func (s *Store) TrackFile(ctx context.Context, path string, fi FileInfo) error {
	return trackFile(ctx, s.db, path, fi)
}

// ImportFile upserts every record parsed from one file and updates its
// tracking row in a single transaction.
func (s *Store) ImportFile(ctx context.Context, path string, fi FileInfo, budgets []model.Budget, expenses []model.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := stampNow()
	for _, b := range budgets {
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
		if err := upsertBudget(ctx, tx, b); err != nil {
			return err
		}
	}
	for _, e := range expenses {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = now
		}
		if err := upsertExpense(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := trackFile(ctx, tx, path, fi); err != nil {
		return err
	}
	return tx.Commit()
}

func trackFile(ctx context.Context, db execer, path string, fi FileInfo) error {
	_, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO import_files
		(file_path, mtime_ns, size_bytes, imported_at) VALUES (?, ?, ?, ?)`,
		path, fi.MtimeNs, fi.SizeBytes, formatTime(stampNow()))
	if err != nil {
		return fmt.Errorf("tracking %s: %w", path, err)
	}
	return nil
}
