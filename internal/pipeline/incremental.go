package pipeline

import (
	"context"
	"fmt"

	"github.com/theirongolddev/moneyplan/internal/model"
	"github.com/theirongolddev/moneyplan/internal/source"
	"github.com/theirongolddev/moneyplan/internal/store"
)

// ImportStore is the subset of the store that Import writes to.
type ImportStore interface {
	TrackedFiles(ctx context.Context) (map[string]store.FileInfo, error)
	ImportFile(ctx context.Context, path string, fi store.FileInfo, budgets []model.Budget, expenses []model.Expense) error
}

// ImportResult extends LoadResult with change-tracking metadata.
type ImportResult struct {
	LoadResult
	Unchanged int
	Imported  int
}

// Import discovers exports under dir, skips files whose mtime and size match
// the last import, parses the rest in parallel and upserts their records.
// Files that fail to parse are counted and left untracked so the next run
// retries them.
func Import(ctx context.Context, dir string, st ImportStore, progressFn ProgressFunc) (*ImportResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &ImportResult{LoadResult: LoadResult{TotalFiles: len(files)}}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := st.TrackedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading import history: %w", err)
	}

	var changed []source.DiscoveredFile
	for _, f := range files {
		prev, ok := tracked[f.Path]
		if ok && prev.MtimeNs == f.MtimeNs && prev.SizeBytes == f.SizeBytes {
			result.Unchanged++
			continue
		}
		changed = append(changed, f)
	}

	if len(changed) == 0 {
		if progressFn != nil {
			progressFn(result.TotalFiles, result.TotalFiles)
		}
		return result, nil
	}

	results := parseAll(changed, func(n int) {
		if progressFn != nil {
			progressFn(n+result.Unchanged, result.TotalFiles)
		}
	})

	for _, pr := range results {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors

		fi := store.FileInfo{MtimeNs: pr.File.MtimeNs, SizeBytes: pr.File.SizeBytes}
		if err := st.ImportFile(ctx, pr.File.Path, fi, pr.Budgets, pr.Expenses); err != nil {
			return result, fmt.Errorf("importing %s: %w", pr.File.Path, err)
		}
		result.Imported++
		result.Budgets = append(result.Budgets, pr.Budgets...)
		result.Expenses = append(result.Expenses, pr.Expenses...)
	}

	return result, nil
}
