// Package pipeline loads exported records and derives spending reports.
package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/moneyplan/internal/model"
	"github.com/theirongolddev/moneyplan/internal/source"
)

// LoadResult holds the output of parsing a directory of exports.
type LoadResult struct {
	Budgets     []model.Budget
	Expenses    []model.Expense
	TotalFiles  int
	ParsedFiles int
	ParseErrors int
	FileErrors  int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every export under dir without touching the
// store. Records sharing an id are merged; the file later in path order wins.
func Load(dir string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	results := parseAll(files, func(n int) {
		if progressFn != nil {
			progressFn(n, len(files))
		}
	})

	var budgets []model.Budget
	var expenses []model.Expense
	for _, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		budgets = append(budgets, pr.Budgets...)
		expenses = append(expenses, pr.Expenses...)
	}

	result.Budgets = dedupeBudgets(budgets)
	result.Expenses = dedupeExpenses(expenses)
	return result, nil
}

// parseAll parses files with a bounded worker pool. Results keep the order
// of files. onDone receives the running count of finished files.
func parseAll(files []source.DiscoveredFile, onDone func(n int)) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if onDone != nil {
					onDone(int(n))
				}
			}
		}()
	}

	wg.Wait()
	return results
}

func dedupeBudgets(in []model.Budget) []model.Budget {
	idx := make(map[string]int, len(in))
	out := make([]model.Budget, 0, len(in))
	for _, b := range in {
		if i, ok := idx[b.ID]; ok {
			out[i] = b
			continue
		}
		idx[b.ID] = len(out)
		out = append(out, b)
	}
	return out
}

func dedupeExpenses(in []model.Expense) []model.Expense {
	idx := make(map[string]int, len(in))
	out := make([]model.Expense, 0, len(in))
	for _, e := range in {
		if i, ok := idx[e.ID]; ok {
			out[i] = e
			continue
		}
		idx[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}
