package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/finbatch/finbatch/internal/fetch"
	"github.com/finbatch/finbatch/internal/layout"
	"github.com/finbatch/finbatch/internal/manifest"
	"github.com/finbatch/finbatch/internal/progress"
)

// Fetcher retrieves one remote document into a local file.
// *fetch.Client satisfies this interface.
type Fetcher interface {
	FetchFile(ctx context.Context, url string, cred *fetch.Credential, dest string) (int64, error)
}

// DuplicatePolicy controls what happens when two manifest rows derive the
// same storage path (same record, category, and date).
type DuplicatePolicy string

const (
	// Overwrite keeps the last occurrence (last write wins); earlier
	// occurrences are superseded and never fetched. This is the default.
	Overwrite DuplicatePolicy = "overwrite"

	// Reject records the later occurrence as an item failure without
	// fetching it.
	Reject DuplicatePolicy = "reject"
)

// Options configures batch processing.
type Options struct {
	// Workers is the number of parallel fetch workers.
	// Default: 1 (strictly sequential processing).
	Workers int

	// Duplicates selects the duplicate-path policy. Default: Overwrite.
	Duplicates DuplicatePolicy

	// Credential, when non-nil, is attached to every fetch request.
	Credential *fetch.Credential

	// Progress is an optional progress reporter.
	Progress *progress.Reporter

	// OnRowDone, when non-nil, is called after each row has finished all
	// of its items, with the monotonically increasing done count.
	OnRowDone func(done, total int)
}

// Failure records one (row, category) item that could not be stored.
type Failure struct {
	Line     int
	RecordID string
	Category string
	URL      string
	Reason   string
}

// Report summarizes one batch run. Attempted equals Succeeded plus the
// number of Failures; Skipped counts absent URL cells and occurrences
// superseded under the overwrite duplicate policy.
type Report struct {
	Attempted int
	Succeeded int
	Skipped   int
	Failures  []Failure
	Rejected  []manifest.RejectedRow
}

// item is one (row, category) fetch unit.
type item struct {
	row      int // index into m.Rows
	line     int
	recordID string
	category string
	url      string
	dest     string
}

// Process fetches every document referenced by the manifest into the working
// tree under root. Item failures are collected in the report and never halt
// the batch; the returned error is non-nil only for run-fatal conditions
// (unusable working root). All in-flight items are awaited before the report
// is returned, so the tree is quiescent when Process returns.
func Process(ctx context.Context, f Fetcher, root string, m *manifest.Manifest, cats []layout.Category, opts Options) (*Report, error) {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Duplicates == "" {
		opts.Duplicates = Overwrite
	}

	if err := ensureDir(root); err != nil {
		return nil, fmt.Errorf("batch: create working root: %w", err)
	}

	report := &Report{
		Rejected: append([]manifest.RejectedRow(nil), m.Rejected...),
	}

	// Expand rows into fetch items. Duplicate resolution happens here, in
	// manifest order, so the policy is deterministic regardless of worker
	// scheduling and no two items ever target the same destination.
	seen := make(map[string]int)
	var items []item
	rowPending := make([]int, len(m.Rows))
	for i, row := range m.Rows {
		for _, cat := range cats {
			url, ok := row.URLs[cat.Name]
			if !ok {
				report.Skipped++
				continue
			}

			rel := layout.Derive(row.RecordID, cat, row.Date)
			if prev, dup := seen[rel]; dup {
				if opts.Duplicates == Reject {
					report.Attempted++
					report.Failures = append(report.Failures, Failure{
						Line:     row.Line,
						RecordID: row.RecordID,
						Category: cat.Name,
						URL:      url,
						Reason:   fmt.Sprintf("duplicate path %s", rel),
					})
					continue
				}
				// Overwrite: the later occurrence supersedes the
				// earlier one, which is never fetched.
				rowPending[items[prev].row]--
				rowPending[i]++
				report.Skipped++
				items[prev] = item{
					row:      i,
					line:     row.Line,
					recordID: row.RecordID,
					category: cat.Name,
					url:      url,
					dest:     items[prev].dest,
				}
				continue
			}
			seen[rel] = len(items)

			items = append(items, item{
				row:      i,
				line:     row.Line,
				recordID: row.RecordID,
				category: cat.Name,
				url:      url,
				dest:     filepath.Join(root, filepath.FromSlash(rel)),
			})
			rowPending[i]++
		}
	}

	total := len(m.Rows)
	rowsDone := 0
	notify := func() {
		if opts.Progress != nil {
			opts.Progress.RowCompleted()
		}
		if opts.OnRowDone != nil {
			opts.OnRowDone(rowsDone, total)
		}
	}

	// Rows whose items were all absent or rejected are complete before any
	// fetch happens.
	for i := range m.Rows {
		if rowPending[i] == 0 {
			rowsDone++
			notify()
		}
	}

	var mu sync.Mutex
	jobs := make(chan item)
	var wg sync.WaitGroup

	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range jobs {
				if opts.Progress != nil {
					opts.Progress.ItemStarted()
				}

				var size int64
				err := ensureDir(filepath.Dir(it.dest))
				if err != nil {
					err = fmt.Errorf("create directory: %w", err)
				} else {
					size, err = f.FetchFile(ctx, it.url, opts.Credential, it.dest)
				}

				if opts.Progress != nil {
					if err != nil {
						opts.Progress.ItemFailed()
					} else {
						opts.Progress.ItemCompleted(size)
					}
				}

				mu.Lock()
				report.Attempted++
				if err != nil {
					report.Failures = append(report.Failures, Failure{
						Line:     it.line,
						RecordID: it.recordID,
						Category: it.category,
						URL:      it.url,
						Reason:   err.Error(),
					})
				} else {
					report.Succeeded++
				}
				rowPending[it.row]--
				if rowPending[it.row] == 0 {
					rowsDone++
					notify()
				}
				mu.Unlock()
			}
		}()
	}

	for _, it := range items {
		jobs <- it
	}
	close(jobs)
	wg.Wait()

	return report, nil
}

// ensureDir creates the directory chain for path. Creating an existing
// directory is not an error, so concurrent callers are safe.
func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
