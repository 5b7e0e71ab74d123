package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/patternqa/patternqa/internal/model"
)

// indexFileName is the collection index written next to run records.
// It is bookkeeping for the collector, not a run record.
const indexFileName = "index.json"

// defaultWorkers is the concurrent file decode limit when none is configured.
const defaultWorkers = 8

// Loader reads a directory of run records concurrently.
//
// Design decision: We load files concurrently with errgroup.SetLimit rather
// than sequentially because:
// 1. Result directories routinely hold hundreds of records
// 2. Evidence bundles make individual records large, so decode dominates
// 3. SetLimit bounds memory without a hand-rolled worker pool
type Loader struct {
	// workers is the maximum number of files decoded at once.
	workers int

	// limit caps how many record files are processed. Zero means no cap.
	limit int

	// aliases maps lowercased technology labels to their canonical form
	// (e.g. "wp" -> "wordpress"). Applied after record normalization.
	aliases map[string]string

	// logger is used for per-file skip warnings.
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithWorkers sets the maximum number of files decoded concurrently.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLimit caps how many record files are processed. Zero means no cap.
func WithLimit(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.limit = n
		}
	}
}

// WithAliases sets the technology alias table. Keys and values are expected
// lowercase.
func WithAliases(aliases map[string]string) Option {
	return func(l *Loader) {
		l.aliases = aliases
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Result is the outcome of loading one directory.
type Result struct {
	// Runs holds the normalized records in file name order.
	Runs []*model.AnalysisRun

	// Loaded is the number of files that produced a run.
	Loaded int

	// Skipped counts files that were unreadable, malformed, or of an
	// unrecognized layout.
	Skipped int
}

// LoadDirectory reads every *.json record under dir and normalizes it.
//
// Malformed files are logged and counted in Result.Skipped, never fatal:
// result directories accumulate partial writes and collector indexes, and
// one bad file must not block an evaluation. The error return is reserved
// for the directory itself being unreadable, context cancellation, or a
// directory with no usable records at all.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) (*Result, error) {
	files, err := listRecordFiles(dir, l.limit)
	if err != nil {
		return nil, err
	}

	l.logger.Info("loading run records",
		"dir", dir,
		"files", len(files),
		"workers", l.workers,
	)

	// Indexed by file position so the output keeps file name order
	// regardless of goroutine completion order.
	runs := make([]*model.AnalysisRun, len(files))
	var mu sync.Mutex
	skipped := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, file := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			run, err := l.loadFile(file)
			if err != nil {
				l.logger.Warn("skipping record",
					"file", file,
					"error", err,
				)
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			runs[i] = run
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Runs:    make([]*model.AnalysisRun, 0, len(files)),
		Skipped: skipped,
	}
	for _, run := range runs {
		if run != nil {
			result.Runs = append(result.Runs, run)
		}
	}
	result.Loaded = len(result.Runs)

	if result.Loaded == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, dir)
	}

	l.logger.Info("run records loaded",
		"loaded", result.Loaded,
		"skipped", result.Skipped,
	)

	return result, nil
}

// loadFile reads and normalizes one record, then applies alias resolution.
func (l *Loader) loadFile(path string) (*model.AnalysisRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}

	run, err := NormalizeRecord(data)
	if err != nil {
		return nil, err
	}

	if canonical, ok := l.aliases[run.Technology]; ok {
		run.Technology = canonical
	}

	return run, nil
}

// listRecordFiles returns the sorted *.json record paths under dir,
// excluding the collector index, truncated to limit when limit > 0.
func listRecordFiles(dir string, limit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loader: read directory %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == indexFileName || !strings.HasSuffix(name, ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)

	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	return files, nil
}
