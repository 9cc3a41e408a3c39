package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/MattaKruger/timbre/decode"
	"github.com/MattaKruger/timbre/features"
	"github.com/MattaKruger/timbre/logging"
)

// FileResult is the outcome for one file in a batch: either Features or Err
// is set, never both.
type FileResult struct {
	Path     string
	Features features.AudioFeatures
	Err      error
}

// RunResult collects per-file outcomes in lexicographic path order,
// regardless of which worker finished first.
type RunResult struct {
	Results []FileResult
}

// Features returns the successful vectors, preserving order
func (r *RunResult) Features() []features.AudioFeatures {
	out := make([]features.AudioFeatures, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Err == nil {
			out = append(out, res.Features)
		}
	}
	return out
}

// Failures returns the results that carry an error, preserving order
func (r *RunResult) Failures() []FileResult {
	var out []FileResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// BatchConfig tunes the batch runner
type BatchConfig struct {
	Workers     int           // concurrent extractions, default NumCPU
	FileTimeout time.Duration // per-file wall clock limit, 0 disables
}

// DefaultBatchConfig returns the standard batch settings
func DefaultBatchConfig() *BatchConfig {
	return &BatchConfig{
		Workers:     runtime.NumCPU(),
		FileTimeout: 2 * time.Minute,
	}
}

// Batch extracts features from every supported file in a directory. Files
// are processed by a worker pool; one bad file is logged and skipped, never
// fatal for its siblings. A stuck decode is cut off by the per-file timeout.
type Batch struct {
	extractor   *Extractor
	workers     int
	fileTimeout time.Duration
	logger      logging.Logger
}

// NewBatch creates a batch runner around an extractor. A nil config selects
// DefaultBatchConfig.
func NewBatch(extractor *Extractor, config *BatchConfig) *Batch {
	if config == nil {
		config = DefaultBatchConfig()
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Batch{
		extractor:   extractor,
		workers:     workers,
		fileTimeout: config.FileTimeout,
		logger: logging.WithFields(logging.Fields{
			"component": "batch",
		}),
	}
}

// Run scans dir (non-recursive), keeps regular files whose extension is on
// the decode allow-list, and extracts them concurrently. The result slice
// follows the lexicographic file order. A missing directory fails with
// features.ErrNotFound.
func (b *Batch) Run(ctx context.Context, dir string) (*RunResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", dir, features.ErrNotFound)
		}
		return nil, err
	}

	// os.ReadDir returns entries sorted by name, which fixes the output
	// order up front.
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !decode.IsSupported(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	b.logger.Info("starting batch", logging.Fields{
		"dir":     dir,
		"files":   len(paths),
		"workers": b.workers,
	})

	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return &RunResult{Results: results}, nil
	}

	workers := b.workers
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = b.processFile(ctx, paths[i])
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	b.logger.Info("batch complete", logging.Fields{
		"dir":       dir,
		"extracted": len(paths) - failed,
		"failed":    failed,
	})

	return &RunResult{Results: results}, nil
}

func (b *Batch) processFile(ctx context.Context, path string) FileResult {
	fileCtx := ctx
	if b.fileTimeout > 0 {
		var cancel context.CancelFunc
		fileCtx, cancel = context.WithTimeout(ctx, b.fileTimeout)
		defer cancel()
	}

	fv, err := b.extractor.ExtractFile(fileCtx, path)
	if err != nil {
		b.logger.Warn("skipping file", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return FileResult{Path: path, Err: err}
	}
	return FileResult{Path: path, Features: fv}
}

// ExtractDirectory is a convenience wrapper returning only the successful
// vectors.
func (b *Batch) ExtractDirectory(ctx context.Context, dir string) ([]features.AudioFeatures, error) {
	result, err := b.Run(ctx, dir)
	if err != nil {
		return nil, err
	}
	return result.Features(), nil
}
