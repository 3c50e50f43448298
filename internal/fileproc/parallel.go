// Package fileproc parses source files concurrently with one tree-sitter parser per
// file.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/sourcegraph/conc/pool"
)

// FileError is the failure of one source file.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// FileErrors collects the failures of a MapFiles call. Safe for concurrent Add.
type FileErrors struct {
	mu    sync.Mutex
	files []FileError
}

// Add records a failed file.
func (e *FileErrors) Add(path string, err error) {
	e.mu.Lock()
	e.files = append(e.files, FileError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors reports whether any file failed. A nil collection has none.
func (e *FileErrors) HasErrors() bool {
	return e.Len() > 0
}

// Len returns the number of failed files.
func (e *FileErrors) Len() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.files)
}

// Files returns the failures sorted by path.
func (e *FileErrors) Files() []FileError {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	out := make([]FileError, len(e.files))
	copy(out, e.files)
	e.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Error names up to three failed files.
func (e *FileErrors) Error() string {
	files := e.Files()
	switch len(files) {
	case 0:
		return "no errors"
	case 1:
		return files[0].Error()
	}
	shown := files
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	parts := make([]string, len(shown))
	for i, f := range shown {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%d files failed: %s", len(files), strings.Join(parts, "; "))
}

const maxShown = 3

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *FileErrors) Unwrap() []error {
	files := e.Files()
	out := make([]error, len(files))
	for i, f := range files {
		out[i] = f
	}
	return out
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x suits the mix of file I/O and CGO parsing.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// MapFiles processes files in parallel, calling fn with a dedicated tree-sitter parser
// per file. Results come back in arbitrary order. Every failing file is collected; a
// cancelled context stops scheduling further work.
// If maxWorkers is <= 0, defaults to 2x NumCPU.
func MapFiles[T any](ctx context.Context, files []string, maxWorkers int, fn func(context.Context, *sitter.Parser, string) (T, error), onProgress ProgressFunc) ([]T, *FileErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]T, 0, len(files))
	errs := &FileErrors{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for _, path := range files {
		p.Go(func(ctx context.Context) error {
			defer func() {
				if onProgress != nil {
					onProgress()
				}
			}()

			select {
			case <-ctx.Done():
				errs.Add(path, ctx.Err())
				return ctx.Err()
			default:
			}

			psr := sitter.NewParser()
			defer psr.Close()

			result, err := fn(ctx, psr, path)
			if err != nil {
				errs.Add(path, err)
				return nil
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	_ = p.Wait() // context errors are already captured in errs

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
