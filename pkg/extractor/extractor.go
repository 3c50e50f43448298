// Package extractor runs static-analysis tools against a checked-out source tree and
// normalizes their output into datasets keyed by canonical entity IDs.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
)

var (
	// ErrParse is returned when a tool's output is missing or malformed.
	ErrParse = errors.New("failed to parse tool output")

	// ErrToolUnavailable is returned when an adapter cannot run in this environment.
	ErrToolUnavailable = errors.New("tool unavailable")
)

// Extractor is one tool adapter.
type Extractor interface {
	// Name identifies the adapter in logs, manifests and drop counts.
	Name() string
	// Types lists the feature-type tags the adapter produces.
	Types() []features.Type
	// Extract runs the tool and returns its normalized datasets.
	Extract(ctx context.Context, env *Env) (dataset.Composite, error)
}

// Availability is implemented by adapters that need configured tooling.
type Availability interface {
	Available(tools Tools) bool
}

// Resolver answers identity queries against the checked-out tree. Every ID an adapter
// emits must satisfy Has.
type Resolver interface {
	Root() string
	Has(id entity.ID) bool
	HasFile(path string) bool
	ClosestEnclosingID(path string, line int) (entity.ID, bool)
	ClassByLowercaseName(name string) (entity.ID, bool)
	MethodBySignature(path, signature string) (entity.ID, bool)
}

// GroundTruth supplies the defect labels of a version.
type GroundTruth interface {
	// BuggedFiles maps tree-relative file paths to their buggy flag.
	BuggedFiles(ctx context.Context, version string) (map[string]bool, error)
	// BuggedMethods maps canonical method IDs in text form to their buggy flag.
	BuggedMethods(ctx context.Context, version string) (map[string]bool, error)
}

// Tools locates the external analysis tools.
type Tools struct {
	Java          string
	Checkstyle    string
	Checks        string
	Designite     string
	SourceMonitor string
	CK            string
	Mood          string
	Timeout       time.Duration
}

// Env is everything an adapter needs to process one version.
type Env struct {
	Project     string
	Version     string
	Tree        string
	Resolver    Resolver
	Tools       Tools
	Runner      Runner
	GroundTruth GroundTruth
	Sink        dataset.Sink
	Logger      *slog.Logger
	Drops       *Drops
	// ScratchDir is the parent of per-invocation temporary directories. Empty means
	// the system temp dir.
	ScratchDir string
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *Env) java() string {
	if e.Tools.Java == "" {
		return "java"
	}
	return e.Tools.Java
}

func (e *Env) runner() Runner {
	if e.Runner == nil {
		return &ExecRunner{Timeout: e.Tools.Timeout, Logger: e.Logger}
	}
	return e.Runner
}

func (e *Env) drop(adapter string) {
	if e.Drops != nil {
		e.Drops.Add(adapter, 1)
	}
}

func (e *Env) newDataset(typ features.Type, rows map[entity.ID]dataset.Row) *dataset.Dataset {
	return dataset.New(e.Project, e.Version, typ, rows)
}

// Scratch creates a temporary directory for one adapter invocation. The returned
// cleanup is meant for the success path only; failed runs leave their files behind
// for inspection.
func (e *Env) Scratch(adapter string) (string, func(), error) {
	if e.ScratchDir != "" {
		if err := os.MkdirAll(e.ScratchDir, 0o755); err != nil {
			return "", nil, fmt.Errorf("failed to create scratch root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(e.ScratchDir, "defectset-"+adapter+"-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger().Debug("failed to remove scratch dir", "dir", dir, "error", err)
		}
	}, nil
}

// Run extracts with ex and stores the result in env.Sink as one batch.
func Run(ctx context.Context, ex Extractor, env *Env) (dataset.Composite, error) {
	start := time.Now()
	out, err := ex.Extract(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ex.Name(), err)
	}
	if err := out.Store(ctx, env.Sink); err != nil {
		return nil, fmt.Errorf("%s: failed to store datasets: %w", ex.Name(), err)
	}

	attrs := []any{"adapter", ex.Name(), "version", env.Version, "datasets", len(out), "elapsed", time.Since(start)}
	if env.Drops != nil {
		attrs = append(attrs, "dropped", env.Drops.Get(ex.Name()))
	}
	env.logger().Debug("extracted", attrs...)
	return out, nil
}

// Drops counts tool-reported entities that could not be resolved, per adapter.
type Drops struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewDrops creates an empty counter.
func NewDrops() *Drops {
	return &Drops{counts: make(map[string]int)}
}

// Add records n dropped entities for adapter.
func (d *Drops) Add(adapter string, n int) {
	d.mu.Lock()
	d.counts[adapter] += n
	d.mu.Unlock()
}

// Get returns the count for one adapter.
func (d *Drops) Get(adapter string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[adapter]
}

// Snapshot returns a copy of all counts.
func (d *Drops) Snapshot() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]int, len(d.counts))
	for k, v := range d.counts {
		out[k] = v
	}
	return out
}

// Adapters returns the adapter names with at least one drop, sorted.
func (d *Drops) Adapters() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.counts))
	for k := range d.counts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
