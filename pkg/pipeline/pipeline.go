// Package pipeline runs the extraction of one project across versions: checkout,
// adapters, table assembly, cleaning, persistence and the classifier hand-off.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/panbanda/defectset/internal/cache"
	"github.com/panbanda/defectset/pkg/analyser"
	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/extractor"
	"github.com/panbanda/defectset/pkg/features"
	"github.com/panbanda/defectset/pkg/table"
)

// ErrNoVersions is returned by Run when the plan names no labeled version.
var ErrNoVersions = errors.New("no versions to process")

// Checkout places a version's source tree on disk and returns its root.
type Checkout interface {
	Checkout(ctx context.Context, version string) (string, error)
}

// CheckoutFunc adapts a function to Checkout.
type CheckoutFunc func(ctx context.Context, version string) (string, error)

// Checkout implements Checkout.
func (f CheckoutFunc) Checkout(ctx context.Context, version string) (string, error) {
	return f(ctx, version)
}

// IndexFunc builds the identity resolver for a checked-out tree.
type IndexFunc func(ctx context.Context, tree string) (extractor.Resolver, error)

// Classifier consumes the assembled tables. Training and evaluation live outside this
// module.
type Classifier interface {
	Train(ctx context.Context, training TableSet) error
	// Predict returns one label per row of t, in row order.
	Predict(ctx context.Context, t *table.Table) ([]bool, error)
}

// TableSet holds the three tables produced per version.
type TableSet struct {
	Class      *table.Table
	Method     *table.Table
	Aggregated *table.Table
}

// ProgressFunc is called after each version with its outcome.
type ProgressFunc func(version string, err error)

// Pipeline processes the versions of one project.
type Pipeline struct {
	project     string
	checkout    Checkout
	store       *cache.Cache
	index       IndexFunc
	extractors  []extractor.Extractor
	requested   []features.Type
	tools       extractor.Tools
	runner      extractor.Runner
	groundTruth extractor.GroundTruth
	scratch     string
	sinks       []dataset.Sink
	csv         bool
	reuse       bool
	workers     int
	classifier  Classifier
	logger      *slog.Logger
	progress    ProgressFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFeatures sets the requested feature tags. The default is every non-label tag.
func WithFeatures(types []features.Type) Option {
	return func(p *Pipeline) { p.requested = types }
}

// WithTools locates the external tools.
func WithTools(tools extractor.Tools) Option {
	return func(p *Pipeline) { p.tools = tools }
}

// WithRunner replaces the process runner.
func WithRunner(r extractor.Runner) Option {
	return func(p *Pipeline) { p.runner = r }
}

// WithGroundTruth sets the label source for labeled versions.
func WithGroundTruth(gt extractor.GroundTruth) Option {
	return func(p *Pipeline) { p.groundTruth = gt }
}

// WithScratch sets the scratch root for tool output and table copies.
func WithScratch(dir string) Option {
	return func(p *Pipeline) { p.scratch = dir }
}

// WithSink adds a sink receiving every raw adapter dataset.
func WithSink(s dataset.Sink) Option {
	return func(p *Pipeline) { p.sinks = append(p.sinks, s) }
}

// WithIntermediates controls the CSV copy of every raw dataset kept next to the
// cached tables. It is on by default.
func WithIntermediates(on bool) Option {
	return func(p *Pipeline) { p.csv = on }
}

// WithReuse serves versions from the cache when their tables verify.
func WithReuse(reuse bool) Option {
	return func(p *Pipeline) { p.reuse = reuse }
}

// WithWorkers bounds the parse pools of the in-process steps.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// WithClassifier hands the final tables to c.
func WithClassifier(c Classifier) Option {
	return func(p *Pipeline) { p.classifier = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithIndexer replaces the tree-sitter analyser.
func WithIndexer(fn IndexFunc) Option {
	return func(p *Pipeline) { p.index = fn }
}

// WithExtractors replaces the adapter registry.
func WithExtractors(exs []extractor.Extractor) Option {
	return func(p *Pipeline) { p.extractors = exs }
}

// WithProgress reports each finished version.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// New creates a pipeline for project storing its tables in store.
func New(project string, checkout Checkout, store *cache.Cache, opts ...Option) (*Pipeline, error) {
	if project == "" {
		return nil, errors.New("project name is required")
	}
	if checkout == nil || store == nil {
		return nil, errors.New("checkout and cache are required")
	}
	p := &Pipeline{
		project:    project,
		checkout:   checkout,
		store:      store,
		extractors: extractor.Registry(),
		csv:        true,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.requested == nil {
		for _, t := range features.AllTypes() {
			if !t.IsLabel() {
				p.requested = append(p.requested, t)
			}
		}
	}
	if p.index == nil {
		workers := p.workers
		p.index = func(ctx context.Context, tree string) (extractor.Resolver, error) {
			a, err := analyser.New(ctx, tree, analyser.WithWorkers(workers))
			if err != nil {
				return nil, err
			}
			return a, nil
		}
	}
	if p.scratch == "" {
		p.scratch = filepath.Join(store.Dir(), "scratch")
	}
	p.logger = p.logger.With("project", project)
	return p, nil
}

// VersionResult is the outcome of one version.
type VersionResult struct {
	Version  string
	Labeled  bool
	Tables   TableSet
	Manifest *cache.Manifest
	Cached   bool
}

// ProcessVersion extracts one version. Labeled versions run the label adapter and
// drop rows without a label; unlabeled ones keep every row. Any adapter failure fails
// the version.
func (p *Pipeline) ProcessVersion(ctx context.Context, version string, labeled bool) (*VersionResult, error) {
	logger := p.logger.With("version", version)

	if p.reuse {
		if res, ok := p.fromCache(version, labeled); ok {
			logger.Info("reusing cached tables")
			return res, nil
		}
	}

	start := time.Now()
	tree, err := p.checkout.Checkout(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}
	resolver, err := p.index(ctx, tree)
	if err != nil {
		return nil, fmt.Errorf("failed to index tree: %w", err)
	}

	requested := features.NewSet(p.requested...)
	selected := extractor.Select(p.extractors, requested, labeled, p.tools)
	skipped := extractor.Skipped(p.extractors, requested, p.tools)
	if len(skipped) > 0 {
		logger.Warn("adapters skipped for missing tools", "adapters", skipped)
	}

	env := &extractor.Env{
		Project:     p.project,
		Version:     version,
		Tree:        tree,
		Resolver:    resolver,
		Tools:       p.tools,
		Runner:      p.runner,
		GroundTruth: p.groundTruth,
		Sink:        p.sink(),
		Logger:      logger,
		Drops:       extractor.NewDrops(),
		ScratchDir:  filepath.Join(p.scratch, p.project, "tools"),
	}

	manifest := cache.NewManifest(p.project, version, labeled)
	manifest.Skipped = skipped
	b := table.NewBuilder(p.requested)
	for _, ex := range selected {
		out, err := extractor.Run(ctx, ex, env)
		if err != nil {
			return nil, err
		}
		b.Add(out...)
		manifest.Adapters = append(manifest.Adapters, ex.Name())
	}
	manifest.Drops = env.Drops.Snapshot()

	tables := assemble(b, labeled)
	if err := p.persist(manifest, tables); err != nil {
		return nil, err
	}

	logger.Info("version extracted",
		"classes", tables.Class.Len(),
		"methods", tables.Method.Len(),
		"adapters", len(selected),
		"elapsed", time.Since(start))
	return &VersionResult{Version: version, Labeled: labeled, Tables: tables, Manifest: manifest}, nil
}

// assemble joins the datasets, rolls methods up to classes and cleans every table.
func assemble(b *table.Builder, labeled bool) TableSet {
	class, method := b.Build()
	agg := table.Aggregate(method)
	merged := table.Merge(class, agg)

	classLabel, methodLabel := "", ""
	if labeled {
		classLabel, methodLabel = features.ClassLabel, features.MethodLabel
	}
	fill := dataset.Bool(false)
	return TableSet{
		Class:      table.Clean(merged, classLabel, fill),
		Method:     table.Clean(method, methodLabel, fill),
		Aggregated: table.Clean(agg, "", fill),
	}
}

func (p *Pipeline) sink() dataset.Sink {
	var sinks dataset.MultiSink
	if p.csv {
		sinks = append(sinks, dataset.NewCSVSink(p.store.IntermediateDir))
	}
	return append(sinks, p.sinks...)
}

func (ts TableSet) byKind(kind cache.Kind) *table.Table {
	switch kind {
	case cache.Classes:
		return ts.Class
	case cache.Methods:
		return ts.Method
	default:
		return ts.Aggregated
	}
}

// persist writes the tables to scratch and to the cache, then the manifest.
func (p *Pipeline) persist(m *cache.Manifest, tables TableSet) error {
	scratch := filepath.Join(p.scratch, p.project, m.Version)
	for _, kind := range cache.Kinds {
		t := tables.byKind(kind)
		if _, err := cache.WriteTable(filepath.Join(scratch, string(kind)+".csv"), t); err != nil {
			return fmt.Errorf("failed to write scratch %s table: %w", kind, err)
		}
		digest, err := p.store.Save(p.project, m.Version, kind, t)
		if err != nil {
			return err
		}
		m.Artifacts[string(kind)] = digest
		m.Rows[string(kind)] = t.Len()
	}
	return p.store.WriteManifest(m)
}

func (p *Pipeline) fromCache(version string, labeled bool) (*VersionResult, bool) {
	if !p.store.Verify(p.project, version) {
		return nil, false
	}
	m, err := p.store.ReadManifest(p.project, version)
	if err != nil || m.Labeled != labeled {
		return nil, false
	}
	var ts TableSet
	for _, kind := range cache.Kinds {
		t, err := p.store.Load(p.project, version, kind)
		if err != nil {
			return nil, false
		}
		switch kind {
		case cache.Classes:
			ts.Class = t
		case cache.Methods:
			ts.Method = t
		default:
			ts.Aggregated = t
		}
	}
	return &VersionResult{Version: version, Labeled: labeled, Tables: ts, Manifest: m, Cached: true}, true
}
