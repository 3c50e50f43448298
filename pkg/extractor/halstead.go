package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/defectset/internal/fileproc"
	"github.com/panbanda/defectset/pkg/analyser"
	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
	"github.com/panbanda/defectset/pkg/halstead"
)

// Halstead computes software science metrics in-process for every class and method.
type Halstead struct {
	// Workers bounds parallel parsing; 0 uses the default.
	Workers int
}

func (Halstead) Name() string { return "halstead" }

func (Halstead) Types() []features.Type { return []features.Type{features.Halstead} }

type declMetrics struct {
	id      entity.ID
	metrics halstead.Metrics
}

// Extract parses the tree and measures each declaration.
func (h Halstead) Extract(ctx context.Context, env *Env) (dataset.Composite, error) {
	files, err := analyser.JavaFiles(env.Tree)
	if err != nil {
		return nil, err
	}

	results, errs := fileproc.MapFiles(ctx, files, h.Workers, func(ctx context.Context, psr *sitter.Parser, rel string) ([]declMetrics, error) {
		src, err := readTreeFile(env.Tree, rel)
		if err != nil {
			return nil, err
		}
		parsed, err := analyser.Parse(ctx, psr, rel, src)
		if err != nil {
			return nil, err
		}
		defer parsed.Close()

		an := halstead.NewAnalyzer()
		out := make([]declMetrics, 0, len(parsed.Decls))
		for _, d := range parsed.Decls {
			out = append(out, declMetrics{id: d.ID, metrics: an.AnalyzeNode(d.Node, parsed.Source)})
		}
		return out, nil
	}, nil)
	if errs.HasErrors() {
		return nil, fmt.Errorf("%w: %v", ErrParse, errs)
	}

	rows := make(map[entity.ID]dataset.Row)
	for _, ms := range results {
		for _, m := range ms {
			if !env.Resolver.Has(m.id) {
				env.drop(h.Name())
				continue
			}
			row := make(dataset.Row, 9)
			for col, v := range m.metrics.Columns() {
				row[col] = dataset.Number(v)
			}
			rows[m.id] = row
		}
	}
	return dataset.Single(env.newDataset(features.Halstead, rows)), nil
}

func readTreeFile(tree, rel string) ([]byte, error) {
	src, err := os.ReadFile(filepath.Join(tree, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return src, nil
}
