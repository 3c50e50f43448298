package extractor

import (
	"context"
	"fmt"

	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
)

// Label source columns.
const (
	BuggyColumn       = "is_buggy"
	MethodBuggyColumn = "is_method_buggy"
)

// Bugged turns ground truth into per-file and per-method labels.
type Bugged struct{}

func (Bugged) Name() string { return "bugged" }

func (Bugged) Types() []features.Type {
	return []features.Type{features.Bugged, features.BuggedMethods}
}

// Extract reads both label sets for the version.
func (b Bugged) Extract(ctx context.Context, env *Env) (dataset.Composite, error) {
	if env.GroundTruth == nil {
		return nil, fmt.Errorf("%w: no ground truth configured", ErrToolUnavailable)
	}

	files, err := env.GroundTruth.BuggedFiles(ctx, env.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to read bugged files: %w", err)
	}
	fileRows := make(map[entity.ID]dataset.Row, len(files))
	for path, buggy := range files {
		if !env.Resolver.HasFile(path) {
			env.drop(b.Name())
			continue
		}
		fileRows[entity.File(path)] = dataset.Row{BuggyColumn: dataset.Bool(buggy)}
	}

	methods, err := env.GroundTruth.BuggedMethods(ctx, env.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to read bugged methods: %w", err)
	}
	methodRows := make(map[entity.ID]dataset.Row, len(methods))
	for text, buggy := range methods {
		id, err := entity.Parse(text)
		if err != nil || id.Kind() != entity.KindMethod || !env.Resolver.Has(id) {
			env.drop(b.Name())
			continue
		}
		methodRows[id] = dataset.Row{MethodBuggyColumn: dataset.Bool(buggy)}
	}

	return dataset.Composite{}.Add(
		env.newDataset(features.Bugged, fileRows),
		env.newDataset(features.BuggedMethods, methodRows),
	), nil
}
