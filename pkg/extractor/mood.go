package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
)

// Mood reports MOOD object-oriented design metrics per class.
type Mood struct{}

func (Mood) Name() string { return "mood" }

func (Mood) Types() []features.Type { return []features.Type{features.Mood} }

func (Mood) Available(tools Tools) bool {
	return tools.Mood != ""
}

const moodReport = "_metrics.json"

// moodSchema accepts an object mapping class names to objects of numeric metrics.
const moodSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"additionalProperties": {"type": "number"}
	}
}`

var moodValidator = mustCompileSchema("mood.schema.json", moodSchema)

func mustCompileSchema(url, text string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(text))
	if err != nil {
		panic(err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		panic(err)
	}
	return c.MustCompile(url)
}

// Extract runs the MOOD tool and reads its JSON report.
func (m Mood) Extract(ctx context.Context, env *Env) (dataset.Composite, error) {
	dir, cleanup, err := env.Scratch(m.Name())
	if err != nil {
		return nil, err
	}
	cmd := Command{
		Name: env.java(),
		Args: []string{"-jar", env.Tools.Mood, env.Tree, dir},
	}
	if err := env.runner().Run(ctx, cmd); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, moodReport))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	report, err := ParseMoodReport(data)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make(map[entity.ID]dataset.Row, len(report))
	for _, name := range names {
		id, ok := env.Resolver.ClassByLowercaseName(name)
		if !ok {
			env.drop(m.Name())
			continue
		}
		if _, dup := rows[id]; dup {
			continue
		}
		metrics := report[name]
		row := make(dataset.Row, len(metrics))
		for k, v := range metrics {
			row[k] = dataset.Number(v)
		}
		rows[id] = row
	}

	cleanup()
	return dataset.Single(env.newDataset(features.Mood, rows)), nil
}

// ParseMoodReport validates and decodes a MOOD report.
func ParseMoodReport(data []byte) (map[string]map[string]float64, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: mood report: %v", ErrParse, err)
	}
	if err := moodValidator.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: mood report: %v", ErrParse, err)
	}

	var report map[string]map[string]float64
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("%w: mood report: %v", ErrParse, err)
	}
	return report, nil
}
