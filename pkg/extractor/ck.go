package extractor

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
)

// CK reports Chidamber and Kemerer metrics per method.
type CK struct{}

func (CK) Name() string { return "ck" }

func (CK) Types() []features.Type { return []features.Type{features.CK} }

func (CK) Available(tools Tools) bool {
	return tools.CK != ""
}

const ckMethodReport = "method.csv"

// Extract runs CK from inside the scratch dir, where it writes its reports.
func (c CK) Extract(ctx context.Context, env *Env) (dataset.Composite, error) {
	dir, cleanup, err := env.Scratch(c.Name())
	if err != nil {
		return nil, err
	}
	tree, err := filepath.Abs(env.Tree)
	if err != nil {
		return nil, err
	}
	cmd := Command{
		Name: env.java(),
		Args: []string{"-jar", env.Tools.CK, tree, "True"},
		Dir:  dir,
	}
	if err := env.runner().Run(ctx, cmd); err != nil {
		return nil, err
	}

	t, err := readToolCSV(filepath.Join(dir, ckMethodReport))
	if err != nil {
		return nil, err
	}
	if err := t.require("file", "line"); err != nil {
		return nil, err
	}

	rows := c.normalize(env, t)
	cleanup()
	return dataset.Single(env.newDataset(features.CK, rows)), nil
}

func (c CK) normalize(env *Env, t *toolTable) map[entity.ID]dataset.Row {
	skip := set("file", "class", "method", "line")
	rows := make(map[entity.ID]dataset.Row)
	for _, row := range t.rows {
		line, err := strconv.Atoi(row["line"])
		if err != nil {
			env.drop(c.Name())
			continue
		}
		id, ok := env.Resolver.ClosestEnclosingID(row["file"], line)
		if !ok {
			env.drop(c.Name())
			continue
		}
		if _, dup := rows[id]; dup {
			continue
		}
		rows[id] = t.values(row, skip)
	}
	return rows
}
