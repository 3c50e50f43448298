package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
)

// Designite reports design and implementation smells plus type and method metrics.
type Designite struct{}

func (Designite) Name() string { return "designite" }

func (Designite) Types() []features.Type {
	return []features.Type{
		features.DesigniteDesign,
		features.DesigniteImplementation,
		features.DesigniteTypeOrganic,
		features.DesigniteMethodOrganic,
		features.DesigniteTypeMetrics,
		features.DesigniteMethodMetrics,
	}
}

func (Designite) Available(tools Tools) bool {
	return tools.Designite != ""
}

const (
	colProject   = "Project Name"
	colFilePath  = "File Path"
	colPackage   = "Package Name"
	colType      = "Type Name"
	colMethod    = "Method Name"
	colMethodAlt = "MethodName"
	colSmell     = "Code Smell"
)

type designiteReport struct {
	file   string
	typ    features.Type
	keys   []string
	smells bool
}

var designiteReports = []designiteReport{
	{"designCodeSmells.csv", features.DesigniteDesign, []string{colFilePath, colPackage, colType}, true},
	{"implementationCodeSmells.csv", features.DesigniteImplementation, []string{colFilePath, colPackage, colType, colMethod}, true},
	{"organicTypeCodeSmells.csv", features.DesigniteTypeOrganic, []string{colFilePath, colPackage, colType}, true},
	{"organicMethodCodeSmells.csv", features.DesigniteMethodOrganic, []string{colFilePath, colPackage, colType, colMethod}, true},
	{"typeMetrics.csv", features.DesigniteTypeMetrics, []string{colFilePath, colPackage, colType}, false},
	{"methodMetrics.csv", features.DesigniteMethodMetrics, []string{colFilePath, colPackage, colType, colMethodAlt}, false},
}

// Extract runs Designite once and reads its six reports.
func (d Designite) Extract(ctx context.Context, env *Env) (dataset.Composite, error) {
	dir, cleanup, err := env.Scratch(d.Name())
	if err != nil {
		return nil, err
	}
	cmd := Command{
		Name: env.java(),
		Args: []string{"-jar", env.Tools.Designite, "-i", env.Tree, "-o", dir},
	}
	if err := env.runner().Run(ctx, cmd); err != nil {
		return nil, err
	}

	var out dataset.Composite
	for _, r := range designiteReports {
		t, err := readToolCSV(filepath.Join(dir, r.file))
		if err != nil {
			return nil, err
		}
		if err := t.require(r.keys...); err != nil {
			return nil, fmt.Errorf("%s: %w", r.file, err)
		}
		var rows map[entity.ID]dataset.Row
		if r.smells {
			if err := t.require(colSmell); err != nil {
				return nil, fmt.Errorf("%s: %w", r.file, err)
			}
			rows = d.smells(env, t, r)
		} else {
			rows = d.metrics(env, t, r)
		}
		out = out.Add(env.newDataset(r.typ, rows))
	}

	cleanup()
	return out, nil
}

// smells reshapes one-row-per-hit reports into one bool column per smell.
func (d Designite) smells(env *Env, t *toolTable, r designiteReport) map[entity.ID]dataset.Row {
	known := features.Columns(r.typ)
	fields := t.columnsExcept(set(colProject))
	rows := make(map[entity.ID]dataset.Row)
	for _, row := range t.rows {
		if !complete(row, fields) {
			env.drop(d.Name())
			continue
		}
		id, ok := d.resolve(env, row, r.keys)
		if !ok {
			env.drop(d.Name())
			continue
		}
		if rows[id] == nil {
			rows[id] = make(dataset.Row, len(known))
			for _, s := range known {
				rows[id][s] = dataset.Bool(false)
			}
		}
		rows[id][row[colSmell]] = dataset.Bool(true)
	}
	return rows
}

// metrics keeps the report's wide columns. A later row for the same entity replaces
// an earlier one.
func (d Designite) metrics(env *Env, t *toolTable, r designiteReport) map[entity.ID]dataset.Row {
	skip := set(append([]string{colProject}, r.keys...)...)
	fields := t.columnsExcept(set(colProject))

	rows := make(map[entity.ID]dataset.Row)
	for _, row := range t.rows {
		if !complete(row, fields) {
			env.drop(d.Name())
			continue
		}
		id, ok := d.resolve(env, row, r.keys)
		if !ok {
			env.drop(d.Name())
			continue
		}
		rows[id] = t.values(row, skip)
	}
	return rows
}

func (d Designite) resolve(env *Env, row map[string]string, keys []string) (entity.ID, bool) {
	var method string
	if len(keys) == 4 {
		method = row[keys[3]]
	}
	// The report may carry the tree path as given or its resolved form.
	for _, root := range []string{env.Tree, env.Resolver.Root()} {
		raw, ok := DesigniteKey(root, row[colFilePath], row[colPackage], row[colType], method)
		if !ok {
			continue
		}
		if id, ok := resolveDesignite(env.Resolver, raw, row[colPackage]); ok {
			return id, true
		}
	}
	return entity.ID{}, false
}

// DesigniteKey turns a report's key columns into a tree-relative ID. The columns are
// dot-joined, the first ".java." becomes the "@" boundary, the tool's working
// directory prefix is removed and the package prefix is stripped from the member.
// The method part is the bare method name; resolveDesignite maps it to a signature.
func DesigniteKey(root, file, pkg, typ, method string) (entity.ID, bool) {
	parts := []string{file, pkg, typ}
	if method != "" {
		parts = append(parts, method)
	}
	joined := strings.ReplaceAll(strings.Join(parts, "."), `\`, "/")
	joined = strings.Replace(joined, ".java.", ".java@", 1)

	prefix := strings.TrimSuffix(strings.ReplaceAll(root, `\`, "/"), "/") + "/"
	joined = strings.TrimPrefix(joined, prefix)

	path, member, ok := strings.Cut(joined, entity.MemberSep)
	if !ok || path == "" || member == "" {
		return entity.ID{}, false
	}
	if pkg != "" {
		member = strings.TrimPrefix(member, pkg+".")
	}
	if method == "" {
		return entity.Class(path, member), true
	}
	class, name, ok := strings.Cut(member, entity.MethodSep)
	if !ok || class == "" || name == "" {
		return entity.ID{}, false
	}
	return entity.Method(path, class, name), true
}

func resolveDesignite(r Resolver, raw entity.ID, pkg string) (entity.ID, bool) {
	if raw.Kind() == entity.KindMethod {
		id, ok := r.MethodBySignature(raw.File, raw.Class+entity.MethodSep+raw.Method)
		if ok {
			return id, true
		}
		// Nested types are reported by simple name.
		if cls, ok := resolveDesigniteClass(r, entity.Class(raw.File, raw.Class), pkg); ok {
			return r.MethodBySignature(raw.File, cls.Class+entity.MethodSep+raw.Method)
		}
		return entity.ID{}, false
	}
	return resolveDesigniteClass(r, raw, pkg)
}

func resolveDesigniteClass(r Resolver, raw entity.ID, pkg string) (entity.ID, bool) {
	if r.Has(raw) {
		return raw, true
	}
	names := []string{raw.Class}
	if pkg != "" {
		names = []string{pkg + "." + raw.Class, raw.Class}
	}
	for _, name := range names {
		if id, ok := r.ClassByLowercaseName(name); ok && id.File == raw.File {
			return id, true
		}
	}
	return entity.ID{}, false
}
