package table

import (
	"sort"

	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
)

// Builder accumulates the datasets of one version and joins them into a class table
// and a method table.
type Builder struct {
	requested features.Set
	sets      []*dataset.Dataset
}

// NewBuilder creates a builder for the requested tags. Label tags are always accepted.
func NewBuilder(requested []features.Type) *Builder {
	return &Builder{requested: features.NewSet(requested...)}
}

// Add queues datasets. Datasets of tags that were not requested are ignored.
func (b *Builder) Add(sets ...*dataset.Dataset) *Builder {
	for _, d := range sets {
		if d == nil {
			continue
		}
		if !d.Type().IsLabel() && !b.requested.Has(d.Type()) {
			continue
		}
		b.sets = append(b.sets, d)
	}
	return b
}

// Build outer-joins every queued dataset on entity ID. Method IDs land in the method
// table and class IDs in the class table. Every method also implies a row for its
// outermost class. File-level rows are copied onto every class row of the same file
// and only keep a row of their own when the file has no classes.
// Missing non-label cells are filled with the zero value of their column.
func (b *Builder) Build() (class, method *Table) {
	classRows := make(map[entity.ID]dataset.Row)
	methodRows := make(map[entity.ID]dataset.Row)
	fileRows := make(map[string]dataset.Row)

	for _, d := range b.sets {
		for _, id := range d.IDs() {
			src, _ := d.Row(id)
			var dst dataset.Row
			switch id.Kind() {
			case entity.KindMethod:
				dst = rowFor(methodRows, id)
			case entity.KindClass:
				dst = rowFor(classRows, id)
			default:
				dst = fileRows[id.File]
				if dst == nil {
					dst = make(dataset.Row)
					fileRows[id.File] = dst
				}
			}
			for col, v := range src {
				dst[features.Label(d.Type(), col)] = v
			}
		}
	}

	// A class seen only through its methods still needs a row to receive file labels
	// and the aggregated method statistics.
	for id := range methodRows {
		rowFor(classRows, id.ClassID())
	}

	classesByFile := make(map[string][]entity.ID)
	for id := range classRows {
		classesByFile[id.File] = append(classesByFile[id.File], id)
	}
	files := make([]string, 0, len(fileRows))
	for f := range fileRows {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		row := fileRows[f]
		classes := classesByFile[f]
		if len(classes) == 0 {
			classRows[entity.File(f)] = row
			continue
		}
		for _, id := range classes {
			dst := classRows[id]
			for col, v := range row {
				if _, ok := dst[col]; !ok {
					dst[col] = v
				}
			}
		}
	}

	return fillDefaults(FromRows(classRows)), fillDefaults(FromRows(methodRows))
}

func rowFor(rows map[entity.ID]dataset.Row, id entity.ID) dataset.Row {
	r, ok := rows[id]
	if !ok {
		r = make(dataset.Row)
		rows[id] = r
	}
	return r
}

// fillDefaults fills every missing non-label cell with the zero value of its column.
func fillDefaults(t *Table) *Table {
	out := newTable(t.columns)
	for i, id := range t.ids {
		row := t.rows[i].Clone()
		for _, c := range t.columns {
			if IsLabel(c.Name) {
				continue
			}
			if _, ok := row[c.Name]; !ok {
				row[c.Name] = dataset.Zero(c.Kind)
			}
		}
		out.appendRow(id, row)
	}
	return out
}
