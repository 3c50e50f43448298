// Package table assembles per-version feature tables: the outer join of adapter
// datasets, the method to class roll-up, cleaning and the CSV form used by the cache.
package table

import (
	"sort"

	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
)

// Table is an ordered set of rows keyed by entity ID with typed columns. Cells may be
// missing. Tables are never modified after construction; every operation returns a new
// one.
type Table struct {
	columns []dataset.Column
	index   map[string]int
	ids     []entity.ID
	rows    []dataset.Row
	first   map[entity.ID]int
}

func newTable(columns []dataset.Column) *Table {
	t := &Table{
		columns: make([]dataset.Column, len(columns)),
		index:   make(map[string]int, len(columns)),
		first:   make(map[entity.ID]int),
	}
	copy(t.columns, columns)
	for i, c := range t.columns {
		t.index[c.Name] = i
	}
	return t
}

func (t *Table) appendRow(id entity.ID, row dataset.Row) {
	if _, ok := t.first[id]; !ok {
		t.first[id] = len(t.ids)
	}
	t.ids = append(t.ids, id)
	t.rows = append(t.rows, row)
}

// FromRows builds a table with rows in ID order and columns sorted by name.
func FromRows(rows map[entity.ID]dataset.Row) *Table {
	ids := make([]entity.ID, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	t := newTable(columnsOf(rows))
	for _, id := range ids {
		t.appendRow(id, rows[id].Clone())
	}
	return t
}

func columnsOf(rows map[entity.ID]dataset.Row) []dataset.Column {
	kinds := make(map[string]dataset.Kind)
	for _, row := range rows {
		for name, v := range row {
			if k, ok := kinds[name]; ok {
				kinds[name] = dataset.Widen(k, v.Kind())
			} else {
				kinds[name] = v.Kind()
			}
		}
	}
	return sortedColumns(kinds)
}

func sortedColumns(kinds map[string]dataset.Kind) []dataset.Column {
	cols := make([]dataset.Column, 0, len(kinds))
	for name, k := range kinds {
		cols = append(cols, dataset.Column{Name: name, Kind: k})
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })
	return cols
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.ids)
}

// IDs returns the row IDs in row order.
func (t *Table) IDs() []entity.ID {
	out := make([]entity.ID, len(t.ids))
	copy(out, t.ids)
	return out
}

// Columns returns the columns in order.
func (t *Table) Columns() []dataset.Column {
	out := make([]dataset.Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks up a column by name.
func (t *Table) Column(name string) (dataset.Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return dataset.Column{}, false
	}
	return t.columns[i], true
}

// Row returns a copy of the first row with the given ID.
func (t *Table) Row(id entity.ID) (dataset.Row, bool) {
	i, ok := t.first[id]
	if !ok {
		return nil, false
	}
	return t.rows[i].Clone(), true
}

// Value returns one cell of the first row with the given ID.
func (t *Table) Value(id entity.ID, column string) (dataset.Value, bool) {
	i, ok := t.first[id]
	if !ok {
		return dataset.Value{}, false
	}
	v, ok := t.rows[i][column]
	return v, ok
}

// At returns the ID and a copy of row i.
func (t *Table) At(i int) (entity.ID, dataset.Row) {
	return t.ids[i], t.rows[i].Clone()
}

// IsLabel reports whether a column holds ground-truth labels.
func IsLabel(column string) bool {
	return column == features.ClassLabel || column == features.MethodLabel
}

// Identity returns a display table of the identifying parts of each row, in row
// order, with text columns File, Class and Method.
func Identity(t *Table) *Table {
	out := newTable([]dataset.Column{
		{Name: ColFile, Kind: dataset.KindText},
		{Name: ColClass, Kind: dataset.KindText},
		{Name: ColMethod, Kind: dataset.KindText},
	})
	for _, id := range t.ids {
		out.appendRow(id, dataset.Row{
			ColFile:   dataset.Text(id.File),
			ColClass:  dataset.Text(id.Class),
			ColMethod: dataset.Text(id.Method),
		})
	}
	return out
}

// Drop returns the table without the named columns.
func Drop(t *Table, columns ...string) *Table {
	skip := make(map[string]bool, len(columns))
	for _, c := range columns {
		skip[c] = true
	}
	var cols []dataset.Column
	for _, c := range t.columns {
		if !skip[c.Name] {
			cols = append(cols, c)
		}
	}
	out := newTable(cols)
	for i, id := range t.ids {
		row := make(dataset.Row, len(cols))
		for k, v := range t.rows[i] {
			if !skip[k] {
				row[k] = v
			}
		}
		out.appendRow(id, row)
	}
	return out
}
