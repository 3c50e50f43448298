package table

import (
	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
)

// Merge outer-joins right into left on entity ID. Left rows keep their order and
// right-only rows follow in right order. When both sides carry a column the left
// value wins where present.
func Merge(left, right *Table) *Table {
	kinds := make(map[string]dataset.Kind)
	cols := make([]dataset.Column, 0, len(left.columns)+len(right.columns))
	for _, c := range left.columns {
		kinds[c.Name] = c.Kind
		cols = append(cols, c)
	}
	for _, c := range right.columns {
		if k, ok := kinds[c.Name]; ok {
			kinds[c.Name] = dataset.Widen(k, c.Kind)
			continue
		}
		kinds[c.Name] = c.Kind
		cols = append(cols, c)
	}
	for i := range cols {
		cols[i].Kind = kinds[cols[i].Name]
	}

	out := newTable(cols)
	matched := make(map[entity.ID]bool)
	for i, id := range left.ids {
		row := left.rows[i].Clone()
		if j, ok := right.first[id]; ok {
			matched[id] = true
			for k, v := range right.rows[j] {
				if _, ok := row[k]; !ok {
					row[k] = v
				}
			}
		}
		out.appendRow(id, row)
	}
	for j, id := range right.ids {
		if matched[id] {
			continue
		}
		out.appendRow(id, right.rows[j].Clone())
	}
	return out
}

// Concat stacks tables vertically. Columns are the union in first-seen order; cells a
// table lacks stay missing.
func Concat(tables ...*Table) *Table {
	kinds := make(map[string]dataset.Kind)
	var cols []dataset.Column
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.columns {
			if k, ok := kinds[c.Name]; ok {
				kinds[c.Name] = dataset.Widen(k, c.Kind)
				continue
			}
			kinds[c.Name] = c.Kind
			cols = append(cols, c)
		}
	}
	for i := range cols {
		cols[i].Kind = kinds[cols[i].Name]
	}

	out := newTable(cols)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for i, id := range t.ids {
			out.appendRow(id, t.rows[i].Clone())
		}
	}
	return out
}

// Clean drops rows whose label cell is missing, when label is set, then fills the
// remaining missing cells: numeric columns with 0 and every other column with fill.
func Clean(t *Table, label string, fill dataset.Value) *Table {
	cols := t.Columns()
	filled := make([]bool, len(cols))

	var ids []entity.ID
	var rows []dataset.Row
	for i, id := range t.ids {
		if label != "" {
			if _, ok := t.rows[i][label]; !ok {
				continue
			}
		}
		row := t.rows[i].Clone()
		for ci, c := range cols {
			if _, ok := row[c.Name]; ok {
				continue
			}
			if c.Kind == dataset.KindNumber {
				row[c.Name] = dataset.Number(0)
				continue
			}
			row[c.Name] = fill
			filled[ci] = true
		}
		ids = append(ids, id)
		rows = append(rows, row)
	}

	for ci := range cols {
		if filled[ci] {
			cols[ci].Kind = dataset.Widen(cols[ci].Kind, fill.Kind())
		}
	}
	out := newTable(cols)
	for i, id := range ids {
		out.appendRow(id, rows[i])
	}
	return out
}
