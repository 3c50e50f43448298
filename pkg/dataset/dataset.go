// Package dataset holds the unit of feature output produced by one adapter run and
// the sinks that persist it.
package dataset

import (
	"context"
	"errors"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
)

// Row maps a tool's source column name to its value for one entity.
type Row map[string]Value

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Column describes one column of a dataset.
type Column struct {
	Name string
	Kind Kind
}

// Dataset maps canonical entity IDs to feature rows for one project version and one
// feature-type tag. It is immutable after construction.
type Dataset struct {
	project string
	version string
	typ     features.Type
	rows    map[entity.ID]Row
	ids     []entity.ID
	columns []Column
}

// New copies rows into an immutable dataset.
func New(project, version string, typ features.Type, rows map[entity.ID]Row) *Dataset {
	d := &Dataset{
		project: project,
		version: version,
		typ:     typ,
		rows:    make(map[entity.ID]Row, len(rows)),
		ids:     make([]entity.ID, 0, len(rows)),
	}

	kinds := make(map[string]Kind)
	for id, row := range rows {
		d.rows[id] = row.Clone()
		d.ids = append(d.ids, id)
		for name, v := range row {
			if k, seen := kinds[name]; seen {
				kinds[name] = Widen(k, v.Kind())
			} else {
				kinds[name] = v.Kind()
			}
		}
	}
	sort.Slice(d.ids, func(i, j int) bool { return d.ids[i].Less(d.ids[j]) })

	d.columns = make([]Column, 0, len(kinds))
	for name, k := range kinds {
		d.columns = append(d.columns, Column{Name: name, Kind: k})
	}
	sort.Slice(d.columns, func(i, j int) bool { return d.columns[i].Name < d.columns[j].Name })
	return d
}

// Project returns the project name.
func (d *Dataset) Project() string { return d.project }

// Version returns the project version.
func (d *Dataset) Version() string { return d.version }

// Type returns the feature-type tag.
func (d *Dataset) Type() features.Type { return d.typ }

// Len returns the number of entities.
func (d *Dataset) Len() int { return len(d.ids) }

// IDs returns the entity IDs in sorted order.
func (d *Dataset) IDs() []entity.ID {
	out := make([]entity.ID, len(d.ids))
	copy(out, d.ids)
	return out
}

// Row returns a copy of the row for id.
func (d *Dataset) Row(id entity.ID) (Row, bool) {
	r, ok := d.rows[id]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Value returns a single cell.
func (d *Dataset) Value(id entity.ID, column string) (Value, bool) {
	r, ok := d.rows[id]
	if !ok {
		return Value{}, false
	}
	v, ok := r[column]
	return v, ok
}

// Columns returns the columns sorted by name.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// Fingerprint hashes the dataset content in canonical order. Two datasets with the
// same project, version, tag and cells have the same fingerprint.
func (d *Dataset) Fingerprint() uint64 {
	h := xxhash.New()
	write := func(s string) {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}
	write(d.project)
	write(d.version)
	write(string(d.typ))
	for _, id := range d.ids {
		write(id.String())
		row := d.rows[id]
		for _, c := range d.columns {
			v, ok := row[c.Name]
			if !ok {
				continue
			}
			write(c.Name)
			write(v.Kind().String())
			write(v.String())
		}
	}
	return h.Sum64()
}

// Composite bundles the datasets produced by one adapter run. It is persisted with a
// single Store call.
type Composite []*Dataset

// Single wraps one dataset.
func Single(d *Dataset) Composite {
	return Composite{d}
}

// Add appends datasets and returns the composite for chaining.
func (c Composite) Add(ds ...*Dataset) Composite {
	return append(c, ds...)
}

// ByType returns the dataset with the given tag, or nil.
func (c Composite) ByType(t features.Type) *Dataset {
	for _, d := range c {
		if d.Type() == t {
			return d
		}
	}
	return nil
}

// Store persists every dataset in one batch.
func (c Composite) Store(ctx context.Context, sink Sink) error {
	if len(c) == 0 || sink == nil {
		return nil
	}
	return sink.Store(ctx, c...)
}

// Sink persists datasets.
type Sink interface {
	Store(ctx context.Context, sets ...*Dataset) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, sets ...*Dataset) error

// Store implements Sink.
func (f SinkFunc) Store(ctx context.Context, sets ...*Dataset) error {
	return f(ctx, sets...)
}

// Discard is a Sink that drops everything.
var Discard Sink = SinkFunc(func(context.Context, ...*Dataset) error { return nil })

// MultiSink stores into every sink and joins their errors.
type MultiSink []Sink

// Store implements Sink.
func (m MultiSink) Store(ctx context.Context, sets ...*Dataset) error {
	var errs []error
	for _, s := range m {
		if err := s.Store(ctx, sets...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
