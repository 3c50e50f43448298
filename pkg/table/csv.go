package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
)

// Identity columns lead every table file.
const (
	ColFile   = "File"
	ColClass  = "Class"
	ColMethod = "Method"
)

var identityHeader = []string{ColFile, ColClass, ColMethod}

// WriteCSV writes the table with ';' as delimiter: the identity columns first, then
// every column in table order. Missing cells are written empty.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = dataset.Delimiter

	header := make([]string, 0, len(identityHeader)+len(t.columns))
	header = append(header, identityHeader...)
	for _, c := range t.columns {
		header = append(header, c.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i, id := range t.ids {
		record[0], record[1], record[2] = id.File, id.Class, id.Method
		for ci, c := range t.columns {
			record[ci+3] = ""
			if v, ok := t.rows[i][c.Name]; ok {
				record[ci+3] = v.String()
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a table written by WriteCSV, keeping row order. Empty cells are
// missing; column kinds are inferred from the values present.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = dataset.Delimiter

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < len(identityHeader) {
		return nil, fmt.Errorf("header must start with %v", identityHeader)
	}
	for i, name := range identityHeader {
		if header[i] != name {
			return nil, fmt.Errorf("header must start with %v", identityHeader)
		}
	}
	names := header[len(identityHeader):]

	var ids []entity.ID
	var rows []dataset.Row
	kinds := make(map[string]dataset.Kind, len(names))
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < len(identityHeader) || record[0] == "" {
			return nil, fmt.Errorf("line %d: %w", line, entity.ErrInvalidID)
		}
		ids = append(ids, identityOf(record[0], record[1], record[2]))

		row := make(dataset.Row, len(names))
		for i, name := range names {
			ri := i + len(identityHeader)
			if ri >= len(record) || record[ri] == "" {
				continue
			}
			v := dataset.ParseValue(record[ri])
			row[name] = v
			if k, ok := kinds[name]; ok {
				kinds[name] = dataset.Widen(k, v.Kind())
			} else {
				kinds[name] = v.Kind()
			}
		}
		rows = append(rows, row)
	}

	cols := make([]dataset.Column, len(names))
	for i, name := range names {
		k, ok := kinds[name]
		if !ok {
			k = dataset.KindText
		}
		cols[i] = dataset.Column{Name: name, Kind: k}
	}
	t := newTable(cols)
	for i, id := range ids {
		t.appendRow(id, rows[i])
	}
	return t, nil
}

func identityOf(file, class, method string) entity.ID {
	switch {
	case class == "":
		return entity.File(file)
	case method == "":
		return entity.Class(file, class)
	default:
		return entity.Method(file, class, method)
	}
}
