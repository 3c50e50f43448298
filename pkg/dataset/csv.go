package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
)

// Delimiter separates fields in every CSV file this module writes.
const Delimiter = ';'

const idColumn = "id"

// CSVSink writes each dataset to "<dir>/<type>.csv", where dir is chosen per
// project and version.
type CSVSink struct {
	dirFor func(project, version string) string
}

// NewCSVSink creates a CSV sink. dirFor returns the directory for a project version.
func NewCSVSink(dirFor func(project, version string) string) *CSVSink {
	return &CSVSink{dirFor: dirFor}
}

// Path returns the file a dataset is written to.
func (s *CSVSink) Path(d *Dataset) string {
	return filepath.Join(s.dirFor(d.Project(), d.Version()), string(d.Type())+".csv")
}

// Store implements Sink.
func (s *CSVSink) Store(ctx context.Context, sets ...*Dataset) error {
	for _, d := range sets {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := s.Path(d)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create dataset directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := WriteCSV(f, d); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes a dataset with rows and columns in sorted order, so equal datasets
// produce identical bytes.
func WriteCSV(w io.Writer, d *Dataset) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter

	cols := d.Columns()
	header := make([]string, 0, len(cols)+1)
	header = append(header, idColumn)
	for _, c := range cols {
		header = append(header, c.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for _, id := range d.IDs() {
		record[0] = id.String()
		for i, c := range cols {
			record[i+1] = ""
			if v, ok := d.Value(id, c.Name); ok {
				record[i+1] = v.String()
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a dataset written by WriteCSV. Empty cells are treated as missing.
func ReadCSV(r io.Reader, project, version string, typ features.Type) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) == 0 || header[0] != idColumn {
		return nil, fmt.Errorf("first column must be %q", idColumn)
	}

	rows := make(map[entity.ID]Row)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		id, err := entity.Parse(record[0])
		if err != nil {
			return nil, err
		}
		row := make(Row, len(header)-1)
		for i := 1; i < len(header) && i < len(record); i++ {
			if record[i] == "" {
				continue
			}
			row[header[i]] = ParseValue(record[i])
		}
		rows[id] = row
	}
	return New(project, version, typ, rows), nil
}
