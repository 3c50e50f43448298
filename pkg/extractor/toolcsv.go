package extractor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/panbanda/defectset/pkg/dataset"
)

// toolTable is a comma-separated tool report read fully into memory.
type toolTable struct {
	header []string
	rows   []map[string]string
}

func readToolCSV(path string) (*toolTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	t, err := parseToolCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	return t, nil
}

func parseToolCSV(r io.Reader) (*toolTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty report")
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	t := &toolTable{header: header}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			} else {
				row[h] = ""
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// require fails when any of cols is missing from the header.
func (t *toolTable) require(cols ...string) error {
	have := make(map[string]bool, len(t.header))
	for _, h := range t.header {
		have[h] = true
	}
	for _, c := range cols {
		if !have[c] {
			return fmt.Errorf("%w: missing column %q", ErrParse, c)
		}
	}
	return nil
}

// values converts every column except skip into typed values. Empty cells are left
// out.
func (t *toolTable) values(row map[string]string, skip map[string]bool) dataset.Row {
	out := make(dataset.Row, len(row))
	for _, h := range t.header {
		if skip[h] {
			continue
		}
		if v := row[h]; v != "" {
			out[h] = dataset.ParseValue(v)
		}
	}
	return out
}

// columnsExcept returns the header without the skipped columns.
func (t *toolTable) columnsExcept(skip map[string]bool) []string {
	var out []string
	for _, h := range t.header {
		if !skip[h] {
			out = append(out, h)
		}
	}
	return out
}

func complete(row map[string]string, cols []string) bool {
	for _, c := range cols {
		if row[c] == "" {
			return false
		}
	}
	return true
}

func set(cols ...string) map[string]bool {
	out := make(map[string]bool, len(cols))
	for _, c := range cols {
		out[c] = true
	}
	return out
}
