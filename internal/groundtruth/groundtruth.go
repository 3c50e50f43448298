// Package groundtruth reads per-version defect labels from CSV files.
package groundtruth

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/panbanda/defectset/pkg/extractor"
)

// VersionPlaceholder is replaced by the version name in path templates.
const VersionPlaceholder = "{version}"

// Column names expected in the label files.
const (
	FileColumn   = "file_name"
	MethodColumn = "method_id"
)

// ErrMissingColumn is returned when a label file lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// CSV loads labels from comma-separated files. Files lists file_name,is_buggy and
// Methods lists method_id,is_method_buggy, where method_id is the canonical method
// ID. Both are path templates containing {version}. An empty Methods template yields
// no method labels.
type CSV struct {
	Files   string
	Methods string
}

var _ extractor.GroundTruth = CSV{}

// BuggedFiles implements extractor.GroundTruth.
func (c CSV) BuggedFiles(ctx context.Context, version string) (map[string]bool, error) {
	if c.Files == "" {
		return nil, fmt.Errorf("no label file configured for %s", version)
	}
	labels, err := readLabels(ctx, expand(c.Files, version), FileColumn, extractor.BuggyColumn)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(labels))
	for k, v := range labels {
		out[normalizePath(k)] = v
	}
	return out, nil
}

// BuggedMethods implements extractor.GroundTruth.
func (c CSV) BuggedMethods(ctx context.Context, version string) (map[string]bool, error) {
	if c.Methods == "" {
		return map[string]bool{}, nil
	}
	return readLabels(ctx, expand(c.Methods, version), MethodColumn, extractor.MethodBuggyColumn)
}

func expand(template, version string) string {
	return strings.ReplaceAll(template, VersionPlaceholder, version)
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}

func readLabels(ctx context.Context, file, keyCol, labelCol string) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels: %w", err)
	}
	defer f.Close()

	labels, err := parseLabels(f, keyCol, labelCol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return labels, nil
}

func parseLabels(r io.Reader, keyCol, labelCol string) (map[string]bool, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	ki, li := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case keyCol:
			ki = i
		case labelCol:
			li = i
		}
	}
	if ki < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, keyCol)
	}
	if li < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, labelCol)
	}

	out := make(map[string]bool)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if ki >= len(rec) || li >= len(rec) || rec[ki] == "" {
			continue
		}
		buggy, err := parseFlag(rec[li])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out[rec[ki]] = buggy
	}
}

// parseFlag accepts booleans and numbers, where any non-zero number is buggy.
func parseFlag(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if b, err := strconv.ParseBool(s); err == nil {
		return b, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false, fmt.Errorf("invalid label %q", s)
	}
	return f != 0, nil
}
