package extractor

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/panbanda/defectset/pkg/analyser"
	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
)

// Checkstyle reports size and complexity violations against configured bounds.
type Checkstyle struct{}

func (Checkstyle) Name() string { return "checkstyle" }

func (Checkstyle) Types() []features.Type { return []features.Type{features.Checkstyle} }

func (Checkstyle) Available(tools Tools) bool {
	return tools.Checkstyle != "" && tools.Checks != ""
}

// Extract runs checkstyle with XML output.
func (c Checkstyle) Extract(ctx context.Context, env *Env) (dataset.Composite, error) {
	dir, cleanup, err := env.Scratch(c.Name())
	if err != nil {
		return nil, err
	}
	out := filepath.Join(dir, "checkstyle.xml")
	cmd := Command{
		Name: env.java(),
		Args: []string{"-jar", env.Tools.Checkstyle, "-c", env.Tools.Checks, "-f", "xml", "-o", out, env.Tree},
	}
	if err := env.runner().Run(ctx, cmd); err != nil {
		return nil, err
	}

	f, err := os.Open(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	report, err := decodeCheckstyle(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	rows := c.normalize(env, report)
	cleanup()
	return dataset.Single(env.newDataset(features.Checkstyle, rows)), nil
}

type checkstyleReport struct {
	XMLName xml.Name         `xml:"checkstyle"`
	Files   []checkstyleFile `xml:"file"`
}

type checkstyleFile struct {
	Name   string            `xml:"name,attr"`
	Errors []checkstyleError `xml:"error"`
}

type checkstyleError struct {
	Line    int    `xml:"line,attr"`
	Message string `xml:"message,attr"`
}

func decodeCheckstyle(r io.Reader) (*checkstyleReport, error) {
	var report checkstyleReport
	if err := xml.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("%w: checkstyle report: %v", ErrParse, err)
	}
	return &report, nil
}

func (c Checkstyle) normalize(env *Env, report *checkstyleReport) map[entity.ID]dataset.Row {
	found := make(map[entity.ID]map[string]float64)
	keys := make(map[string]struct{})

	for _, file := range report.Files {
		if !strings.HasSuffix(file.Name, analyser.JavaExt) {
			continue
		}
		for _, e := range file.Errors {
			key, value, ok := ParseCheckstyleMessage(e.Message)
			if !ok {
				continue
			}
			keys[key] = struct{}{}
			id, ok := env.Resolver.ClosestEnclosingID(file.Name, e.Line)
			if !ok {
				env.drop(c.Name())
				continue
			}
			if found[id] == nil {
				found[id] = make(map[string]float64)
			}
			found[id][key] = value
		}
	}

	rows := make(map[entity.ID]dataset.Row, len(found))
	for id, vals := range found {
		row := make(dataset.Row, len(keys))
		for k := range keys {
			row[k] = dataset.Number(vals[k])
		}
		rows[id] = row
	}
	return rows
}

var trailingInt = regexp.MustCompile(`(\d+)\D*$`)

// ParseCheckstyleMessage reads a "max allowed" violation. The key is the message's
// leading words without the observed value; the value is the trailing number, which is
// the configured bound:
//
//	"Method length is 120 lines (max allowed is 100)." -> "Method_length", 100
func ParseCheckstyleMessage(msg string) (string, float64, bool) {
	if !strings.Contains(msg, "max allowed") {
		return "", 0, false
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(msg, "lines", ""), ",", "")

	head, _, _ := strings.Cut(cleaned, "(")
	words := strings.Fields(head)
	if len(words) <= 2 {
		return "", 0, false
	}
	key := strings.Join(words[:len(words)-2], "_")

	m := trailingInt.FindStringSubmatch(cleaned)
	if m == nil {
		return "", 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return "", 0, false
	}
	return key, value, true
}
