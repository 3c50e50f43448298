package extractor

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/panbanda/defectset/pkg/analyser"
	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/features"
)

// SourceMonitor reports file and method metrics. The tool only runs on Windows, so the
// adapter is available only when an executable is configured.
type SourceMonitor struct{}

func (SourceMonitor) Name() string { return "sourcemonitor" }

func (SourceMonitor) Types() []features.Type {
	return []features.Type{features.SourceMonitorFiles, features.SourceMonitor}
}

func (SourceMonitor) Available(tools Tools) bool {
	return tools.SourceMonitor != ""
}

const (
	smFilesReport   = "source_monitor_classes.csv"
	smMethodsReport = "source_monitor_methods.csv"
	smCommandFile   = "sourceMonitor.xml"

	colFileName = "File Name"
	colSMMethod = "Method"
)

var smDropped = []string{"Project Name", "Checkpoint Name", "Created On"}

// Extract writes a command file, runs SourceMonitor in batch mode and reads the two
// exported reports.
func (s SourceMonitor) Extract(ctx context.Context, env *Env) (dataset.Composite, error) {
	if env.Tools.SourceMonitor == "" {
		return nil, fmt.Errorf("%w: no SourceMonitor executable configured", ErrToolUnavailable)
	}
	dir, cleanup, err := env.Scratch(s.Name())
	if err != nil {
		return nil, err
	}
	commands, err := sourceMonitorCommands(env.Tree, dir)
	if err != nil {
		return nil, err
	}
	cmdPath := filepath.Join(dir, smCommandFile)
	if err := os.WriteFile(cmdPath, commands, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write SourceMonitor commands: %w", err)
	}
	if err := env.runner().Run(ctx, Command{Name: env.Tools.SourceMonitor, Args: []string{"/C", cmdPath}}); err != nil {
		return nil, err
	}

	files, err := readToolCSV(filepath.Join(dir, smFilesReport))
	if err != nil {
		return nil, err
	}
	if err := files.require(colFileName); err != nil {
		return nil, err
	}
	methods, err := readToolCSV(filepath.Join(dir, smMethodsReport))
	if err != nil {
		return nil, err
	}
	if err := methods.require(colFileName, colSMMethod); err != nil {
		return nil, err
	}

	out := dataset.Composite{}.Add(
		env.newDataset(features.SourceMonitorFiles, s.fileRows(env, files)),
		env.newDataset(features.SourceMonitor, s.methodRows(env, methods)),
	)
	cleanup()
	return out, nil
}

func (s SourceMonitor) fileRows(env *Env, t *toolTable) map[entity.ID]dataset.Row {
	skip := set(append(smDropped, colFileName)...)
	for _, h := range t.header {
		if strings.HasPrefix(h, "Name of Most Complex Method") {
			skip[h] = true
		}
	}

	rows := make(map[entity.ID]dataset.Row)
	for _, row := range t.rows {
		path, ok := sourceMonitorPath(env, row[colFileName])
		if !ok {
			env.drop(s.Name())
			continue
		}
		rows[entity.File(path)] = t.values(row, skip)
	}
	return rows
}

func (s SourceMonitor) methodRows(env *Env, t *toolTable) map[entity.ID]dataset.Row {
	skip := set(append(smDropped, colFileName, colSMMethod)...)

	rows := make(map[entity.ID]dataset.Row)
	for _, row := range t.rows {
		path, ok := sourceMonitorPath(env, row[colFileName])
		if !ok {
			env.drop(s.Name())
			continue
		}
		id, ok := ResolveSignatureVariants(env.Resolver, path, row[colSMMethod])
		if !ok {
			env.drop(s.Name())
			continue
		}
		rows[id] = t.values(row, skip)
	}
	return rows
}

// sourceMonitorPath converts a reported file name to a tree-relative path of an indexed
// file.
func sourceMonitorPath(env *Env, name string) (string, bool) {
	p := strings.ReplaceAll(name, `\`, "/")
	for _, root := range []string{env.Tree, env.Resolver.Root()} {
		prefix := strings.TrimSuffix(filepath.ToSlash(root), "/") + "/"
		p = strings.TrimPrefix(p, prefix)
	}
	if !env.Resolver.HasFile(p) {
		return "", false
	}
	return p, true
}

// SignatureVariants lists the lookup keys for a reported method, in the order they are
// tried: the full lowercase signature, without parameters, without generic arguments,
// and without both.
func SignatureVariants(method string) []string {
	full := strings.ToLower(strings.TrimSpace(method))
	noParams, _, _ := strings.Cut(full, "(")
	candidates := []string{
		full,
		noParams,
		analyser.StripGenerics(full),
		analyser.StripGenerics(noParams),
	}

	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// ResolveSignatureVariants returns the first variant of method known in path.
func ResolveSignatureVariants(r Resolver, path, method string) (entity.ID, bool) {
	for _, v := range SignatureVariants(method) {
		if id, ok := r.MethodBySignature(path, v); ok {
			return id, true
		}
	}
	return entity.ID{}, false
}

type smCommands struct {
	XMLName  xml.Name    `xml:"sourcemonitor_commands"`
	WriteLog bool        `xml:"write_log"`
	Commands []smCommand `xml:"command"`
}

type smCommand struct {
	ProjectFile     string   `xml:"project_file"`
	ProjectLanguage string   `xml:"project_language"`
	SourceDirectory string   `xml:"source_directory,omitempty"`
	IncludeSubdirs  bool     `xml:"include_subdirectories,omitempty"`
	CheckpointName  string   `xml:"checkpoint_name"`
	Export          smExport `xml:"export"`
}

type smExport struct {
	File string `xml:"export_file"`
	Type string `xml:"export_type"`
}

func sourceMonitorCommands(tree, out string) ([]byte, error) {
	project := filepath.Join(out, "defectset.smproj")
	cmds := smCommands{
		WriteLog: true,
		Commands: []smCommand{
			{
				ProjectFile:     project,
				ProjectLanguage: "Java",
				SourceDirectory: tree,
				IncludeSubdirs:  true,
				CheckpointName:  "defectset",
				Export:          smExport{File: filepath.Join(out, smFilesReport), Type: "2 (checkpoint details as CSV)"},
			},
			{
				ProjectFile:     project,
				ProjectLanguage: "Java",
				CheckpointName:  "defectset",
				Export:          smExport{File: filepath.Join(out, smMethodsReport), Type: "3 (method details as CSV)"},
			},
		},
	}
	data, err := xml.MarshalIndent(cmds, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode SourceMonitor commands: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}
