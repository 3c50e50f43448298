package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/defectset/internal/cache"
	"github.com/panbanda/defectset/internal/groundtruth"
	"github.com/panbanda/defectset/internal/output"
	"github.com/panbanda/defectset/internal/progress"
	"github.com/panbanda/defectset/internal/vcs"
	"github.com/panbanda/defectset/pkg/config"
	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/pipeline"
)

func extractCmd() *cli.Command {
	return &cli.Command{
		Name:    "extract",
		Aliases: []string{"x"},
		Usage:   "Extract feature tables for the configured versions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "project",
				Usage: "Project name (overrides project.name)",
			},
			&cli.StringFlag{
				Name:  "repo",
				Usage: "Repository path (overrides project.repo)",
			},
			&cli.StringSliceFlag{
				Name:  "versions",
				Usage: "Labeled versions, oldest first; the last one is the testing version",
			},
			&cli.StringSliceFlag{
				Name:  "rest",
				Usage: "Unlabeled versions extracted on a best-effort basis",
			},
			&cli.StringSliceFlag{
				Name:  "features",
				Usage: "Feature names to extract (default: all)",
			},
			&cli.BoolFlag{
				Name:  "no-labels",
				Usage: "Extract every version without ground truth",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Ignore cached tables",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parser workers (default: number of CPUs)",
			},
			&cli.StringFlag{
				Name:  "sqlite",
				Usage: "Also store raw datasets in this SQLite database",
			},
			&cli.IntFlag{
				Name:  "show",
				Value: 0,
				Usage: "Print the first N rows of the testing class table",
			},
		},
		Action: runExtractCmd,
	}
}

// applyExtractFlags overrides config values with explicitly set flags.
func applyExtractFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("project") {
		cfg.Project.Name = c.String("project")
	}
	if c.IsSet("repo") {
		cfg.Project.Repo = c.String("repo")
	}
	if c.IsSet("versions") {
		cfg.Versions.Labeled = c.StringSlice("versions")
	}
	if c.IsSet("rest") {
		cfg.Versions.Rest = c.StringSlice("rest")
	}
	if c.IsSet("features") {
		cfg.Features.Names = c.StringSlice("features")
	}
	if c.Bool("no-labels") {
		cfg.Features.Labels = false
	}
	if c.Bool("no-cache") {
		cfg.Cache.Reuse = false
	}
	if c.IsSet("workers") {
		cfg.Project.Workers = c.Int("workers")
	}
	if c.IsSet("sqlite") {
		cfg.Store.SQLite = c.String("sqlite")
	}
}

func runExtractCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyExtractFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := newLogger(c, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	repo, err := vcs.Open(cfg.Project.Repo)
	if err != nil {
		return err
	}
	ref, err := repo.CurrentRef()
	if err != nil {
		return fmt.Errorf("failed to read current ref: %w", err)
	}
	defer func() {
		if err := repo.Restore(ref); err != nil {
			logger.Warn("failed to restore working tree", "ref", ref, "error", err)
		}
	}()

	plan, err := buildPlan(repo, cfg)
	if err != nil {
		return err
	}

	store, err := cache.New(cfg.Paths.Cache, cfg.Cache.Size)
	if err != nil {
		return err
	}
	types, err := cfg.FeatureTypes()
	if err != nil {
		return err
	}
	tools, err := cfg.ExtractorTools()
	if err != nil {
		return err
	}

	total := len(plan.Versions) + len(plan.Rest)
	tracker := progress.NewTracker("Extracting", total)
	opts := []pipeline.Option{
		pipeline.WithFeatures(types),
		pipeline.WithTools(tools),
		pipeline.WithScratch(cfg.Paths.Scratch),
		pipeline.WithReuse(cfg.Cache.Reuse),
		pipeline.WithWorkers(cfg.Project.Workers),
		pipeline.WithIntermediates(cfg.Store.CSV),
		pipeline.WithLogger(logger),
		pipeline.WithGroundTruth(groundtruth.CSV{Files: cfg.GroundTruth.Files, Methods: cfg.GroundTruth.Methods}),
		pipeline.WithProgress(func(v string, err error) {
			if err != nil {
				tracker.Skip(v, err)
				return
			}
			tracker.Step(v)
			tracker.Tick()
		}),
	}
	if cfg.Store.SQLite != "" {
		sink, err := dataset.OpenSQLite(cfg.Store.SQLite)
		if err != nil {
			return err
		}
		defer sink.Close()
		opts = append(opts, pipeline.WithSink(sink))
	}

	p, err := pipeline.New(cfg.Project.Name, repo, store, opts...)
	if err != nil {
		return err
	}

	var versions []*pipeline.VersionResult
	var failures pipeline.ProcessingErrors
	var res *pipeline.Result
	if cfg.Features.Labels {
		res, err = p.Run(c.Context, plan)
		if err != nil {
			tracker.FinishError(err)
			return err
		}
		versions = append(append(versions, res.Versions...), res.Rest...)
		failures = res.Failures
	} else {
		versions, failures, err = extractUnlabeled(c.Context, p, logger, append(append([]string{}, plan.Versions...), plan.Rest...))
		if err != nil {
			tracker.FinishError(err)
			return err
		}
	}
	tracker.Finish()

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(versionTable(cfg.Project.Name, versions)); err != nil {
		return err
	}
	if n := c.Int("show"); n > 0 && res != nil {
		title := fmt.Sprintf("%s %s classes", cfg.Project.Name, res.TestingVersion)
		if err := formatter.Output(output.FromFeatureTable(title, res.Testing.Class, n)); err != nil {
			return err
		}
	}
	if len(failures) > 0 {
		formatter.Warning("%v", failures)
	}
	formatter.Success("Tables written to %s", filepath.Join(cfg.Paths.Scratch, cfg.Project.Name))
	return nil
}

// buildPlan orders the labeled versions by commit date when configured. A labeled run
// needs at least one labeled version.
func buildPlan(repo *vcs.Repo, cfg *config.Config) (pipeline.Plan, error) {
	plan := pipeline.Plan{Versions: cfg.Versions.Labeled, Rest: cfg.Versions.Rest}
	if len(plan.Versions) == 0 && len(plan.Rest) == 0 {
		return plan, pipeline.ErrNoVersions
	}
	if cfg.Features.Labels && len(plan.Versions) == 0 {
		return plan, fmt.Errorf("%w: no labeled versions configured, use --no-labels to extract rest versions only", pipeline.ErrNoVersions)
	}
	if cfg.Versions.OrderByDate && len(plan.Versions) > 0 {
		infos, err := repo.OrderByDate(plan.Versions)
		if err != nil {
			return plan, fmt.Errorf("failed to order versions: %w", err)
		}
		plan.Versions = vcs.Refs(infos)
	}
	return plan, nil
}

// extractUnlabeled processes every version without ground truth. Failures are
// collected like rest versions.
func extractUnlabeled(ctx context.Context, p *pipeline.Pipeline, logger *slog.Logger, versions []string) ([]*pipeline.VersionResult, pipeline.ProcessingErrors, error) {
	var out []*pipeline.VersionResult
	var failures pipeline.ProcessingErrors
	for _, v := range versions {
		vr, err := p.ProcessVersion(ctx, v, false)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, nil, err
			}
			logger.Warn("skipping version", "version", v, "error", err)
			failures = append(failures, pipeline.ProcessingError{Version: v, Err: err})
			continue
		}
		out = append(out, vr)
	}
	return out, failures, nil
}

type versionRow struct {
	Version  string         `json:"version"`
	Labeled  bool           `json:"labeled"`
	Cached   bool           `json:"cached"`
	Classes  int            `json:"classes"`
	Methods  int            `json:"methods"`
	Adapters []string       `json:"adapters"`
	Skipped  []string       `json:"skipped,omitempty"`
	Drops    map[string]int `json:"drops,omitempty"`
}

func versionTable(project string, versions []*pipeline.VersionResult) *output.Table {
	rows := make([][]string, 0, len(versions))
	data := make([]versionRow, 0, len(versions))
	for _, vr := range versions {
		r := versionRow{
			Version:  vr.Version,
			Labeled:  vr.Labeled,
			Cached:   vr.Cached,
			Classes:  vr.Tables.Class.Len(),
			Methods:  vr.Tables.Method.Len(),
			Adapters: vr.Manifest.Adapters,
			Skipped:  vr.Manifest.Skipped,
			Drops:    vr.Manifest.Drops,
		}
		data = append(data, r)
		rows = append(rows, []string{
			r.Version,
			strconv.FormatBool(r.Labeled),
			strconv.FormatBool(r.Cached),
			strconv.Itoa(r.Classes),
			strconv.Itoa(r.Methods),
			strings.Join(r.Adapters, ","),
			formatDrops(r.Drops),
		})
	}
	return output.NewTable(
		project+" versions",
		[]string{"Version", "Labeled", "Cached", "Classes", "Methods", "Adapters", "Dropped"},
		rows,
		[]string{fmt.Sprintf("%d versions", len(versions))},
		data,
	)
}

func formatDrops(drops map[string]int) string {
	if len(drops) == 0 {
		return "-"
	}
	names := make([]string, 0, len(drops))
	for name := range drops {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, drops[name])
	}
	return strings.Join(parts, " ")
}
