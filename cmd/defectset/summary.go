package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/defectset/internal/cache"
	"github.com/panbanda/defectset/internal/output"
)

func summaryCmd() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Show the cached versions of a project",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "project",
				Usage: "Project name (overrides project.name)",
			},
			&cli.StringSliceFlag{
				Name:  "invalidate",
				Usage: "Remove the cached tables of these versions first",
			},
		},
		Action: runSummaryCmd,
	}
}

type cachedVersion struct {
	Version   string         `json:"version"`
	RunID     string         `json:"run_id"`
	Labeled   bool           `json:"labeled"`
	CreatedAt time.Time      `json:"created_at"`
	Rows      map[string]int `json:"rows"`
	Adapters  []string       `json:"adapters"`
	Verified  bool           `json:"verified"`
}

func runSummaryCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	project := cfg.Project.Name
	if c.IsSet("project") {
		project = c.String("project")
	}
	if project == "" {
		return errors.New("project name is required (--project or project.name)")
	}

	store, err := cache.New(cfg.Paths.Cache, cfg.Cache.Size)
	if err != nil {
		return err
	}
	for _, v := range c.StringSlice("invalidate") {
		if err := store.Invalidate(project, v); err != nil {
			return fmt.Errorf("failed to invalidate %s: %w", v, err)
		}
	}

	cached, err := collectCached(store, project)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(cachedTable(project, cached))
}

func collectCached(store *cache.Cache, project string) ([]cachedVersion, error) {
	versions, err := store.Versions(project)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}
	out := make([]cachedVersion, 0, len(versions))
	for _, v := range versions {
		m, err := store.ReadManifest(project, v)
		if err != nil {
			return nil, err
		}
		out = append(out, cachedVersion{
			Version:   m.Version,
			RunID:     m.RunID,
			Labeled:   m.Labeled,
			CreatedAt: m.CreatedAt,
			Rows:      m.Rows,
			Adapters:  m.Adapters,
			Verified:  store.Verify(project, m.Version),
		})
	}
	return out, nil
}

func cachedTable(project string, cached []cachedVersion) *output.Table {
	rows := make([][]string, len(cached))
	for i, cv := range cached {
		rows[i] = []string{
			cv.Version,
			strconv.FormatBool(cv.Labeled),
			strconv.Itoa(cv.Rows[string(cache.Classes)]),
			strconv.Itoa(cv.Rows[string(cache.Methods)]),
			strings.Join(cv.Adapters, ","),
			strconv.FormatBool(cv.Verified),
			cv.CreatedAt.Format(time.RFC3339),
		}
	}
	return output.NewTable(
		project+" cache",
		[]string{"Version", "Labeled", "Classes", "Methods", "Adapters", "Verified", "Created"},
		rows,
		[]string{fmt.Sprintf("%d cached versions", len(cached))},
		cached,
	)
}
