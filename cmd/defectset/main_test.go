package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/defectset/internal/cache"
	"github.com/panbanda/defectset/pkg/config"
	"github.com/panbanda/defectset/pkg/extractor"
	"github.com/panbanda/defectset/pkg/pipeline"
)

func TestInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "defectset.toml")
	args := []string{"defectset", "init", "--path", path}

	require.NoError(t, newApp().Run(args))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	defaults := config.DefaultConfig()
	assert.Equal(t, defaults.Tools.Java, cfg.Tools.Java)
	assert.Equal(t, defaults.Cache.Size, cfg.Cache.Size)
	assert.Equal(t, defaults.Paths, cfg.Paths)
	assert.True(t, cfg.Features.Labels)

	err = newApp().Run(args)
	assert.ErrorContains(t, err, "already exists")
	assert.NoError(t, newApp().Run(append(args, "--force")))
}

func TestApplyExtractFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	cmd := extractCmd()
	cmd.Action = func(c *cli.Context) error {
		applyExtractFlags(c, cfg)
		return nil
	}
	app := &cli.App{Commands: []*cli.Command{cmd}}

	err := app.Run([]string{"defectset", "extract",
		"--project", "lang",
		"--versions", "1.0", "--versions", "2.0",
		"--rest", "3.0",
		"--no-cache", "--no-labels",
		"--sqlite", "raw.db",
	})
	require.NoError(t, err)
	assert.Equal(t, "lang", cfg.Project.Name)
	assert.Equal(t, ".", cfg.Project.Repo, "unset flags keep config values")
	assert.Equal(t, []string{"1.0", "2.0"}, cfg.Versions.Labeled)
	assert.Equal(t, []string{"3.0"}, cfg.Versions.Rest)
	assert.False(t, cfg.Cache.Reuse)
	assert.False(t, cfg.Features.Labels)
	assert.Equal(t, "raw.db", cfg.Store.SQLite)
}

func TestBuildPlanNeedsLabeledVersions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Versions.Labeled = nil
	cfg.Versions.Rest = []string{"3.0"}

	_, err := buildPlan(nil, cfg)
	require.ErrorIs(t, err, pipeline.ErrNoVersions)
	assert.Contains(t, err.Error(), "--no-labels")

	cfg.Features.Labels = false
	plan, err := buildPlan(nil, cfg)
	require.NoError(t, err)
	assert.Empty(t, plan.Versions)
	assert.Equal(t, []string{"3.0"}, plan.Rest)

	cfg.Versions.Rest = nil
	_, err = buildPlan(nil, cfg)
	assert.ErrorIs(t, err, pipeline.ErrNoVersions)
}

func TestFormatDrops(t *testing.T) {
	assert.Equal(t, "-", formatDrops(nil))
	assert.Equal(t, "ck=1 designite=4", formatDrops(map[string]int{"designite": 4, "ck": 1}))
}

func TestAdapterTable(t *testing.T) {
	tbl := adapterTable(extractor.Registry(), extractor.Tools{CK: "ck.jar"})
	status := make(map[string]string)
	for _, row := range tbl.Rows {
		status[row[0]] = row[2]
	}
	assert.Equal(t, "yes", status["ck"])
	assert.Equal(t, "yes", status["halstead"])
	assert.Equal(t, "no", status["checkstyle"])
	assert.Equal(t, "no", status["mood"])
	assert.Len(t, tbl.Rows, len(extractor.Registry()))
}

// initJavaRepo commits a single class and tags two releases a day apart.
func initJavaRepo(t *testing.T) string {
	t.Helper()
	repoPath := t.TempDir()
	repo, err := git.PlainInit(repoPath, false)
	require.NoError(t, err)
	w, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(repoPath, "src"), 0o755))

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	bodies := []string{"return x + 1;", "if (x > 0) { return x * 2; } return -x;"}
	for i, v := range []string{"1.0", "2.0"} {
		src := fmt.Sprintf("package p;\n\npublic class A {\n    int f(int x) {\n        %s\n    }\n}\n", bodies[i])
		require.NoError(t, os.WriteFile(filepath.Join(repoPath, "src", "A.java"), []byte(src), 0o644))
		_, err := w.Add("src/A.java")
		require.NoError(t, err)
		sig := &object.Signature{Name: "Test", Email: "test@example.com", When: base.AddDate(0, 0, i)}
		hash, err := w.Commit("release "+v, &git.CommitOptions{Author: sig})
		require.NoError(t, err)
		_, err = repo.CreateTag(v, hash, nil)
		require.NoError(t, err)
	}
	return repoPath
}

func TestExtractAndSummary(t *testing.T) {
	repoPath := initJavaRepo(t)
	work := t.TempDir()
	labels := filepath.Join(work, "labels")
	require.NoError(t, os.MkdirAll(labels, 0o755))
	for _, v := range []string{"1.0", "2.0"} {
		data := "file_name,is_buggy\nsrc/A.java,1\nsrc/Gone.java,0\n"
		require.NoError(t, os.WriteFile(filepath.Join(labels, v+".csv"), []byte(data), 0o644))
	}

	cfgPath := filepath.Join(work, "defectset.toml")
	cfgText := fmt.Sprintf(`[project]
name = "demo"
repo = %q

[features]
names = ["Length"]
labels = true

[paths]
scratch = %q
cache = %q

[versions]
labeled = ["2.0", "1.0"]
order_by_date = true

[ground_truth]
files = %q

[log]
level = "error"
`, repoPath, filepath.Join(work, "scratch"), filepath.Join(work, "cache"), filepath.Join(labels, "{version}.csv"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgText), 0o644))

	out := filepath.Join(work, "versions.json")
	err := newApp().Run([]string{"defectset", "--config", cfgPath, "--format", "json", "--output", out, "extract"})
	require.NoError(t, err)

	var rows []versionRow
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "1.0", rows[0].Version, "versions are ordered by commit date")
	assert.Equal(t, "2.0", rows[1].Version)
	for _, r := range rows {
		assert.True(t, r.Labeled)
		assert.Equal(t, 1, r.Classes)
		assert.Equal(t, []string{"bugged", "halstead"}, r.Adapters)
		assert.Equal(t, 1, r.Drops["bugged"], "label for a missing file is dropped")
	}
	assert.FileExists(t, filepath.Join(work, "scratch", "demo", "2.0", string(cache.Classes)+".csv"))

	summary := filepath.Join(work, "summary.json")
	err = newApp().Run([]string{"defectset", "--config", cfgPath, "--format", "json", "--output", summary, "summary"})
	require.NoError(t, err)

	var cached []cachedVersion
	data, err = os.ReadFile(summary)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &cached))
	require.Len(t, cached, 2)
	for _, cv := range cached {
		assert.True(t, cv.Verified, cv.Version)
		assert.Equal(t, 1, cv.Rows[string(cache.Classes)])
	}

	err = newApp().Run([]string{"defectset", "--config", cfgPath, "--format", "json", "--output", summary, "summary", "--invalidate", "1.0"})
	require.NoError(t, err)
	data, err = os.ReadFile(summary)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &cached))
	require.Len(t, cached, 1)
	assert.Equal(t, "2.0", cached[0].Version)
}

func TestExtractRequiresProject(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "defectset.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[project]\nrepo = \".\"\n"), 0o644))
	err := newApp().Run([]string{"defectset", "--config", cfgPath, "extract"})
	assert.ErrorIs(t, err, config.ErrInvalid)
}
