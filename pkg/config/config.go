package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/panbanda/defectset/pkg/extractor"
	"github.com/panbanda/defectset/pkg/features"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration options for defectset.
type Config struct {
	// Project under study
	Project ProjectConfig `koanf:"project" toml:"project"`

	// External tool locations
	Tools ToolsConfig `koanf:"tools" toml:"tools"`

	// Requested feature names
	Features FeaturesConfig `koanf:"features" toml:"features"`

	// Working directories
	Paths PathsConfig `koanf:"paths" toml:"paths"`

	// Version split
	Versions VersionsConfig `koanf:"versions" toml:"versions"`

	// Ground-truth label files
	GroundTruth GroundTruthConfig `koanf:"ground_truth" toml:"ground_truth"`

	// Raw dataset sinks
	Store StoreConfig `koanf:"store" toml:"store"`

	// Table cache
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Logging
	Log LogConfig `koanf:"log" toml:"log"`
}

// ProjectConfig identifies the repository to mine.
type ProjectConfig struct {
	Name    string `koanf:"name" toml:"name"`
	Repo    string `koanf:"repo" toml:"repo"`
	Workers int    `koanf:"workers" toml:"workers"`
}

// ToolsConfig locates the external analysers. Empty entries disable the adapter.
type ToolsConfig struct {
	Java          string `koanf:"java" toml:"java"`
	Checkstyle    string `koanf:"checkstyle" toml:"checkstyle"`
	Checks        string `koanf:"checks" toml:"checks"`
	Designite     string `koanf:"designite" toml:"designite"`
	SourceMonitor string `koanf:"source_monitor" toml:"source_monitor"`
	CK            string `koanf:"ck" toml:"ck"`
	Mood          string `koanf:"mood" toml:"mood"`
	Timeout       string `koanf:"timeout" toml:"timeout"` // Go duration, e.g. "30m"
}

// FeaturesConfig selects feature names. Empty means every registered feature.
type FeaturesConfig struct {
	Names  []string `koanf:"names" toml:"names"`
	Labels bool     `koanf:"labels" toml:"labels"`
}

// PathsConfig holds the scratch and cache roots.
type PathsConfig struct {
	Scratch string `koanf:"scratch" toml:"scratch"`
	Cache   string `koanf:"cache" toml:"cache"`
}

// VersionsConfig lists the labeled versions, oldest first, and the unlabeled rest.
type VersionsConfig struct {
	Labeled     []string `koanf:"labeled" toml:"labeled"`
	Rest        []string `koanf:"rest" toml:"rest"`
	OrderByDate bool     `koanf:"order_by_date" toml:"order_by_date"`
}

// GroundTruthConfig points at the label CSV files.
type GroundTruthConfig struct {
	Files   string `koanf:"files" toml:"files"`
	Methods string `koanf:"methods" toml:"methods"`
}

// StoreConfig controls where raw adapter datasets are persisted.
type StoreConfig struct {
	CSV    bool   `koanf:"csv" toml:"csv"`
	SQLite string `koanf:"sqlite" toml:"sqlite"`
}

// CacheConfig controls table reuse.
type CacheConfig struct {
	Reuse bool `koanf:"reuse" toml:"reuse"`
	Size  int  `koanf:"size" toml:"size"` // tables kept in memory
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `koanf:"level" toml:"level"`   // debug, info, warn, error
	Format string `koanf:"format" toml:"format"` // text, json
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Repo: ".",
		},
		Tools: ToolsConfig{
			Java:    "java",
			Timeout: extractor.DefaultTimeout.String(),
		},
		Features: FeaturesConfig{
			Labels: true,
		},
		Paths: PathsConfig{
			Scratch: ".defectset/scratch",
			Cache:   ".defectset/cache",
		},
		Store: StoreConfig{
			CSV: true,
		},
		Cache: CacheConfig{
			Reuse: true,
			Size:  64,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigNames are the file names LoadOrDefault searches for, in order.
var ConfigNames = []string{
	"defectset.toml",
	"defectset.yaml",
	"defectset.yml",
	"defectset.json",
	".defectset.toml",
	".defectset.yaml",
	".defectset.yml",
	".defectset.json",
}

// LoadOrDefault loads the first config found in dir or dir/.defectset, or returns
// defaults. The path of the loaded file is empty when defaults are used.
func LoadOrDefault(dir string) (*Config, string, error) {
	for _, d := range []string{dir, filepath.Join(dir, ".defectset")} {
		for _, name := range ConfigNames {
			path := filepath.Join(d, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				return nil, path, err
			}
			return cfg, path, nil
		}
	}
	return DefaultConfig(), "", nil
}

// FeatureTypes resolves the configured feature names to tags. No names selects every
// tag.
func (c *Config) FeatureTypes() ([]features.Type, error) {
	if len(c.Features.Names) == 0 {
		var out []features.Type
		for _, t := range features.AllTypes() {
			if !t.IsLabel() {
				out = append(out, t)
			}
		}
		return out, nil
	}
	return features.TypesFor(c.Features.Names...)
}

// Timeout returns the per-tool timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.Tools.Timeout == "" {
		return extractor.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Tools.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: tools.timeout: %v", ErrInvalid, err)
	}
	return d, nil
}

// ExtractorTools converts the tool section for the extractors.
func (c *Config) ExtractorTools() (extractor.Tools, error) {
	timeout, err := c.Timeout()
	if err != nil {
		return extractor.Tools{}, err
	}
	return extractor.Tools{
		Java:          c.Tools.Java,
		Checkstyle:    c.Tools.Checkstyle,
		Checks:        c.Tools.Checks,
		Designite:     c.Tools.Designite,
		SourceMonitor: c.Tools.SourceMonitor,
		CK:            c.Tools.CK,
		Mood:          c.Tools.Mood,
		Timeout:       timeout,
	}, nil
}

// Validate checks the settings an extraction run depends on.
func (c *Config) Validate() error {
	var errs []error
	if c.Project.Name == "" {
		errs = append(errs, fmt.Errorf("%w: project.name is required", ErrInvalid))
	}
	if c.Project.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: project.workers must not be negative", ErrInvalid))
	}
	if c.Paths.Cache == "" || c.Paths.Scratch == "" {
		errs = append(errs, fmt.Errorf("%w: paths.cache and paths.scratch are required", ErrInvalid))
	}
	if _, err := c.Timeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.FeatureTypes(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format))
	}
	return errors.Join(errs...)
}
