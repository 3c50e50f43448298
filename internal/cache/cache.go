// Package cache lays out the stable per-project, per-version store of feature tables
// and run manifests, and keeps recently loaded tables in memory.
package cache

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"

	"github.com/panbanda/defectset/pkg/table"
)

// ErrMiss is returned when a version has no cached table.
var ErrMiss = errors.New("not cached")

// Kind names one of the three tables stored per version.
type Kind string

const (
	Classes    Kind = "classes"
	Methods    Kind = "methods"
	Aggregated Kind = "aggregated"
)

// Kinds lists the stored tables in write order.
var Kinds = []Kind{Classes, Methods, Aggregated}

const (
	intermediateDir = "intermediate"
	manifestFile    = "manifest.yaml"
	tableExt        = ".csv"
)

// DefaultSize is the number of tables kept in memory when no size is given.
const DefaultSize = 64

// Cache stores tables under <dir>/<project>/<kind>/<version>.csv.
type Cache struct {
	dir    string
	tables *lru.Cache[string, *table.Table]
}

// New creates a cache rooted at dir keeping up to size tables in memory.
func New(dir string, size int) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultSize
	}
	tables, err := lru.New[string, *table.Table](size)
	if err != nil {
		return nil, err
	}
	return &Cache{dir: dir, tables: tables}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	return c.dir
}

// TablePath returns the file holding one table of a version.
func (c *Cache) TablePath(project, version string, kind Kind) string {
	return filepath.Join(c.dir, project, string(kind), fileName(version)+tableExt)
}

// IntermediateDir returns the directory holding a version's raw datasets and manifest.
func (c *Cache) IntermediateDir(project, version string) string {
	return filepath.Join(c.dir, project, intermediateDir, fileName(version))
}

// fileName keeps version names usable as a single path element.
func fileName(version string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(version)
}

// HashFile computes a BLAKE3 hash of a file's contents.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// WriteTable writes t as CSV to path, replacing any previous file atomically, and
// returns the digest of the bytes written.
func WriteTable(path string, t *table.Table) (string, error) {
	var buf bytes.Buffer
	if err := table.WriteCSV(&buf, t); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return HashBytes(buf.Bytes()), nil
}

// ReadTable reads a table file written by WriteTable.
func ReadTable(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := table.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t, nil
}

// Save stores one table of a version and returns its digest.
func (c *Cache) Save(project, version string, kind Kind, t *table.Table) (string, error) {
	path := c.TablePath(project, version, kind)
	digest, err := WriteTable(path, t)
	if err != nil {
		return "", fmt.Errorf("failed to cache %s table of %s: %w", kind, version, err)
	}
	c.tables.Add(path, t)
	return digest, nil
}

// Load returns one table of a version, from memory when recently used.
func (c *Cache) Load(project, version string, kind Kind) (*table.Table, error) {
	path := c.TablePath(project, version, kind)
	if t, ok := c.tables.Get(path); ok {
		return t, nil
	}
	t, err := ReadTable(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s table of %s", ErrMiss, kind, version)
	}
	if err != nil {
		return nil, err
	}
	c.tables.Add(path, t)
	return t, nil
}

// Verify reports whether every table of a version exists and matches the digests
// recorded in its manifest.
func (c *Cache) Verify(project, version string) bool {
	m, err := c.ReadManifest(project, version)
	if err != nil {
		return false
	}
	for _, kind := range Kinds {
		want, ok := m.Artifacts[string(kind)]
		if !ok {
			return false
		}
		got, err := HashFile(c.TablePath(project, version, kind))
		if err != nil || got != want {
			return false
		}
	}
	return true
}

// Invalidate removes every cached file of a version.
func (c *Cache) Invalidate(project, version string) error {
	var errs []error
	for _, kind := range Kinds {
		path := c.TablePath(project, version, kind)
		c.tables.Remove(path)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := os.RemoveAll(c.IntermediateDir(project, version)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Versions lists the versions of a project with a manifest, sorted by name.
func (c *Cache) Versions(project string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(c.dir, project, intermediateDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(c.dir, project, intermediateDir, e.Name(), manifestFile)); err == nil {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
