package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Manifest records how a version's tables were produced.
type Manifest struct {
	RunID     string            `yaml:"run_id"`
	Project   string            `yaml:"project"`
	Version   string            `yaml:"version"`
	Labeled   bool              `yaml:"labeled"`
	CreatedAt time.Time         `yaml:"created_at"`
	Adapters  []string          `yaml:"adapters"`
	Skipped   []string          `yaml:"skipped,omitempty"`
	Failed    map[string]string `yaml:"failed,omitempty"`
	Drops     map[string]int    `yaml:"drops,omitempty"`
	Rows      map[string]int    `yaml:"rows"`
	Artifacts map[string]string `yaml:"artifacts"` // table kind to blake3 digest
}

// NewManifest starts a manifest with a fresh run ID.
func NewManifest(project, version string, labeled bool) *Manifest {
	return &Manifest{
		RunID:     uuid.New().String(),
		Project:   project,
		Version:   version,
		Labeled:   labeled,
		CreatedAt: time.Now().UTC(),
		Failed:    make(map[string]string),
		Drops:     make(map[string]int),
		Rows:      make(map[string]int),
		Artifacts: make(map[string]string),
	}
}

// ManifestPath returns the manifest file of a version.
func (c *Cache) ManifestPath(project, version string) string {
	return filepath.Join(c.IntermediateDir(project, version), manifestFile)
}

// WriteManifest stores m for its project and version.
func (c *Cache) WriteManifest(m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	path := c.ManifestPath(m.Project, m.Version)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads the manifest of a version.
func (c *Cache) ReadManifest(project, version string) (*Manifest, error) {
	data, err := os.ReadFile(c.ManifestPath(project, version))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest of %s: %w", version, err)
	}
	return &m, nil
}
