package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rbright/murmur/internal/engine"
)

// ManifestName is the catalog manifest file expected inside a models directory.
const ManifestName = "models.yaml"

// manifest is the YAML schema of models.yaml.
type manifest struct {
	Models []manifestEntry `yaml:"models"`
}

type manifestEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Dir  string `yaml:"dir"`
}

// Directory is a Catalog backed by a models directory with a YAML manifest.
// Downloaded state is computed from the artifact directory existing on disk,
// so a partially provisioned directory reads as not downloaded.
type Directory struct {
	root    string
	entries []manifestEntry
}

// OpenDirectory reads and validates the manifest under root.
func OpenDirectory(root string) (*Directory, error) {
	manifestPath := filepath.Join(root, ManifestName)
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read model manifest %q: %w", manifestPath, err)
	}

	var m manifest
	if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("parse model manifest %q: %w", manifestPath, err)
	}

	seen := make(map[string]struct{}, len(m.Models))
	for _, entry := range m.Models {
		if strings.TrimSpace(entry.ID) == "" {
			return nil, fmt.Errorf("model manifest %q: entry with empty id", manifestPath)
		}
		if _, dup := seen[entry.ID]; dup {
			return nil, fmt.Errorf("model manifest %q: duplicate model id %q", manifestPath, entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}

	return &Directory{root: root, entries: m.Models}, nil
}

// ModelInfo implements the Catalog interface.
func (d *Directory) ModelInfo(id string) (ModelInfo, bool) {
	for _, entry := range d.entries {
		if entry.ID == id {
			return d.describe(entry), true
		}
	}
	return ModelInfo{}, false
}

// ModelPath implements the Catalog interface.
func (d *Directory) ModelPath(id string) (string, error) {
	for _, entry := range d.entries {
		if entry.ID == id {
			return d.artifactPath(entry), nil
		}
	}
	return "", fmt.Errorf("model %q not present in manifest", id)
}

// Models implements the Catalog interface.
func (d *Directory) Models() []ModelInfo {
	infos := make([]ModelInfo, 0, len(d.entries))
	for _, entry := range d.entries {
		infos = append(infos, d.describe(entry))
	}
	return infos
}

func (d *Directory) describe(entry manifestEntry) ModelInfo {
	info := ModelInfo{
		ID:   entry.ID,
		Name: entry.Name,
		Kind: engine.Kind(strings.ToLower(strings.TrimSpace(entry.Kind))),
	}
	if info.Name == "" {
		info.Name = entry.ID
	}
	if stat, err := os.Stat(d.artifactPath(entry)); err == nil && stat.IsDir() {
		info.Downloaded = true
	}
	return info
}

func (d *Directory) artifactPath(entry manifestEntry) string {
	dir := entry.Dir
	if dir == "" {
		dir = entry.ID
	}
	return filepath.Join(d.root, dir)
}
