// Package catalog resolves model metadata and on-disk artifact locations.
package catalog

import (
	"fmt"

	"github.com/rbright/murmur/internal/engine"
)

// ModelInfo describes one catalog entry.
type ModelInfo struct {
	ID         string
	Name       string
	Kind       engine.Kind
	Downloaded bool
}

// Catalog is the model lookup contract consumed by the manager.
type Catalog interface {
	// ModelInfo returns metadata for id, reporting ok=false when unknown.
	ModelInfo(id string) (ModelInfo, bool)
	// ModelPath returns the on-disk artifact path for id.
	ModelPath(id string) (string, error)
	// Models lists all known entries in manifest order.
	Models() []ModelInfo
}

// Static is an in-memory catalog used by tests and stub-mode wiring.
type Static struct {
	Entries []ModelInfo
	Paths   map[string]string
}

func (s Static) ModelInfo(id string) (ModelInfo, bool) {
	for _, entry := range s.Entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return ModelInfo{}, false
}

func (s Static) ModelPath(id string) (string, error) {
	if path, ok := s.Paths[id]; ok {
		return path, nil
	}
	return "", fmt.Errorf("no artifact path for model %q", id)
}

func (s Static) Models() []ModelInfo {
	return s.Entries
}
