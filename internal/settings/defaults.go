package settings

import (
	"os"
	"path/filepath"
	"strings"
)

// Default returns the canonical runtime settings used when no file is present.
func Default() Settings {
	return Settings{
		SelectedModel: "parakeet-tdt-0.6b",
		ModelsDir:     defaultModelsDir(),
		Unload:        UnloadPolicy{Kind: PolicyNever},
		CustomWords:   nil,
		WordThreshold: 0.85,
	}
}

// defaultModelsDir selects XDG_DATA_HOME when available, otherwise ~/.local/share.
func defaultModelsDir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "murmur", "models")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "models")
	}
	return filepath.Join(home, ".local", "share", "murmur", "models")
}
