package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

// envPrefix namespaces every environment override, e.g. MURMUR_SELECTED_MODEL.
const envPrefix = "MURMUR_"

// Loaded captures the resolved settings path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Settings Settings
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates runtime settings.
// Precedence: defaults < settings.yaml < MURMUR_* environment overrides.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	cfg := Default()
	loaded := Loaded{Path: resolvedPath, Exists: true}

	content, err := os.ReadFile(resolvedPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Loaded{}, fmt.Errorf("parse settings %q: %w", resolvedPath, err)
		}
	case errors.Is(err, os.ErrNotExist):
		loaded.Exists = false
		loaded.Warnings = append(loaded.Warnings, Warning{
			Message: fmt.Sprintf("settings file %q not found; using defaults", resolvedPath),
		})
	default:
		return Loaded{}, fmt.Errorf("read settings %q: %w", resolvedPath, err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Loaded{}, fmt.Errorf("parse %s* environment overrides: %w", envPrefix, err)
	}

	warnings, err := Validate(&cfg)
	if err != nil {
		return Loaded{}, err
	}
	loaded.Warnings = append(loaded.Warnings, warnings...)
	loaded.Settings = cfg
	return loaded, nil
}

// Validate enforces settings constraints, applies fallback defaults, and
// returns non-fatal warnings.
func Validate(cfg *Settings) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.SelectedModel) == "" {
		return nil, fmt.Errorf("selected_model must not be empty")
	}
	if strings.TrimSpace(cfg.ModelsDir) == "" {
		return nil, fmt.Errorf("models_dir must not be empty")
	}
	if cfg.WordThreshold < 0 || cfg.WordThreshold > 1 {
		return nil, fmt.Errorf("word_threshold must be in [0,1], got %v", cfg.WordThreshold)
	}
	if cfg.Unload.Kind == "" {
		cfg.Unload = UnloadPolicy{Kind: PolicyNever}
	}
	if cfg.Unload.Kind == PolicyAfter && cfg.Unload.AfterSeconds <= 0 {
		return nil, fmt.Errorf("unload idle window must be a positive second count")
	}

	kept := cfg.CustomWords[:0]
	for _, word := range cfg.CustomWords {
		trimmed := strings.TrimSpace(word)
		if trimmed == "" {
			warnings = append(warnings, Warning{Message: "ignoring empty custom word"})
			continue
		}
		kept = append(kept, trimmed)
	}
	cfg.CustomWords = kept

	if len(cfg.CustomWords) > 0 && cfg.WordThreshold == 0 {
		warnings = append(warnings, Warning{Message: "custom_words configured but word_threshold=0 disables correction"})
	}

	return warnings, nil
}
