// Package doctor runs readiness diagnostics for settings, catalog, and model state.
package doctor

import (
	"fmt"
	"os"
	"strings"

	"github.com/rbright/murmur/internal/catalog"
	"github.com/rbright/murmur/internal/engine"
	"github.com/rbright/murmur/internal/settings"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes settings/catalog/model readiness checks for loaded settings.
func Run(loaded settings.Loaded) Report {
	checks := []Check{}

	message := fmt.Sprintf("loaded %q", loaded.Path)
	if !loaded.Exists {
		message = fmt.Sprintf("%q not found, running on defaults", loaded.Path)
	}
	checks = append(checks, Check{Name: "settings", Pass: true, Message: message})

	cfg := loaded.Settings
	checks = append(checks, checkModelsDir(cfg.ModelsDir))

	cat, err := catalog.OpenDirectory(cfg.ModelsDir)
	if err != nil {
		checks = append(checks, Check{Name: "catalog", Pass: false, Message: err.Error()})
		return Report{Checks: checks}
	}
	checks = append(checks, Check{
		Name:    "catalog",
		Pass:    true,
		Message: fmt.Sprintf("%d models in manifest", len(cat.Models())),
	})
	checks = append(checks, checkSelectedModel(cat, cfg.SelectedModel))

	return Report{Checks: checks}
}

// checkModelsDir validates that the models directory exists.
func checkModelsDir(dir string) Check {
	stat, err := os.Stat(dir)
	if err != nil {
		return Check{Name: "models_dir", Pass: false, Message: fmt.Sprintf("not accessible: %v", err)}
	}
	if !stat.IsDir() {
		return Check{Name: "models_dir", Pass: false, Message: fmt.Sprintf("%q is not a directory", dir)}
	}
	return Check{Name: "models_dir", Pass: true, Message: fmt.Sprintf("found %q", dir)}
}

// checkSelectedModel validates the configured model is present, downloaded,
// and of a kind the resident engine supports.
func checkSelectedModel(cat catalog.Catalog, modelID string) Check {
	info, ok := cat.ModelInfo(modelID)
	if !ok {
		return Check{Name: "selected_model", Pass: false, Message: fmt.Sprintf("%q not present in manifest", modelID)}
	}
	if !info.Downloaded {
		return Check{Name: "selected_model", Pass: false, Message: fmt.Sprintf("%q (%s) is not downloaded", modelID, info.Name)}
	}
	if info.Kind != engine.KindParakeet {
		return Check{Name: "selected_model", Pass: false, Message: fmt.Sprintf("%q is a %s model; only %s models can be made resident", modelID, info.Kind, engine.KindParakeet)}
	}
	return Check{Name: "selected_model", Pass: true, Message: fmt.Sprintf("%q (%s) ready", modelID, info.Name)}
}
