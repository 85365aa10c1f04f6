package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/murmur/internal/catalog"
	"github.com/rbright/murmur/internal/settings"
)

const doctorManifest = `models:
  - id: parakeet-tdt-0.6b
    name: Parakeet TDT 0.6B
    kind: parakeet
  - id: whisper-base
    kind: whisper
`

func modelsDir(t *testing.T, downloaded bool) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, catalog.ManifestName), []byte(doctorManifest), 0o600))
	if downloaded {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "parakeet-tdt-0.6b"), 0o700))
		require.NoError(t, os.MkdirAll(filepath.Join(root, "whisper-base"), 0o700))
	}
	return root
}

func loadedWith(modelsDir, selected string) settings.Loaded {
	cfg := settings.Default()
	cfg.ModelsDir = modelsDir
	cfg.SelectedModel = selected
	return settings.Loaded{Path: "/tmp/settings.yaml", Settings: cfg, Exists: true}
}

func TestRunAllChecksPass(t *testing.T) {
	t.Parallel()

	report := Run(loadedWith(modelsDir(t, true), "parakeet-tdt-0.6b"))
	require.True(t, report.OK(), report.String())
	require.Contains(t, report.String(), "[OK] selected_model")
}

func TestRunFailsWhenModelNotDownloaded(t *testing.T) {
	t.Parallel()

	report := Run(loadedWith(modelsDir(t, false), "parakeet-tdt-0.6b"))
	require.False(t, report.OK())
	require.Contains(t, report.String(), "not downloaded")
}

func TestRunFailsOnUnsupportedKind(t *testing.T) {
	t.Parallel()

	report := Run(loadedWith(modelsDir(t, true), "whisper-base"))
	require.False(t, report.OK())
	require.Contains(t, report.String(), "whisper")
}

func TestRunFailsOnUnknownModel(t *testing.T) {
	t.Parallel()

	report := Run(loadedWith(modelsDir(t, true), "missing"))
	require.False(t, report.OK())
	require.Contains(t, report.String(), "not present in manifest")
}

func TestRunFailsWithoutModelsDir(t *testing.T) {
	t.Parallel()

	report := Run(loadedWith(filepath.Join(t.TempDir(), "absent"), "parakeet-tdt-0.6b"))
	require.False(t, report.OK())
	require.Contains(t, report.String(), "models_dir")
}

func TestRunFailsOnBrokenManifest(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, catalog.ManifestName), []byte("models: ["), 0o600))
	report := Run(loadedWith(root, "parakeet-tdt-0.6b"))
	require.False(t, report.OK())
}

func TestReportStringFormatsStatuses(t *testing.T) {
	t.Parallel()

	report := Report{Checks: []Check{
		{Name: "a", Pass: true, Message: "fine"},
		{Name: "b", Pass: false, Message: "broken"},
	}}
	require.Equal(t, "[OK] a: fine\n[FAIL] b: broken", report.String())
}
