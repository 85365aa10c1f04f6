package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/murmur/internal/engine"
)

const testManifest = `models:
  - id: parakeet-tdt-0.6b
    name: Parakeet TDT 0.6B
    kind: parakeet
  - id: whisper-base
    name: Whisper Base
    kind: whisper
    dir: whisper/base
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestName), []byte(content), 0o600))
	return root
}

func TestOpenDirectoryParsesManifest(t *testing.T) {
	t.Parallel()

	root := writeManifest(t, testManifest)
	dir, err := OpenDirectory(root)
	require.NoError(t, err)

	models := dir.Models()
	require.Len(t, models, 2)
	require.Equal(t, "parakeet-tdt-0.6b", models[0].ID)
	require.Equal(t, engine.KindParakeet, models[0].Kind)
	require.Equal(t, engine.KindWhisper, models[1].Kind)
}

func TestDownloadedReflectsArtifactDirectory(t *testing.T) {
	t.Parallel()

	root := writeManifest(t, testManifest)
	dir, err := OpenDirectory(root)
	require.NoError(t, err)

	info, ok := dir.ModelInfo("parakeet-tdt-0.6b")
	require.True(t, ok)
	require.False(t, info.Downloaded)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "parakeet-tdt-0.6b"), 0o700))
	info, ok = dir.ModelInfo("parakeet-tdt-0.6b")
	require.True(t, ok)
	require.True(t, info.Downloaded)
}

func TestModelPathUsesDirOverride(t *testing.T) {
	t.Parallel()

	root := writeManifest(t, testManifest)
	dir, err := OpenDirectory(root)
	require.NoError(t, err)

	path, err := dir.ModelPath("whisper-base")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "whisper", "base"), path)
}

func TestModelPathUnknownID(t *testing.T) {
	t.Parallel()

	root := writeManifest(t, testManifest)
	dir, err := OpenDirectory(root)
	require.NoError(t, err)

	_, err = dir.ModelPath("nope")
	require.ErrorContains(t, err, "not present in manifest")
}

func TestOpenDirectoryRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	root := writeManifest(t, "models:\n  - id: m\n  - id: m\n")
	_, err := OpenDirectory(root)
	require.ErrorContains(t, err, "duplicate model id")
}

func TestOpenDirectoryRejectsEmptyID(t *testing.T) {
	t.Parallel()

	root := writeManifest(t, "models:\n  - name: unnamed\n")
	_, err := OpenDirectory(root)
	require.ErrorContains(t, err, "empty id")
}

func TestNameDefaultsToID(t *testing.T) {
	t.Parallel()

	root := writeManifest(t, "models:\n  - id: bare\n    kind: parakeet\n")
	dir, err := OpenDirectory(root)
	require.NoError(t, err)

	info, ok := dir.ModelInfo("bare")
	require.True(t, ok)
	require.Equal(t, "bare", info.Name)
}
