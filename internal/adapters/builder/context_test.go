package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baris/shipyard/internal/core/domain"
	"github.com/baris/shipyard/internal/dockerfile"
)

// fixtureSpec lays out a complete build context in a temp dir and returns a
// spec pointing at it.
func fixtureSpec(t *testing.T) domain.BuildSpec {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("fastapi==0.110.0\nuvicorn==0.29.0\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "api"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.py"), []byte("app = object()\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "api", "routes.py"), []byte("routes = []\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("KEY=VALUE\n"), 0o644))

	return domain.BuildSpec{
		Name:       "chat-api",
		BaseImage:  "python:3.11-slim",
		WorkDir:    "/app",
		Manifest:   "requirements.txt",
		SourceDir:  "src",
		EnvFile:    ".env",
		Module:     "src.main:app",
		Port:       3210,
		Workers:    4,
		Tag:        "chat-api:latest",
		ContextDir: dir,
	}
}

func TestPreflight_AllInputsPresent(t *testing.T) {
	t.Parallel()
	require.NoError(t, preflight(fixtureSpec(t)))
}

func TestPreflight_MissingInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		remove  string
		wantErr error
	}{
		{name: "manifest", remove: "requirements.txt", wantErr: domain.ErrManifestMissing},
		{name: "source tree", remove: "src", wantErr: domain.ErrSourceMissing},
		{name: "env file", remove: ".env", wantErr: domain.ErrEnvFileMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec := fixtureSpec(t)
			require.NoError(t, os.RemoveAll(filepath.Join(spec.ContextDir, tt.remove)))
			require.ErrorIs(t, preflight(spec), tt.wantErr)
		})
	}
}

func TestPreflight_SourceMustBeDirectory(t *testing.T) {
	t.Parallel()

	spec := fixtureSpec(t)
	require.NoError(t, os.RemoveAll(filepath.Join(spec.ContextDir, "src")))
	require.NoError(t, os.WriteFile(filepath.Join(spec.ContextDir, "src"), []byte("not a dir"), 0o644))

	require.ErrorIs(t, preflight(spec), domain.ErrSourceMissing)
}

func TestStageContext_LayoutAndInstructions(t *testing.T) {
	t.Parallel()

	spec := fixtureSpec(t)
	dir, err := stageContext(spec)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	instructions, err := os.ReadFile(filepath.Join(dir, dockerfile.Name))
	require.NoError(t, err)
	want, err := dockerfile.Render(spec)
	require.NoError(t, err)
	assert.Equal(t, want, string(instructions))

	assert.FileExists(t, filepath.Join(dir, "requirements.txt"))
	assert.FileExists(t, filepath.Join(dir, "src", "main.py"))
	assert.FileExists(t, filepath.Join(dir, "src", "api", "routes.py"))
	assert.FileExists(t, filepath.Join(dir, ".env"))
}

func TestStageContext_EnvFileCopiedVerbatim(t *testing.T) {
	t.Parallel()

	spec := fixtureSpec(t)
	// Deliberately not valid KEY=VALUE syntax; the pipeline must not care.
	raw := []byte("# opaque\nKEY=VALUE\n\x00binary noise")
	require.NoError(t, os.WriteFile(filepath.Join(spec.ContextDir, ".env"), raw, 0o644))

	dir, err := stageContext(spec)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	staged, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, raw, staged)
}

func TestStageContext_NestedInputPathsFlattened(t *testing.T) {
	t.Parallel()

	spec := fixtureSpec(t)
	require.NoError(t, os.MkdirAll(filepath.Join(spec.ContextDir, "deploy"), 0o755))
	require.NoError(t, os.Rename(
		filepath.Join(spec.ContextDir, "requirements.txt"),
		filepath.Join(spec.ContextDir, "deploy", "requirements.txt"),
	))
	spec.Manifest = "deploy/requirements.txt"

	dir, err := stageContext(spec)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	assert.FileExists(t, filepath.Join(dir, "requirements.txt"))
	assert.NoDirExists(t, filepath.Join(dir, "deploy"))
}

func TestStageContext_SkipsSymlinks(t *testing.T) {
	t.Parallel()

	spec := fixtureSpec(t)
	outside := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(outside, []byte("nope"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(spec.ContextDir, "src", "link")))

	dir, err := stageContext(spec)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	_, err = os.Lstat(filepath.Join(dir, "src", "link"))
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, filepath.Join(dir, "src", "main.py"))
}

func TestStageContext_InvalidSpecNoStaging(t *testing.T) {
	t.Parallel()

	spec := fixtureSpec(t)
	spec.BaseImage = "python:latest"

	_, err := stageContext(spec)
	require.ErrorIs(t, err, domain.ErrUnpinnedBaseImage)
}
