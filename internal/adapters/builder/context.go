package builder

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/baris/shipyard/internal/core/domain"
	"github.com/baris/shipyard/internal/dockerfile"
)

// preflight verifies the three build-time inputs exist before any layer is
// built, so a missing file fails the build up front instead of midway through
// the daemon-side pipeline.
func preflight(spec domain.BuildSpec) error {
	manifest := filepath.Join(spec.ContextDir, spec.Manifest)
	if fi, err := os.Stat(manifest); err != nil || fi.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrManifestMissing, manifest)
	}

	source := filepath.Join(spec.ContextDir, spec.SourceDir)
	if fi, err := os.Stat(source); err != nil || !fi.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrSourceMissing, source)
	}

	envFile := filepath.Join(spec.ContextDir, spec.EnvFile)
	if fi, err := os.Stat(envFile); err != nil || fi.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrEnvFileMissing, envFile)
	}

	return nil
}

// stageContext assembles a flat build context in a fresh temp directory: the
// rendered build instructions plus the manifest, source tree and environment
// file copied under their base names. Files are copied byte-for-byte; in
// particular the environment file is never opened for anything but the copy.
// The caller removes the returned directory.
func stageContext(spec domain.BuildSpec) (string, error) {
	instructions, err := dockerfile.Render(spec)
	if err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "shipyard-build-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging dir: %w", err)
	}

	stage := func() error {
		if err := os.WriteFile(filepath.Join(dir, dockerfile.Name), []byte(instructions), 0o644); err != nil {
			return fmt.Errorf("failed to write build instructions: %w", err)
		}
		if err := copyFile(
			filepath.Join(spec.ContextDir, spec.Manifest),
			filepath.Join(dir, filepath.Base(spec.Manifest)),
		); err != nil {
			return err
		}
		if err := copyTree(
			filepath.Join(spec.ContextDir, spec.SourceDir),
			filepath.Join(dir, filepath.Base(filepath.Clean(spec.SourceDir))),
		); err != nil {
			return err
		}
		return copyFile(
			filepath.Join(spec.ContextDir, spec.EnvFile),
			filepath.Join(dir, filepath.Base(spec.EnvFile)),
		)
	}

	if err := stage(); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

// copyTree copies the regular files and directories under src into dst.
// Symlinks and other irregular entries are skipped; a source tree headed for
// an image should not reach outside itself.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}
