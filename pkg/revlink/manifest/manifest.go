package manifest

import (
	"fmt"
	"os"
	"path/filepath"
)

// DisplayOptions controls how paths are written into the manifest.
type DisplayOptions struct {
	// RelativeBase, when set, rewrites paths relative to this directory.
	RelativeBase string

	// PrependSlash prefixes every path with "/".
	PrependSlash bool
}

// DisplayPath renders path for the manifest. Rewriting only affects what is
// recorded; file I/O always uses the real path. Output uses forward slashes.
func DisplayPath(path string, opts DisplayOptions) (string, error) {
	display := path
	if opts.RelativeBase != "" {
		rel, err := relative(opts.RelativeBase, path)
		if err != nil {
			return "", fmt.Errorf("making %s relative to %s: %w", path, opts.RelativeBase, err)
		}
		display = rel
	}

	display = filepath.ToSlash(display)
	if opts.PrependSlash {
		display = "/" + display
	}
	return display, nil
}

// relative is filepath.Rel with a fallback to absolute paths when exactly
// one of base and path is absolute.
func relative(base, path string) (string, error) {
	if filepath.IsAbs(base) == filepath.IsAbs(path) {
		return filepath.Rel(base, path)
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Rel(absBase, absPath)
}

// WriteFile atomically writes data to path using a temp file and rename.
// Missing parent directories are created.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// Cleanup temp file on rename failure
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
