// Package linker creates the hashed symbolic links next to their originals.
//
// Links are idempotent: an existing link that already resolves to the
// original is left alone, while anything else occupying the link path is
// reported as a conflict and never overwritten.
package linker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

var (
	// ErrSymlinkUnsupported is returned when the filesystem cannot create or inspect symlinks.
	ErrSymlinkUnsupported = errors.New("filesystem does not support symbolic links")

	// ErrLinkConflict is returned when the link path is occupied by something
	// other than a link to the original file.
	ErrLinkConflict = errors.New("link path already exists and points elsewhere")
)

// Result describes what Ensure did (or, for Check, would do).
type Result int

const (
	// Created means a new link was written.
	Created Result = iota
	// Unchanged means an identical link was already present.
	Unchanged
)

// String returns the string representation of the result.
func (r Result) String() string {
	switch r {
	case Created:
		return "created"
	case Unchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// symlinkFs is the subset of afero a Linker needs beyond afero.Fs.
type symlinkFs interface {
	afero.Linker
	afero.LinkReader
	afero.Lstater
}

// Linker creates relative symbolic links on an afero filesystem.
type Linker struct {
	fs symlinkFs
}

// New returns a Linker for fsys. The filesystem must support symlinks,
// which afero.OsFs does and afero.MemMapFs does not.
func New(fsys afero.Fs) (*Linker, error) {
	sfs, ok := fsys.(symlinkFs)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSymlinkUnsupported, fsys.Name())
	}
	return &Linker{fs: sfs}, nil
}

// IsSymlink reports whether path itself is a symbolic link.
func (l *Linker) IsSymlink(path string) (bool, error) {
	info, err := l.lstat(path)
	if err != nil {
		return false, err
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

// Lstat returns file info for path without following a final symlink.
func (l *Linker) Lstat(path string) (os.FileInfo, error) {
	return l.lstat(path)
}

func (l *Linker) lstat(path string) (os.FileInfo, error) {
	info, lstatCalled, err := l.fs.LstatIfPossible(path)
	if err != nil {
		return nil, err
	}
	if !lstatCalled {
		return nil, fmt.Errorf("%w: lstat %s", ErrSymlinkUnsupported, path)
	}
	return info, nil
}

// Check reports what Ensure would do for original and linkPath without
// touching the filesystem.
func (l *Linker) Check(original, linkPath string) (Result, error) {
	info, err := l.lstat(linkPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Created, nil
		}
		return Created, err
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return Created, fmt.Errorf("%w: %s is not a symlink", ErrLinkConflict, linkPath)
	}

	existing, err := l.fs.ReadlinkIfPossible(linkPath)
	if err != nil {
		return Created, fmt.Errorf("reading existing link: %w", err)
	}

	same, err := sameTarget(existing, original, linkPath)
	if err != nil {
		return Created, err
	}
	if !same {
		return Created, fmt.Errorf("%w: %s -> %s", ErrLinkConflict, linkPath, existing)
	}

	return Unchanged, nil
}

// Ensure makes linkPath a symbolic link to original. The link stores the
// original's path relative to the link's directory.
func (l *Linker) Ensure(original, linkPath string) (Result, error) {
	res, err := l.Check(original, linkPath)
	if err != nil || res == Unchanged {
		return res, err
	}

	target, err := linkTarget(original, linkPath)
	if err != nil {
		return Created, err
	}

	if err := l.fs.SymlinkIfPossible(target, linkPath); err != nil {
		if errors.Is(err, afero.ErrNoSymlink) {
			return Created, fmt.Errorf("%w: %v", ErrSymlinkUnsupported, err)
		}
		if errors.Is(err, fs.ErrExist) {
			// Lost a race with another writer; accept it only if it is our link.
			return l.Check(original, linkPath)
		}
		return Created, err
	}

	return Created, nil
}

// linkTarget returns original relative to the directory holding linkPath.
func linkTarget(original, linkPath string) (string, error) {
	absOriginal, err := filepath.Abs(original)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", original, err)
	}
	absDir, err := filepath.Abs(filepath.Dir(linkPath))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", linkPath, err)
	}
	return filepath.Rel(absDir, absOriginal)
}

// sameTarget reports whether the link content existing, as stored at
// linkPath, resolves to original.
func sameTarget(existing, original, linkPath string) (bool, error) {
	resolved := existing
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(linkPath), resolved)
	}

	absResolved, err := filepath.Abs(resolved)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", resolved, err)
	}
	absOriginal, err := filepath.Abs(original)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", original, err)
	}

	return absResolved == absOriginal, nil
}
