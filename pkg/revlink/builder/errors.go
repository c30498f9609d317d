package builder

import (
	"errors"
	"fmt"
)

// ErrNoPatterns is returned when Build is called without any glob pattern.
var ErrNoPatterns = errors.New("at least one pattern is required")

// PatternError reports an invalid glob or exclude pattern.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// FileReadError reports a matched file that could not be inspected or read.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// LinkCreationError reports a hashed link that could not be created.
type LinkCreationError struct {
	Path string // original file
	Link string // hashed link path
	Err  error
}

func (e *LinkCreationError) Error() string {
	return fmt.Sprintf("linking %s -> %s: %v", e.Link, e.Path, e.Err)
}

func (e *LinkCreationError) Unwrap() error {
	return e.Err
}
