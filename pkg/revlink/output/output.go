// Package output provides formatters for rendering a revlink manifest
// in various output formats (json, yaml, plain, pretty, template).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("json")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    return err
//	}
//	os.Stdout.Write(buf.Bytes())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/revlink/pkg/revlink/manifest"
)

// DefaultFormat is the formatter used when none is requested.
const DefaultFormat = "json"

// Stats contains statistics about a run.
type Stats struct {
	// FilesMatched is the number of unique paths the patterns matched.
	FilesMatched int `json:"files_matched" yaml:"files_matched"`

	// FilesExcluded is the number of matches dropped by exclude patterns.
	FilesExcluded int `json:"files_excluded" yaml:"files_excluded"`

	// FilesHashed is the number of regular files that were fingerprinted.
	FilesHashed int `json:"files_hashed" yaml:"files_hashed"`

	// SymlinksSkipped is the number of matches skipped because they were symlinks.
	SymlinksSkipped int `json:"symlinks_skipped" yaml:"symlinks_skipped"`

	// OtherSkipped is the number of matches skipped because they were not
	// regular files (fifos, sockets, devices).
	OtherSkipped int `json:"other_skipped" yaml:"other_skipped"`

	// LinksCreated is the number of new hashed links written.
	LinksCreated int `json:"links_created" yaml:"links_created"`

	// LinksUnchanged is the number of hashed links that already existed.
	LinksUnchanged int `json:"links_unchanged" yaml:"links_unchanged"`

	// BytesHashed is the total size of the fingerprinted content.
	BytesHashed int64 `json:"bytes_hashed" yaml:"bytes_hashed"`

	// Duration is the total time taken by the run.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Result contains the complete output data for formatting.
type Result struct {
	// Manifest maps original display paths to hashed-link display paths.
	Manifest manifest.Manifest

	// Stats contains run statistics.
	Stats Stats

	// Algorithm is the hash algorithm that produced the fingerprints.
	Algorithm string

	// DryRun indicates that no links were written.
	DryRun bool
}

// Entries returns the manifest entries sorted by original path.
func (r *Result) Entries() []manifest.Entry {
	return r.Manifest.Entries()
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
