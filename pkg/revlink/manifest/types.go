// Package manifest provides the mapping from original file paths to their
// hashed symlink paths, and the helpers that render and persist it.
package manifest

import "sort"

// Manifest maps an original display path to its hashed-link display path.
type Manifest map[string]string

// Entry is a single original -> link pair.
type Entry struct {
	Original string `json:"original" yaml:"original"`
	Link     string `json:"link" yaml:"link"`
}

// Len returns the number of entries.
func (m Manifest) Len() int {
	return len(m)
}

// Keys returns the original paths sorted lexically.
func (m Manifest) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns the manifest as pairs sorted by original path.
func (m Manifest) Entries() []Entry {
	entries := make([]Entry, 0, len(m))
	for _, k := range m.Keys() {
		entries = append(entries, Entry{Original: k, Link: m[k]})
	}
	return entries
}
