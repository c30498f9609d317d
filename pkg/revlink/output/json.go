package output

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/revlink/pkg/revlink/manifest"
)

// JSONFormatter writes the manifest as a single JSON object mapping original
// paths to link paths, tab-indented and newline-terminated. Keys are sorted.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	m := r.Manifest
	if m == nil {
		m = manifest.Manifest{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "\t")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(m)
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// jsonlEntry is one line of JSONL output.
type jsonlEntry struct {
	Original string `json:"original"`
	Link     string `json:"link"`
}

// JSONLFormatter formats output as newline-delimited JSON (one object per line).
// This format is suitable for streaming processing with tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, e := range r.Entries() {
		data, err := json.Marshal(jsonlEntry{Original: e.Original, Link: e.Link})
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
