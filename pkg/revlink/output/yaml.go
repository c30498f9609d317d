package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/revlink/pkg/revlink/manifest"
)

// YAMLFormatter formats the manifest as a YAML mapping.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	m := r.Manifest
	if m == nil {
		m = manifest.Manifest{}
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(map[string]string(m)); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
