package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/revlink/pkg/revlink/manifest"
)

func sampleResult() *Result {
	return &Result{
		Manifest: manifest.Manifest{
			"css/vendor.css": "css/vendor-307cc22fa7.css",
			"css/app.css":    "css/app-aa676972bb.css",
		},
		Stats: Stats{
			FilesMatched:   2,
			FilesHashed:    2,
			LinksCreated:   1,
			LinksUnchanged: 1,
			BytesHashed:    9,
			Duration:       12 * time.Millisecond,
		},
		Algorithm: "md5",
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("b", func() Formatter { return &PlainFormatter{} })
	r.Register("a", func() Formatter { return &JSONFormatter{} })

	assert.Equal(t, []string{"a", "b"}, r.Available())

	f, err := r.Get("a")
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)

	_, err = r.Get("missing")
	assert.EqualError(t, err, "unknown formatter: missing")
}

func TestDefaultRegistry_HasBuiltins(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"json", "jsonl", "yaml", "plain", "paths", "pretty", "template"} {
		_, err := Get(name)
		assert.NoError(t, err, name)
	}
	assert.Contains(t, Available(), DefaultFormat)
}

func TestJSONFormatter_TabIndentedObject(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, sampleResult()))

	want := "{\n" +
		"\t\"css/app.css\": \"css/app-aa676972bb.css\",\n" +
		"\t\"css/vendor.css\": \"css/vendor-307cc22fa7.css\"\n" +
		"}\n"
	assert.Equal(t, want, buf.String())
}

func TestJSONFormatter_EmptyManifest(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, &Result{}))
	assert.Equal(t, "{}\n", buf.String())
}

func TestJSONFormatter_DoesNotEscapeHTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &Result{Manifest: manifest.Manifest{"a&b.css": "a&b-1.css"}}
	require.NoError(t, (&JSONFormatter{}).Format(&buf, r))
	assert.Contains(t, buf.String(), `"a&b.css": "a&b-1.css"`)
}

func TestJSONLFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&JSONLFormatter{}).Format(&buf, sampleResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "css/app.css", first["original"])
	assert.Equal(t, "css/app-aa676972bb.css", first["link"])
}

func TestYAMLFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, sampleResult()))

	var parsed map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, map[string]string(sampleResult().Manifest), parsed)
}

func TestPlainFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, sampleResult()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ORIGINAL"))
	assert.Contains(t, lines[1], "css/app.css")
	assert.Contains(t, lines[1], "css/app-aa676972bb.css")
	assert.Contains(t, lines[2], "css/vendor.css")
}

func TestPathsFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&PathsFormatter{}).Format(&buf, sampleResult()))
	assert.Equal(t, "css/app-aa676972bb.css\ncss/vendor-307cc22fa7.css\n", buf.String())
}

func TestPrettyFormatter(t *testing.T) {
	t.Parallel()

	t.Run("lists entries and counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, (&PrettyFormatter{}).Format(&buf, sampleResult()))

		out := buf.String()
		assert.Contains(t, out, "ORIGINAL")
		assert.Contains(t, out, "css/app.css")
		assert.Contains(t, out, "css/vendor-307cc22fa7.css")
		assert.Contains(t, out, "md5")
		assert.Contains(t, out, "9 B")
		assert.NotContains(t, out, "Dry run")
	})

	t.Run("skip counts shown when non-zero", func(t *testing.T) {
		t.Parallel()

		r := sampleResult()
		r.Stats.FilesExcluded = 3
		r.Stats.OtherSkipped = 1

		var buf bytes.Buffer
		require.NoError(t, (&PrettyFormatter{}).Format(&buf, r))

		out := buf.String()
		assert.Contains(t, out, "Excluded:")
		assert.Contains(t, out, "Skipped other:")

		buf.Reset()
		require.NoError(t, (&PrettyFormatter{}).Format(&buf, sampleResult()))
		assert.NotContains(t, buf.String(), "Excluded:")
	})

	t.Run("empty dry run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, (&PrettyFormatter{}).Format(&buf, &Result{DryRun: true}))

		out := buf.String()
		assert.Contains(t, out, "No files matched")
		assert.Contains(t, out, "Dry run")
	})
}

func TestTemplateFormatter(t *testing.T) {
	t.Parallel()

	t.Run("default template", func(t *testing.T) {
		t.Parallel()

		f, err := Get("template")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, f.Format(&buf, sampleResult()))
		assert.Equal(t, "css/app.css css/app-aa676972bb.css\ncss/vendor.css css/vendor-307cc22fa7.css\n", buf.String())
	})

	t.Run("custom template with funcs", func(t *testing.T) {
		t.Parallel()

		f := NewTemplateFormatter(`{{len .Entries}} files, {{bytes .Stats.BytesHashed}}`)
		var buf bytes.Buffer
		require.NoError(t, f.Format(&buf, sampleResult()))
		assert.Equal(t, "2 files, 9 B", buf.String())

		f.SetTemplate(`{{.Stats.FilesExcluded}}/{{.Stats.OtherSkipped}}`)
		r := sampleResult()
		r.Stats.FilesExcluded = 2
		r.Stats.OtherSkipped = 1
		buf.Reset()
		require.NoError(t, f.Format(&buf, r))
		assert.Equal(t, "2/1", buf.String())

		f.SetTemplate(`{{.Algorithm}}`)
		buf.Reset()
		require.NoError(t, f.Format(&buf, sampleResult()))
		assert.Equal(t, "md5", buf.String())
	})

	t.Run("invalid template", func(t *testing.T) {
		t.Parallel()

		f := NewTemplateFormatter(`{{.Nope`)
		var buf bytes.Buffer
		assert.Error(t, f.Format(&buf, sampleResult()))
	})
}
