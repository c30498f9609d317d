package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/revlink/pkg/revlink/builder"
)

const wantManifest = "{\n" +
	"\t\"css/app.css\": \"css/app-aa676972bb.css\",\n" +
	"\t\"css/vendor.css\": \"css/vendor-307cc22fa7.css\"\n" +
	"}\n"

// setupAssets writes two stylesheets and isolates the run from any user config.
func setupAssets(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "app.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "vendor.css"), []byte("a{}"), 0o644))
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestExecute_PrintsManifest(t *testing.T) {
	dir := setupAssets(t)

	stdout, stderr, err := run(t, "-r", dir, filepath.Join(dir, "css", "*.css"))
	require.NoError(t, err, stderr)

	assert.Equal(t, wantManifest, stdout)
	assert.Empty(t, stderr, "default log level keeps stderr quiet")

	target, err := os.Readlink(filepath.Join(dir, "css", "app-aa676972bb.css"))
	require.NoError(t, err)
	assert.Equal(t, "app.css", target)
}

func TestExecute_NoPatterns(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	stdout, stderr, err := run(t)
	require.ErrorIs(t, err, builder.ErrNoPatterns)

	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Usage:")
	assert.Contains(t, stderr, "Error: ")
}

func TestExecute_SlashFlag(t *testing.T) {
	dir := setupAssets(t)

	stdout, _, err := run(t, "--relative", dir, "--slash", filepath.Join(dir, "css", "app.css"))
	require.NoError(t, err)

	assert.Equal(t, "{\n\t\"/css/app.css\": \"/css/app-aa676972bb.css\"\n}\n", stdout)
}

func TestExecute_EnvironmentOverride(t *testing.T) {
	dir := setupAssets(t)
	t.Setenv("REVLINK_SLASH", "true")
	t.Setenv("REVLINK_DRY_RUN", "true")

	stdout, _, err := run(t, "-r", dir, filepath.Join(dir, "css", "app.css"))
	require.NoError(t, err)

	assert.Equal(t, "{\n\t\"/css/app.css\": \"/css/app-aa676972bb.css\"\n}\n", stdout)
	_, err = os.Lstat(filepath.Join(dir, "css", "app-aa676972bb.css"))
	assert.True(t, os.IsNotExist(err), "dry run from the environment must not write links")
}

func TestExecute_QuietWithManifestFile(t *testing.T) {
	dir := setupAssets(t)
	manifestPath := filepath.Join(dir, "out", "rev-manifest.json")

	stdout, _, err := run(t, "-q", "-o", "pretty", "--manifest-file", manifestPath,
		"-r", dir, filepath.Join(dir, "css", "*.css"))
	require.NoError(t, err)

	assert.Empty(t, stdout)
	data, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	assert.Equal(t, wantManifest, string(data), "manifest file is always JSON")
}

func TestExecute_OutputFormats(t *testing.T) {
	dir := setupAssets(t)
	pattern := filepath.Join(dir, "css", "*.css")

	stdout, _, err := run(t, "-n", "-o", "plain", "-r", dir, pattern)
	require.NoError(t, err)
	assert.Contains(t, stdout, "ORIGINAL")
	assert.Contains(t, stdout, "css/vendor-307cc22fa7.css")

	stdout, _, err = run(t, "-n", "-o", "template", "--template", "{{range .Entries}}{{.Link}};{{end}}", "-r", dir, pattern)
	require.NoError(t, err)
	assert.Equal(t, "css/app-aa676972bb.css;css/vendor-307cc22fa7.css;", stdout)
}

func TestExecute_TemplateSeesSkipCounts(t *testing.T) {
	dir := setupAssets(t)
	require.NoError(t, os.Symlink("app.css", filepath.Join(dir, "css", "alias.css")))

	stdout, _, err := run(t, "-n", "-e", "**/vendor.css", "-o", "template",
		"--template", "{{.Stats.FilesExcluded}} {{.Stats.SymlinksSkipped}} {{.Stats.OtherSkipped}}",
		filepath.Join(dir, "css", "*.css"))
	require.NoError(t, err)
	assert.Equal(t, "1 1 0", stdout)
}

func TestExecute_UnknownOutputWritesNothing(t *testing.T) {
	dir := setupAssets(t)

	stdout, stderr, err := run(t, "-o", "xml", filepath.Join(dir, "css", "*.css"))
	require.Error(t, err)

	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "unknown formatter")

	entries, err := os.ReadDir(filepath.Join(dir, "css"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestExecute_ConflictFails(t *testing.T) {
	dir := setupAssets(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "app-aa676972bb.css"), []byte("x"), 0o644))

	stdout, stderr, err := run(t, filepath.Join(dir, "css", "app.css"))
	require.Error(t, err)

	var linkErr *builder.LinkCreationError
	assert.ErrorAs(t, err, &linkErr)
	assert.Empty(t, stdout, "nothing is printed on failure")
	assert.True(t, strings.HasPrefix(stderr, "Error: "), stderr)
}

func TestExecute_VerboseLogsToStderr(t *testing.T) {
	dir := setupAssets(t)

	stdout, stderr, err := run(t, "-v", "-r", dir, filepath.Join(dir, "css", "*.css"))
	require.NoError(t, err)

	assert.Equal(t, wantManifest, stdout, "logs never reach stdout")
	assert.Contains(t, stderr, "manifest built")
}

func TestExecute_Version(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "revlink dev")
}

func TestExecute_ConfigCommands(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	configPath := filepath.Join(configHome, "revlink", "config.yaml")

	stdout, _, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, configPath+"\n", stdout)

	stdout, _, err = run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created default config file")
	assert.FileExists(t, configPath)

	stdout, _, err = run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")

	t.Setenv("REVLINK_ALGORITHM", "sha256")
	stdout, _, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Config file: "+configPath)
	assert.Contains(t, stdout, "algorithm:            sha256")
	assert.Contains(t, stdout, "REVLINK_ALGORITHM=sha256")
}
