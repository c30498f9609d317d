package logging_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/revlink/pkg/revlink/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    logging.Level
		wantErr bool
	}{
		{"debug", logging.LevelDebug, false},
		{"INFO", logging.LevelInfo, false},
		{"warn", logging.LevelWarn, false},
		{"warning", logging.LevelWarn, false},
		{"error", logging.LevelError, false},
		{"loud", logging.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := logging.ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, logging.ErrInvalidLevel) {
				t.Errorf("ParseLevel(%q) error = %v, want ErrInvalidLevel", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	t.Parallel()

	if got := logging.LevelWarn.String(); got != "warn" {
		t.Errorf("LevelWarn.String() = %q, want %q", got, "warn")
	}
	if got := logging.Level(42).String(); got != "unknown" {
		t.Errorf("Level(42).String() = %q, want %q", got, "unknown")
	}
}

// The tests below modify global state and must not run in parallel.

func TestGet_SilentBeforeInit(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Get("silent-before-init")
	logger.Error("should not appear")

	if err := logging.Init(logging.Config{Level: "debug", Writer: &buf}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() { _ = logging.Close() }()

	if buf.Len() != 0 {
		t.Errorf("buffer = %q, want empty", buf.String())
	}

	logger.Info("after init")
	if !strings.Contains(buf.String(), "after init") {
		t.Errorf("buffer = %q, want message logged after Init", buf.String())
	}
	if !strings.Contains(buf.String(), "silent-before-init") {
		t.Errorf("buffer = %q, want component prefix", buf.String())
	}
}

func TestInit_ComponentLevels(t *testing.T) {
	var buf bytes.Buffer
	cfg := logging.Config{
		Level:      "warn",
		Writer:     &buf,
		Components: map[string]string{"chatty": "debug"},
	}
	if err := logging.Init(cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() { _ = logging.Close() }()

	logging.Get("quiet-component").Info("hidden message")
	logging.Get("chatty").Debug("visible message", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("output %q contains message below component level", out)
	}
	if !strings.Contains(out, "visible message") {
		t.Errorf("output %q missing debug message for overridden component", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("output %q missing structured field", out)
	}
}

func TestInit_InvalidLevels(t *testing.T) {
	if err := logging.Init(logging.Config{Level: "nope"}); !errors.Is(err, logging.ErrInvalidLevel) {
		t.Errorf("Init() error = %v, want ErrInvalidLevel", err)
	}

	cfg := logging.Config{Level: "info", Components: map[string]string{"builder": "nope"}}
	if err := logging.Init(cfg); !errors.Is(err, logging.ErrInvalidLevel) {
		t.Errorf("Init() error = %v, want ErrInvalidLevel", err)
	}
}

func TestInit_FileOutput(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "nested", "revlink.log")

	if err := logging.Init(logging.Config{Level: "info", Writer: &buf, Path: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	logging.Get("file-test").With("run", 1).Info("written to file")

	if err := logging.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file = %q, want message", string(data))
	}
	if !strings.Contains(string(data), "run=1") {
		t.Errorf("log file = %q, want context field", string(data))
	}
}

func TestClose_Idempotent(t *testing.T) {
	if err := logging.Close(); err != nil {
		t.Errorf("Close() without Init error = %v", err)
	}
}
