package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/jamesainslie/revlink/pkg/revlink/hasher"
	"github.com/jamesainslie/revlink/pkg/revlink/logging"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// Config represents the application configuration.
type Config struct {
	Relative     string        `mapstructure:"relative"`
	Slash        bool          `mapstructure:"slash"`
	Quiet        bool          `mapstructure:"quiet"`
	Output       string        `mapstructure:"output"`
	Template     string        `mapstructure:"template"`
	ManifestFile string        `mapstructure:"manifest_file"`
	Algorithm    string        `mapstructure:"algorithm"`
	Length       int           `mapstructure:"length"`
	Exclude      []string      `mapstructure:"exclude"`
	Workers      int           `mapstructure:"workers"`
	DryRun       bool          `mapstructure:"dry_run"`
	Verbose      bool          `mapstructure:"verbose"`
	Logging      LoggingConfig `mapstructure:"logging"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("relative", "")
	v.SetDefault("slash", false)
	v.SetDefault("quiet", false)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("template", "")
	v.SetDefault("manifest_file", "")
	v.SetDefault("algorithm", DefaultAlgorithm)
	v.SetDefault("length", DefaultLength)
	v.SetDefault("exclude", []string{})
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("dry_run", false)
	v.SetDefault("verbose", false)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.components", map[string]string{})
}

// Load reads configuration into v and returns the decoded Config.
//
// When cfgFile is empty, config.yaml is looked up in:
//   - $XDG_CONFIG_HOME/revlink/
//   - the platform config directory reported by xdg
//
// Environment variables are prefixed with REVLINK_ (e.g., REVLINK_ALGORITHM).
// A missing config file is not an error; a malformed one is.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks option values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if _, err := hasher.ParseAlgorithm(c.Algorithm); err != nil {
		return fmt.Errorf("invalid algorithm: %w", err)
	}
	if c.Length < 0 {
		return fmt.Errorf("invalid length %d: must not be negative", c.Length)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d: must not be negative", c.Workers)
	}
	if c.Logging.Level != "" {
		if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("invalid logging.level: %w", err)
		}
	}
	return nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName)
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultConfig is the template written by WriteDefault.
const defaultConfig = `# revlink configuration
#
# Every key can also be set with a REVLINK_ environment variable
# (e.g. REVLINK_ALGORITHM=sha256) or the matching command-line flag.

# Rewrite manifest paths relative to this directory
relative: ""

# Prefix every manifest path with "/"
slash: false

# Manifest format written to stdout: json, jsonl, yaml, plain, paths, pretty, template
output: %s

# Go text/template used when output is "template"
template: ""

# Also write the manifest to this file (atomically)
manifest_file: ""

# Content hash: md5, sha1, sha256, xxhash
algorithm: %s

# Hex characters of the digest kept in link names
length: %d

# Glob patterns of matched paths to leave alone
exclude: []

# Concurrent hashing workers
workers: %d

logging:
  # Log level on stderr: debug, info, warn, error
  level: %s
  # Optional log file
  path: ""
  # Per-component log levels
  components: {}
`

// WriteDefault writes a default config file at path if none exists and
// reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(defaultConfig, DefaultOutput, DefaultAlgorithm, DefaultLength, DefaultWorkers, DefaultLogLevel)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}

	return true, nil
}
