// Package config provides configuration management for revlink.
package config

// Default configuration values for revlink.
const (
	// DefaultOutput is the manifest format written to stdout.
	DefaultOutput = "json"

	// DefaultAlgorithm is the content hash algorithm.
	DefaultAlgorithm = "md5"

	// DefaultLength is the number of hex characters of the digest kept in filenames.
	DefaultLength = 10

	// DefaultWorkers is the number of concurrent hashing workers.
	DefaultWorkers = 1

	// DefaultLogLevel is the stderr log level when --verbose is not given.
	DefaultLogLevel = "warn"

	// EnvPrefix prefixes environment variable overrides (REVLINK_ALGORITHM, ...).
	EnvPrefix = "REVLINK"

	// AppName names the configuration directory.
	AppName = "revlink"
)
