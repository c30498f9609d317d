package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/revlink/pkg/revlink/builder"
	"github.com/jamesainslie/revlink/pkg/revlink/config"
	"github.com/jamesainslie/revlink/pkg/revlink/hasher"
	"github.com/jamesainslie/revlink/pkg/revlink/logging"
	"github.com/jamesainslie/revlink/pkg/revlink/manifest"
	"github.com/jamesainslie/revlink/pkg/revlink/output"
)

// runBuild links every file matched by args and prints the manifest.
func (a *app) runBuild(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		// Help goes to stderr so stdout stays reserved for manifests.
		fmt.Fprint(a.stderr, cmd.UsageString())
		return builder.ErrNoPatterns
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}

	if err := initLogging(cfg, a); err != nil {
		return err
	}
	log := logging.Get("cli")

	// Resolve the formatter before touching the filesystem so a bad
	// --output value does not leave links behind.
	formatter, err := a.formatter(cfg)
	if err != nil {
		return err
	}

	algorithm, err := hasher.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return err
	}

	opts := builder.Options{
		RelativeBase: cfg.Relative,
		PrependSlash: cfg.Slash,
		Exclude:      cfg.Exclude,
		Algorithm:    algorithm,
		HashLength:   cfg.Length,
		DryRun:       cfg.DryRun,
		Workers:      cfg.Workers,
	}
	log.Debug("starting build", "patterns", args, "options", opts.String())

	b, err := builder.New(opts)
	if err != nil {
		return err
	}

	report, err := b.Run(cmd.Context(), args)
	if err != nil {
		return err
	}

	result := &output.Result{
		Manifest:  report.Manifest,
		Stats:     toOutputStats(report.Stats),
		Algorithm: string(algorithm),
		DryRun:    cfg.DryRun,
	}

	if cfg.ManifestFile != "" {
		if err := writeManifestFile(cfg.ManifestFile, result); err != nil {
			return err
		}
		log.Info("wrote manifest file", "path", cfg.ManifestFile, "entries", result.Manifest.Len())
	}

	if cfg.Quiet {
		return nil
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	_, err = a.stdout.Write(buf.Bytes())
	return err
}

// formatter returns the configured output formatter.
func (a *app) formatter(cfg *config.Config) (output.Formatter, error) {
	formatter, err := output.Get(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %v)", err, output.Available())
	}
	if tf, ok := formatter.(*output.TemplateFormatter); ok && cfg.Template != "" {
		tf.SetTemplate(cfg.Template)
	}
	return formatter, nil
}

// writeManifestFile stores the JSON manifest at path regardless of the
// stdout format.
func writeManifestFile(path string, result *output.Result) error {
	formatter, err := output.Get(output.DefaultFormat)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("formatting manifest: %w", err)
	}
	if err := manifest.WriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing manifest file: %w", err)
	}
	return nil
}

// initLogging routes component loggers to stderr (and the optional log file).
func initLogging(cfg *config.Config, a *app) error {
	level := cfg.Logging.Level
	if cfg.Verbose {
		level = logging.LevelDebug.String()
	}
	return logging.Init(logging.Config{
		Level:      level,
		Components: cfg.Logging.Components,
		Writer:     a.stderr,
		Path:       cfg.Logging.Path,
	})
}

func toOutputStats(s builder.Stats) output.Stats {
	return output.Stats{
		FilesMatched:    s.FilesMatched,
		FilesExcluded:   s.FilesExcluded,
		FilesHashed:     s.FilesHashed,
		SymlinksSkipped: s.SymlinksSkipped,
		OtherSkipped:    s.OtherSkipped,
		LinksCreated:    s.LinksCreated,
		LinksUnchanged:  s.LinksUnchanged,
		BytesHashed:     s.BytesHashed,
		Duration:        s.Duration,
	}
}
