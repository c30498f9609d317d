package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/revlink/pkg/revlink/config"
)

func (a *app) newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage revlink configuration settings.

Configuration is loaded from:
  1. --config <file> (if given)
  2. $XDG_CONFIG_HOME/revlink/config.yaml

Environment variables can override config file settings using the REVLINK_ prefix:
  REVLINK_ALGORITHM=sha256
  REVLINK_LENGTH=8
  REVLINK_LOGGING_LEVEL=debug`,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Display the effective configuration after merging file, environment and flags.`,
		Args:  cobra.NoArgs,
		RunE:  a.runConfigShow,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the default configuration file.`,
		Args:  cobra.NoArgs,
		RunE:  a.runConfigPath,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long:  `Create a default configuration file if one doesn't exist.`,
		Args:  cobra.NoArgs,
		RunE:  a.runConfigInit,
	})

	return configCmd
}

// runConfigShow displays the effective configuration.
func (a *app) runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	w := a.stdout
	if configFile := a.v.ConfigFileUsed(); configFile != "" && fileExists(configFile) {
		fmt.Fprintf(w, "Config file: %s\n\n", configFile)
	} else {
		fmt.Fprintln(w, "Config file: (using defaults, no file found)")
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintf(w, "relative:             %s\n", cfg.Relative)
	fmt.Fprintf(w, "slash:                %t\n", cfg.Slash)
	fmt.Fprintf(w, "quiet:                %t\n", cfg.Quiet)
	fmt.Fprintf(w, "output:               %s\n", cfg.Output)
	fmt.Fprintf(w, "manifest_file:        %s\n", cfg.ManifestFile)
	fmt.Fprintf(w, "algorithm:            %s\n", cfg.Algorithm)
	fmt.Fprintf(w, "length:               %d\n", cfg.Length)
	fmt.Fprintf(w, "exclude:              %v\n", cfg.Exclude)
	fmt.Fprintf(w, "workers:              %d\n", cfg.Workers)
	fmt.Fprintf(w, "dry_run:              %t\n", cfg.DryRun)
	fmt.Fprintf(w, "logging.level:        %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "logging.path:         %s\n", cfg.Logging.Path)

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	anyOverrides := false
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, config.EnvPrefix+"_") {
			fmt.Fprintln(w, kv)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Fprintln(w, "(none)")
	}

	return nil
}

// runConfigPath shows the config file path.
func (a *app) runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(a.stdout, config.ConfigPath())
	return nil
}

// runConfigInit creates a default config file.
func (a *app) runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := config.ConfigPath()

	written, err := config.WriteDefault(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if !written {
		a.printInfo("Config file already exists: %s", configPath)
		return nil
	}

	a.printInfo("Created default config file: %s", configPath)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
