package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/revlink/pkg/revlink/logging"
)

// app holds the state shared by the root command and its subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	stdout  io.Writer
	stderr  io.Writer
}

// newRootCmd builds the command tree. Output goes to stdout and stderr so
// tests can capture it.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		stdout: stdout,
		stderr: stderr,
	}

	rootCmd := &cobra.Command{
		Use:   "revlink [flags] <pattern>...",
		Short: "Create content-hashed symlinks and print a manifest",
		Long: `Revlink creates a "{name}-{hash}{ext}" symbolic link next to every file
matched by the given glob patterns and prints a JSON manifest mapping each
original path to its hashed link.

Links are relative and idempotent: running revlink twice leaves existing
links alone, and symlinks matched by a pattern are skipped.

Examples:
  revlink 'dist/**/*.css'                 # Link every stylesheet under dist
  revlink -r dist -s 'dist/**/*.{js,css}' # Manifest paths like /js/app.js
  revlink -q --manifest-file rev.json 'public/*'
  revlink -n -o pretty 'assets/**'        # Preview without writing links
  revlink config show                     # Show configuration`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runBuild,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ~/.config/revlink/config.yaml)")
	flags.StringP("relative", "r", "", "make manifest paths relative to this directory")
	flags.BoolP("quiet", "q", false, "do not print the manifest")
	flags.BoolP("slash", "s", false, "prefix manifest paths with a slash")
	flags.StringP("output", "o", "", "output format (json, jsonl, yaml, plain, paths, pretty, template)")
	flags.String("template", "", "Go template for --output template")
	flags.String("manifest-file", "", "also write the JSON manifest to this file")
	flags.StringP("algorithm", "a", "", "hash algorithm (md5, sha1, sha256, xxhash)")
	flags.IntP("length", "l", 0, "hex characters of the hash kept in link names")
	flags.StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	flags.BoolP("dry-run", "n", false, "compute the manifest without writing links")
	flags.IntP("workers", "w", 0, "concurrent hashing workers")
	flags.BoolP("verbose", "v", false, "debug output on stderr")

	// Bind flags to viper; unset flags fall through to env, file, then defaults.
	for key, flag := range map[string]string{
		"relative":      "relative",
		"quiet":         "quiet",
		"slash":         "slash",
		"output":        "output",
		"template":      "template",
		"manifest_file": "manifest-file",
		"algorithm":     "algorithm",
		"length":        "length",
		"exclude":       "exclude",
		"dry_run":       "dry-run",
		"workers":       "workers",
		"verbose":       "verbose",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(a.newVersionCmd())
	rootCmd.AddCommand(a.newConfigCmd())

	return rootCmd
}

// Execute runs the root command against the process arguments.
func Execute() error {
	return execute(os.Args[1:], os.Stdout, os.Stderr)
}

// execute runs the command tree with args and reports failures on stderr.
func execute(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() { _ = logging.Close() }()

	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(stderr, "%v", err)
		return err
	}
	return nil
}

// printInfo prints a message to stdout unless quiet mode is enabled.
func (a *app) printInfo(format string, args ...interface{}) {
	if !a.v.GetBool("quiet") {
		fmt.Fprintf(a.stdout, format+"\n", args...)
	}
}

// printError prints an error message to w.
func printError(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "Error: "+format+"\n", args...)
}
