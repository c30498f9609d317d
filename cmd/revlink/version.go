package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build-time variables set by goreleaser or go build -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Display the version, commit hash, and build date of revlink.`,
		Args:  cobra.NoArgs,
		Run:   a.runVersion,
	}
}

// runVersion prints version information.
func (a *app) runVersion(cmd *cobra.Command, args []string) {
	fmt.Fprintf(a.stdout, "revlink %s\n", version)
	fmt.Fprintf(a.stdout, "  commit:  %s\n", commit)
	fmt.Fprintf(a.stdout, "  built:   %s\n", date)
	fmt.Fprintf(a.stdout, "  go:      %s\n", runtime.Version())
	fmt.Fprintf(a.stdout, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
