// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the kanapdf version and build details",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		printVersion(cmd.OutOrStdout(), info)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// printVersion writes the ldflags version, the VCS revision when the binary
// was built from a checkout, and the toolchain and platform.
func printVersion(w io.Writer, info *debug.BuildInfo) {
	fmt.Fprintf(w, "kanapdf %s\n", version)
	if info != nil {
		var rev, modified string
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				rev = s.Value
			case "vcs.modified":
				modified = s.Value
			}
		}
		if rev != "" {
			if modified == "true" {
				rev += " (modified)"
			}
			fmt.Fprintf(w, "  revision: %s\n", rev)
		}
	}
	fmt.Fprintf(w, "  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
