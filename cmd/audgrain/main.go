// SPDX-License-Identifier: EPL-2.0

// Command audgrain plays, records and exports granular renderings of an
// audio file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// set with -ldflags "-X main.version=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "audgrain",
		Short: "Granular synthesis from the command line",
		Long: `audgrain cuts an audio file into short enveloped grains and plays them
back live, records them offline, or exports the decoded file as PCM16 WAV.

Configuration comes from an optional YAML file (--config) overridden by
AUDGRAIN_* environment variables.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "path to a YAML configuration file")

	root.AddCommand(
		newPlayCmd(),
		newRenderCmd(),
		newExportCmd(),
		newPresetCmd(),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "audgrain %s (%s)\n", version, commit)
		},
	}
}
