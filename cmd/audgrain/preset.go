// SPDX-License-Identifier: EPL-2.0

package main

import (
	"math/rand/v2"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ik5/audgrain/preset"
)

func newPresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Print a random preset as YAML",
		Long: `preset draws a random parameter set from the configured ranges. The
output can be pasted into the params section of a config file.`,
		Args: cobra.NoArgs,
		RunE: runPreset,
	}

	cmd.Flags().Uint64("seed", 0, "seed for a reproducible preset (0 draws a fresh one)")

	return cmd
}

func runPreset(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	opts := []preset.Option{preset.WithRanges(a.cfg.Preset.Ranges)}
	if seed, _ := cmd.Flags().GetUint64("seed"); seed != 0 {
		opts = append(opts, preset.WithRand(rand.New(rand.NewPCG(seed, seed))))
	}

	gen, err := preset.NewGenerator(opts...)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(gen.Generate()); err != nil {
		return err
	}

	return enc.Close()
}
