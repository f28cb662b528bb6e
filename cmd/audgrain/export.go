// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ik5/audgrain/export"
	"github.com/ik5/audgrain/internal/config"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Decode a file and write it out as PCM16 WAV",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}

	cmd.Flags().String("format", "", "export format (wav, mp3)")
	cmd.Flags().Int("bit-rate", 0, "MP3 bit rate in kbps")
	cmd.Flags().String("filename", "", "artifact name without extension")
	cmd.Flags().String("out", "", "output directory")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		a.cfg.Export.Dir = out
	}

	// the offline engine never runs here; the granulator needs one
	eng, err := a.newEngine(config.EngineOffline)
	if err != nil {
		return err
	}
	defer eng.Close()

	g, err := a.granulator(eng)
	if err != nil {
		return err
	}
	defer g.Close()

	if f, _ := cmd.Flags().GetString("format"); f != "" {
		if err := g.SetExportFormat(export.Format(f)); err != nil {
			return err
		}
	}
	if br, _ := cmd.Flags().GetInt("bit-rate"); br != 0 {
		if err := g.SetExportBitRate(br); err != nil {
			return err
		}
	}
	if name, _ := cmd.Flags().GetString("filename"); name != "" {
		if err := g.SetExportFilename(name); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if err := loadFile(ctx, g, args[0]); err != nil {
		return err
	}

	art, err := g.Export(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", art.Location, art.Size)

	return nil
}
