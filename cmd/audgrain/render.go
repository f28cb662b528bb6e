// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audgrain/engine/offline"
	"github.com/ik5/audgrain/internal/config"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Record grains of a file offline and export the result",
		Long: `render runs the grain clock for --seconds against the offline engine and
exports what it recorded using the export settings. Rendering happens in
real time.`,
		Args: cobra.ExactArgs(1),
		RunE: runRender,
	}

	addParamFlags(cmd)
	cmd.Flags().Duration("seconds", 5*time.Second, "how long to record")
	cmd.Flags().String("filename", "", "artifact name without extension")

	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	d, _ := cmd.Flags().GetDuration("seconds")
	if d <= 0 {
		return errors.New("--seconds must be positive")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.initMetrics(ctx); err != nil {
		return err
	}

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

	if name, _ := cmd.Flags().GetString("filename"); name != "" {
		if err := g.SetExportFilename(name); err != nil {
			return err
		}
	}

	if err := loadFile(ctx, g, args[0]); err != nil {
		return err
	}
	if err := prepare(cmd, a, g); err != nil {
		return err
	}

	a.log.Info("rendering", "file", args[0], "seconds", d.Seconds())
	if err := a.perform(ctx, g, d); err != nil {
		return err
	}

	return exportRecording(context.Background(), cmd, g, eng.(*offline.Engine))
}
