// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audgrain"
	"github.com/ik5/audgrain/engine/offline"
	"github.com/ik5/audgrain/engine/oto"
	"github.com/ik5/audgrain/grain"
	"github.com/ik5/audgrain/internal/config"
)

type closingEngine interface {
	grain.Engine
	Close() error
}

func (a *app) newEngine(kind config.EngineKind) (closingEngine, error) {
	e := a.cfg.Engine

	if kind == config.EngineOffline {
		return offline.New(e.SampleRate, e.Channels, offline.WithLogger(a.log))
	}

	return oto.New(
		oto.WithSampleRate(e.SampleRate),
		oto.WithChannels(e.Channels),
		oto.WithBaseVoice(e.BaseVoice),
		oto.WithLogger(a.log),
	)
}

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play grains of a file until interrupted",
		Long: `play loads a file and plays grains through the configured engine until
SIGINT, SIGTERM or --duration. With engine.kind=offline nothing is heard;
the recording is exported when playback ends.`,
		Args: cobra.ExactArgs(1),
		RunE: runPlay,
	}

	addParamFlags(cmd)
	cmd.Flags().Duration("duration", 0, "stop after this long (0 plays until interrupted)")

	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
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

	eng, err := a.newEngine(a.cfg.Engine.Kind)
	if err != nil {
		return err
	}
	defer eng.Close()

	g, err := a.granulator(eng)
	if err != nil {
		return err
	}
	defer g.Close()

	if err := loadFile(ctx, g, args[0]); err != nil {
		return err
	}
	if err := prepare(cmd, a, g); err != nil {
		return err
	}

	d, _ := cmd.Flags().GetDuration("duration")
	a.log.Info("playing", "file", args[0], "engine", a.cfg.Engine.Kind, "duration", d)

	if err := a.perform(ctx, g, d); err != nil {
		return err
	}

	rec, ok := eng.(*offline.Engine)
	if !ok {
		return nil
	}

	return exportRecording(context.Background(), cmd, g, rec)
}

// perform plays g until ctx is done or d has passed, serving metrics
// alongside when enabled.
func (a *app) perform(ctx context.Context, g *audgrain.Granulator, d time.Duration) error {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	if err := g.Start(); err != nil {
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)
	if a.provider != nil {
		eg.Go(func() error {
			return serveMetrics(egCtx, a.cfg.Metrics.Addr, a.provider.Handler(), a.log)
		})
	}
	eg.Go(func() error {
		<-egCtx.Done()
		g.Stop()
		return nil
	})

	return eg.Wait()
}

func exportRecording(ctx context.Context, cmd *cobra.Command, g *audgrain.Granulator, rec *offline.Engine) error {
	buf, err := rec.Render()
	if err != nil {
		return err
	}

	art, err := g.ExportBuffer(ctx, buf)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes, %.2f s)\n", art.Location, art.Size, buf.Duration())

	return nil
}
