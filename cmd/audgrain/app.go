// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audgrain"
	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/export"
	"github.com/ik5/audgrain/grain"
	"github.com/ik5/audgrain/internal/config"
	"github.com/ik5/audgrain/internal/observe"
	"github.com/ik5/audgrain/params"
	"github.com/ik5/audgrain/scheduler"
)

// app is what every command starts from.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	provider *observe.Provider
}

func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
	slog.SetDefault(logger)

	return &app{cfg: cfg, log: logger}, nil
}

// initMetrics sets up the Prometheus bridge when metrics.addr is set.
func (a *app) initMetrics(ctx context.Context) error {
	if a.cfg.Metrics.Addr == "" {
		return nil
	}

	p, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	a.provider = p

	return nil
}

func (a *app) close() {
	if a.provider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.provider.Shutdown(ctx); err != nil {
		a.log.Warn("metrics shutdown", "error", err)
	}
}

// granulator builds a Granulator from the configuration. Files read from
// disk carry no content type, so the MIME check only runs when
// decode.mime_types is configured.
func (a *app) granulator(eng grain.Engine) (*audgrain.Granulator, error) {
	c := a.cfg

	opts := []audgrain.Option{
		audgrain.WithLogger(a.log),
		audgrain.WithParameters(c.Params),
		audgrain.WithSchedulerOptions(
			scheduler.WithPoolLimits(c.Scheduler.MaxVoices, c.Scheduler.EvictBatch),
			scheduler.WithEvictionGrace(c.Scheduler.EvictionGrace),
		),
		audgrain.WithDecodeLimits(audio.Limits{
			Extensions: c.Decode.Extensions,
			MIMETypes:  c.Decode.MIMETypes,
			MaxBytes:   c.Decode.MaxBytes,
		}),
		audgrain.WithSink(export.NewDirSink(c.Export.Dir)),
		audgrain.WithExportSettings(c.Export.Settings),
	}
	if len(c.Preset.Ranges) > 0 {
		opts = append(opts, audgrain.WithPresetRanges(c.Preset.Ranges))
	}
	if a.provider != nil {
		opts = append(opts, audgrain.WithMetrics(a.provider.Metrics))
	}

	return audgrain.New(eng, opts...)
}

// loadFile decodes path into g.
func loadFile(ctx context.Context, g *audgrain.Granulator, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	info := audio.FileInfo{
		Name:     filepath.Base(path),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Size:     st.Size(),
	}

	return g.Load(ctx, info, f)
}

// applySets applies "field=value" pairs from --set.
func applySets(g *audgrain.Granulator, sets []string) error {
	for _, kv := range sets {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--set %q: want field=value", kv)
		}

		f := params.Field(strings.TrimSpace(k))
		if !f.IsValid() {
			return fmt.Errorf("--set %q: %w", kv, params.ErrUnknownField)
		}

		val, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("--set %q: %w", kv, err)
		}
		if err := g.Store().Set(f, val); err != nil {
			return err
		}
	}

	return nil
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("set", nil, "set a grain parameter, e.g. --set density=25 (repeatable)")
	cmd.Flags().Bool("random", false, "start from a random preset")
}

// prepare applies --random and then --set.
func prepare(cmd *cobra.Command, a *app, g *audgrain.Granulator) error {
	if random, _ := cmd.Flags().GetBool("random"); random {
		p, err := g.RandomPreset()
		if err != nil {
			return err
		}
		a.log.Info("random preset",
			"grain_size", p.GrainSize,
			"density", p.Density,
			"pitch_shift", p.PitchShift,
			"playback_rate", p.PlaybackRate,
		)
	}

	sets, _ := cmd.Flags().GetStringArray("set")

	return applySets(g, sets)
}

// serveMetrics serves /metrics on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
