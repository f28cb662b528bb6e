// SPDX-License-Identifier: EPL-2.0

package audgrain

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/export"
	"github.com/ik5/audgrain/formats/aiff"
	"github.com/ik5/audgrain/formats/mp3"
	"github.com/ik5/audgrain/formats/vorbis"
	"github.com/ik5/audgrain/formats/wav"
	"github.com/ik5/audgrain/grain"
	"github.com/ik5/audgrain/params"
	"github.com/ik5/audgrain/preset"
	"github.com/ik5/audgrain/scheduler"
)

// NewDefaultRegistry registers every decoder in formats/.
func NewDefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})

	return reg
}

// Granulator owns one loaded sample, its parameters and the grain clock
// that plays it. All methods are safe for concurrent use.
type Granulator struct {
	log      *slog.Logger
	metrics  Metrics
	store    *params.Store
	sched    *scheduler.Scheduler
	gen      *preset.Generator
	exporter *export.Exporter
	decoders *audio.Registry
	limits   audio.Limits

	mu       sync.Mutex
	settings export.Settings
}

// New builds a Granulator that plays grains through engine. It is stopped
// and holds no audio.
func New(engine grain.Engine, opts ...Option) (*Granulator, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}

	o := options{
		log:      slog.Default(),
		params:   params.Defaults(),
		decoders: NewDefaultRegistry(),
		settings: export.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.settings.Validate(); err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}

	store, err := params.NewStore(o.params)
	if err != nil {
		return nil, fmt.Errorf("initial parameters: %w", err)
	}

	var genOpts []preset.Option
	if o.ranges != nil {
		genOpts = append(genOpts, preset.WithRanges(o.ranges))
	}
	if o.presetRng != nil {
		genOpts = append(genOpts, preset.WithRand(o.presetRng))
	}
	gen, err := preset.NewGenerator(genOpts...)
	if err != nil {
		return nil, fmt.Errorf("preset ranges: %w", err)
	}

	if o.sink == nil {
		o.sink = export.NewDirSink(".")
	}
	expOpts := []export.Option{export.WithLogger(o.log)}
	if o.encoders != nil {
		expOpts = append(expOpts, export.WithEncoders(o.encoders))
	}
	if o.metrics != nil {
		expOpts = append(expOpts, export.WithMetrics(o.metrics))
	}
	exporter, err := export.NewExporter(o.sink, expOpts...)
	if err != nil {
		return nil, err
	}

	schedOpts := []scheduler.Option{scheduler.WithLogger(o.log)}
	if o.metrics != nil {
		schedOpts = append(schedOpts, scheduler.WithMetrics(o.metrics))
	}
	sched, err := scheduler.New(store, engine, append(schedOpts, o.sched...)...)
	if err != nil {
		return nil, err
	}

	return &Granulator{
		log:      o.log,
		metrics:  o.metrics,
		store:    store,
		sched:    sched,
		gen:      gen,
		exporter: exporter,
		decoders: o.decoders,
		limits:   limitsFor(o.decoders, o.limits),
		settings: o.settings,
	}, nil
}

func limitsFor(reg *audio.Registry, custom *audio.Limits) audio.Limits {
	if custom == nil {
		return audio.DefaultLimits(reg)
	}

	l := *custom
	if len(l.Extensions) == 0 {
		l.Extensions = reg.Formats()
	}
	if l.MaxBytes <= 0 {
		l.MaxBytes = audio.DefaultMaxBytes
	}

	return l
}

// Load stops playback, then validates and decodes r. The previous sample
// stays loaded when decoding fails.
func (g *Granulator) Load(ctx context.Context, info audio.FileInfo, r io.Reader) error {
	g.sched.Stop()

	start := time.Now()
	buf, err := audio.Decode(ctx, g.decoders, g.limits, info, r)
	if g.metrics != nil {
		g.metrics.DecodeDone(ctx, info.Extension(), time.Since(start), err)
	}
	if err != nil {
		g.log.Warn("load failed", "file", info.Name, "error", err)
		return err
	}

	return g.LoadBuffer(buf)
}

// LoadBuffer replaces the sample with an already decoded buffer. Playback
// is stopped first.
func (g *Granulator) LoadBuffer(buf *audio.Buffer) error {
	if buf == nil {
		return ErrNoAudio
	}
	if err := g.sched.SetBuffer(buf); err != nil {
		return err
	}

	g.log.Info("audio loaded",
		"sample_rate", buf.SampleRate(),
		"channels", buf.NumChannels(),
		"duration", buf.Duration(),
	)

	return nil
}

// Start begins playback. It is a no-op while playing or before any
// audio is loaded.
func (g *Granulator) Start() error {
	return g.sched.Start()
}

// Stop ends playback and releases every sounding grain.
func (g *Granulator) Stop() { g.sched.Stop() }

func (g *Granulator) IsPlaying() bool { return g.sched.IsPlaying() }

// ActiveVoices is the number of grains in the voice pool.
func (g *Granulator) ActiveVoices() int { return g.sched.ActiveCount() }

// Duration of the loaded sample in seconds, 0 when nothing is loaded.
func (g *Granulator) Duration() float64 {
	if buf := g.sched.Buffer(); buf != nil {
		return buf.Duration()
	}

	return 0
}

// Buffer returns the loaded sample or nil.
func (g *Granulator) Buffer() *audio.Buffer { return g.sched.Buffer() }

// Parameters returns a snapshot of the grain parameters.
func (g *Granulator) Parameters() params.Parameters { return g.store.Snapshot() }

// Store exposes the parameter store for observers.
func (g *Granulator) Store() *params.Store { return g.store }

func (g *Granulator) SetGrainSize(seconds float64) error  { return g.store.SetGrainSize(seconds) }
func (g *Granulator) SetDensity(perSecond float64) error  { return g.store.SetDensity(perSecond) }
func (g *Granulator) SetPitchShift(semitones int) error   { return g.store.SetPitchShift(semitones) }
func (g *Granulator) SetPlaybackRate(rate float64) error  { return g.store.SetPlaybackRate(rate) }
func (g *Granulator) SetPlaybackPosition(p float64) error { return g.store.SetPlaybackPosition(p) }
func (g *Granulator) SetAttackTime(seconds float64) error { return g.store.SetAttackTime(seconds) }

func (g *Granulator) SetPositionVariation(v float64) error {
	return g.store.SetPositionVariation(v)
}

func (g *Granulator) SetReleaseTime(seconds float64) error {
	return g.store.SetReleaseTime(seconds)
}

// SetParameters replaces every parameter at once.
func (g *Granulator) SetParameters(p params.Parameters) error { return g.store.Apply(p) }

// RandomPreset draws and applies a random parameter set.
func (g *Granulator) RandomPreset() (params.Parameters, error) {
	p, err := g.gen.Apply(g.store)
	if err != nil {
		return params.Parameters{}, err
	}

	g.log.Debug("random preset applied", "params", p)

	return p, nil
}

func (g *Granulator) ExportSettings() export.Settings {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.settings
}

// SetExportFormat fails with export.ErrInvalidFormat for unknown formats.
// A known format without an encoder is accepted and fails at Export.
func (g *Granulator) SetExportFormat(f export.Format) error {
	if !f.IsValid() {
		return fmt.Errorf("%w: %q", export.ErrInvalidFormat, f)
	}

	g.mu.Lock()
	g.settings.Format = f
	g.mu.Unlock()

	return nil
}

func (g *Granulator) SetExportBitRate(kbps int) error {
	if !slices.Contains(export.BitRates, kbps) {
		return fmt.Errorf("%w: %d kbps", export.ErrInvalidBitRate, kbps)
	}

	g.mu.Lock()
	g.settings.BitRate = kbps
	g.mu.Unlock()

	return nil
}

func (g *Granulator) SetExportFilename(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.settings
	s.Filename = name
	if err := s.Validate(); err != nil {
		return err
	}
	g.settings = s

	return nil
}

// Export encodes the loaded sample with the current export settings.
func (g *Granulator) Export(ctx context.Context) (export.Artifact, error) {
	return g.ExportBuffer(ctx, g.sched.Buffer())
}

// ExportBuffer encodes buf, typically an offline rendering, with the
// current export settings.
func (g *Granulator) ExportBuffer(ctx context.Context, buf *audio.Buffer) (export.Artifact, error) {
	return g.exporter.Export(ctx, buf, g.ExportSettings())
}

// Close stops playback and detaches from the parameter store. The engine
// is not closed.
func (g *Granulator) Close() error {
	return g.sched.Close()
}
