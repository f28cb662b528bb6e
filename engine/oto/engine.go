// SPDX-License-Identifier: EPL-2.0

package oto

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	otolib "github.com/hajimehoshi/oto/v2"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/engine"
	"github.com/ik5/audgrain/grain"
)

const (
	DefaultSampleRate = 44100
	DefaultChannels   = 2

	pollInterval = 10 * time.Millisecond
)

// player is the part of otolib.Player the engine drives.
type player interface {
	Play()
	IsPlaying() bool
	Close() error
}

type device interface {
	NewPlayer(r io.Reader) player
}

type otoDevice struct {
	ctx *otolib.Context
}

func (d otoDevice) NewPlayer(r io.Reader) player {
	return d.ctx.NewPlayer(r)
}

type Option func(*Engine)

func WithSampleRate(rate int) Option {
	return func(e *Engine) {
		if rate > 0 {
			e.rate = rate
		}
	}
}

func WithChannels(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.channels = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithBaseVoice turns the looping base layer on or off. It is on by
// default.
func WithBaseVoice(on bool) Option {
	return func(e *Engine) {
		e.baseEnabled = on
	}
}

// Engine is a grain.Engine and grain.BaseVoice playing on a device.
type Engine struct {
	dev         device
	rate        int
	channels    int
	log         *slog.Logger
	poll        time.Duration
	baseEnabled bool

	mu         sync.Mutex
	voices     map[grain.ID]chan struct{}
	base       *engine.BaseLayer
	basePlayer player
	live       grain.LiveParams
	closed     bool
	wg         sync.WaitGroup
}

// New opens the audio device and waits until it is ready.
func New(opts ...Option) (*Engine, error) {
	e := newEngine(nil, opts...)

	ctx, ready, err := otolib.NewContext(e.rate, e.channels, otolib.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	e.dev = otoDevice{ctx: ctx}
	e.log.Debug("audio device ready",
		slog.Int("sample_rate", e.rate),
		slog.Int("channels", e.channels),
	)

	return e, nil
}

func newEngine(dev device, opts ...Option) *Engine {
	e := &Engine{
		dev:         dev,
		rate:        DefaultSampleRate,
		channels:    DefaultChannels,
		log:         slog.Default(),
		poll:        pollInterval,
		baseEnabled: true,
		voices:      make(map[grain.ID]chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Engine) SampleRate() int { return e.rate }
func (e *Engine) Channels() int   { return e.channels }

// Trigger renders and plays v in the background. done runs once the grain
// has finished playing unless it was disposed first.
func (e *Engine) Trigger(v grain.Voice, buf *audio.Buffer, done func(grain.ID)) error {
	if buf == nil {
		return engine.ErrNilBuffer
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return engine.ErrClosed
	}
	stop := make(chan struct{})
	e.voices[v.ID] = stop
	e.wg.Add(1)
	e.mu.Unlock()

	go e.play(v, buf, stop, done)

	return nil
}

func (e *Engine) play(v grain.Voice, buf *audio.Buffer, stop chan struct{}, done func(grain.ID)) {
	defer e.wg.Done()

	samples, err := engine.Render(v, buf, e.rate)
	if err != nil {
		e.log.Warn("grain render failed", slog.String("voice", v.ID.String()), slog.Any("error", err))
		e.finish(v.ID, done)
		return
	}

	p := e.dev.NewPlayer(bytes.NewReader(engine.Float32LE(engine.Interleave(samples, e.channels))))
	p.Play()

	ticker := time.NewTicker(e.poll)
	defer ticker.Stop()

	for p.IsPlaying() {
		select {
		case <-stop:
			_ = p.Close()
			return
		case <-ticker.C:
		}
	}
	_ = p.Close()

	e.finish(v.ID, done)
}

// finish reports a voice done unless Dispose already claimed it.
func (e *Engine) finish(id grain.ID, done func(grain.ID)) {
	e.mu.Lock()
	_, ok := e.voices[id]
	delete(e.voices, id)
	e.mu.Unlock()

	if ok && done != nil {
		done(id)
	}
}

// Dispose stops a sounding voice. Unknown IDs are ignored.
func (e *Engine) Dispose(id grain.ID) {
	e.mu.Lock()
	stop, ok := e.voices[id]
	delete(e.voices, id)
	e.mu.Unlock()

	if ok {
		close(stop)
	}
}

// UpdateLive retunes the base voice.
func (e *Engine) UpdateLive(lp grain.LiveParams) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.live = lp
	if e.base != nil {
		e.base.SetLive(lp)
	}
}

// StartBase starts the looping base layer over buf.
func (e *Engine) StartBase(buf *audio.Buffer, lp grain.LiveParams) error {
	if !e.baseEnabled {
		return nil
	}

	layer, err := engine.NewBaseLayer(buf, e.rate, lp)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return engine.ErrClosed
	}
	if e.basePlayer != nil {
		_ = e.basePlayer.Close()
	}

	e.live = lp
	e.base = layer
	e.basePlayer = e.dev.NewPlayer(&layerReader{layer: layer, channels: e.channels})
	e.basePlayer.Play()

	return nil
}

func (e *Engine) StopBase() {
	e.mu.Lock()
	p := e.basePlayer
	e.basePlayer = nil
	e.base = nil
	e.mu.Unlock()

	if p != nil {
		_ = p.Close()
	}
}

// Active is the number of grains currently playing.
func (e *Engine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.voices)
}

// Close stops every grain and the base voice and waits for the players to
// shut down.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	stops := make([]chan struct{}, 0, len(e.voices))
	for id, stop := range e.voices {
		stops = append(stops, stop)
		delete(e.voices, id)
	}
	e.mu.Unlock()

	for _, stop := range stops {
		close(stop)
	}
	e.StopBase()
	e.wg.Wait()

	return nil
}

// layerReader streams a BaseLayer as interleaved float32 LE bytes.
type layerReader struct {
	layer    *engine.BaseLayer
	channels int
	mono     []float32
}

func (r *layerReader) Read(p []byte) (int, error) {
	frameBytes := 4 * r.channels
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}

	if cap(r.mono) < frames {
		r.mono = make([]float32, frames)
	}
	r.mono = r.mono[:frames]
	r.layer.Read(r.mono)

	out := engine.Float32LE(engine.Interleave(r.mono, r.channels))
	return copy(p, out), nil
}
