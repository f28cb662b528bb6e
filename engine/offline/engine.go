// SPDX-License-Identifier: EPL-2.0

package offline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/engine"
	"github.com/ik5/audgrain/grain"
)

var ErrNothingRecorded = errors.New("nothing has been recorded")

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
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

type clip struct {
	offset  int
	samples []float32
}

type liveEvent struct {
	frame int
	lp    grain.LiveParams
}

type baseTrack struct {
	buf    *audio.Buffer
	start  int
	stop   int // -1 while running
	events []liveEvent
}

// Engine is a grain.Engine and grain.BaseVoice that records into memory.
// Triggered grains still report done after their duration so the
// scheduler sees the same lifecycle as with a device.
type Engine struct {
	rate     int
	channels int
	now      func() time.Time
	log      *slog.Logger

	mu      sync.Mutex
	started bool
	origin  time.Time
	clips   map[grain.ID]*clip
	order   []grain.ID
	timers  map[grain.ID]*time.Timer
	tracks  []*baseTrack
	closed  bool
}

func New(sampleRate, channels int, opts ...Option) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", engine.ErrInvalidSampleRate, sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", engine.ErrInvalidChannels, channels)
	}

	e := &Engine{
		rate:     sampleRate,
		channels: channels,
		now:      time.Now,
		log:      slog.Default(),
		clips:    make(map[grain.ID]*clip),
		timers:   make(map[grain.ID]*time.Timer),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

func (e *Engine) Trigger(v grain.Voice, buf *audio.Buffer, done func(grain.ID)) error {
	samples, err := engine.Render(v, buf, e.rate)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return engine.ErrClosed
	}

	at := v.CreatedAt
	if at.IsZero() {
		at = e.now()
	}
	e.clips[v.ID] = &clip{offset: e.frameAt(at), samples: samples}
	e.order = append(e.order, v.ID)

	if done != nil {
		id := v.ID
		e.timers[id] = time.AfterFunc(time.Duration(v.TotalDuration()*float64(time.Second)), func() {
			e.mu.Lock()
			_, ok := e.timers[id]
			delete(e.timers, id)
			e.mu.Unlock()

			if ok {
				done(id)
			}
		})
	}

	return nil
}

// Dispose cuts the recorded grain at the current time.
func (e *Engine) Dispose(id grain.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t, ok := e.timers[id]; ok {
		t.Stop()
		delete(e.timers, id)
	}

	c, ok := e.clips[id]
	if !ok {
		return
	}
	if keep := e.frameAt(e.now()) - c.offset; keep < len(c.samples) {
		c.samples = c.samples[:max(0, keep)]
	}
}

func (e *Engine) UpdateLive(lp grain.LiveParams) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tr := e.running(); tr != nil {
		tr.events = append(tr.events, liveEvent{frame: e.frameAt(e.now()), lp: lp})
	}
}

func (e *Engine) StartBase(buf *audio.Buffer, lp grain.LiveParams) error {
	if buf == nil {
		return engine.ErrNilBuffer
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return engine.ErrClosed
	}

	frame := e.frameAt(e.now())
	if tr := e.running(); tr != nil {
		tr.stop = frame
	}
	e.tracks = append(e.tracks, &baseTrack{
		buf:    buf,
		start:  frame,
		stop:   -1,
		events: []liveEvent{{frame: frame, lp: lp}},
	})

	return nil
}

func (e *Engine) StopBase() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tr := e.running(); tr != nil {
		tr.stop = e.frameAt(e.now())
	}
}

// Render mixes everything recorded so far into a buffer. A base voice that
// is still running is rendered up to now.
func (e *Engine) Render() (*audio.Buffer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.frameAt(e.now())
	length := 0
	for _, c := range e.clips {
		length = max(length, c.offset+len(c.samples))
	}
	for _, tr := range e.tracks {
		length = max(length, trackEnd(tr, now))
	}
	if length == 0 {
		return nil, ErrNothingRecorded
	}

	mix := make([]float32, length)
	for _, id := range e.order {
		c := e.clips[id]
		engine.MixInto(mix, 1, c.offset, c.samples)
	}
	for _, tr := range e.tracks {
		if err := e.renderTrack(mix, tr, trackEnd(tr, now)); err != nil {
			return nil, err
		}
	}

	channels := make([][]float32, e.channels)
	channels[0] = mix
	for c := 1; c < e.channels; c++ {
		channels[c] = append([]float32(nil), mix...)
	}

	return audio.NewBuffer(e.rate, channels)
}

func (e *Engine) renderTrack(mix []float32, tr *baseTrack, end int) error {
	layer, err := engine.NewBaseLayer(tr.buf, e.rate, tr.events[0].lp)
	if err != nil {
		return err
	}

	for i, ev := range tr.events {
		segEnd := end
		if i+1 < len(tr.events) {
			segEnd = min(tr.events[i+1].frame, end)
		}
		if segEnd <= ev.frame {
			continue
		}

		layer.SetLive(ev.lp)
		seg := make([]float32, segEnd-ev.frame)
		layer.Read(seg)
		engine.MixInto(mix, 1, ev.frame, seg)
	}

	return nil
}

// Voices is the number of grains recorded.
func (e *Engine) Voices() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.clips)
}

func (e *Engine) SampleRate() int { return e.rate }

// Close cancels the pending done callbacks. The recording stays
// available to Render.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
	if tr := e.running(); tr != nil {
		tr.stop = e.frameAt(e.now())
	}

	return nil
}

// frameAt converts t to an output frame, starting the recording clock on
// first use. Called with mu held.
func (e *Engine) frameAt(t time.Time) int {
	if !e.started {
		e.started = true
		e.origin = t
	}

	return max(0, int(t.Sub(e.origin).Seconds()*float64(e.rate)))
}

// running returns the base track still playing, if any. Called with mu
// held.
func (e *Engine) running() *baseTrack {
	if n := len(e.tracks); n > 0 && e.tracks[n-1].stop < 0 {
		return e.tracks[n-1]
	}

	return nil
}

func trackEnd(tr *baseTrack, now int) int {
	if tr.stop >= 0 {
		return tr.stop
	}

	return now
}
