// SPDX-License-Identifier: EPL-2.0

package oto

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ik5/audgrain/engine"
	"github.com/ik5/audgrain/grain"
	"github.com/ik5/audgrain/internal/audiotest"
)

// fakePlayer drains its reader on Play and stays "playing" until release
// is closed.
type fakePlayer struct {
	r       io.Reader
	release chan struct{}
	data    []byte
	closed  atomic.Bool
	played  atomic.Bool
}

func (p *fakePlayer) Play() {
	buf := make([]byte, 4096)
	n, _ := p.r.Read(buf)
	p.data = buf[:n]
	p.played.Store(true)
}

func (p *fakePlayer) IsPlaying() bool {
	select {
	case <-p.release:
		return false
	default:
		return !p.closed.Load()
	}
}

func (p *fakePlayer) Close() error {
	p.closed.Store(true)
	return nil
}

type fakeDevice struct {
	mu      sync.Mutex
	players []*fakePlayer
	release chan struct{}
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{release: make(chan struct{})}
}

func (d *fakeDevice) NewPlayer(r io.Reader) player {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := &fakePlayer{r: r, release: d.release}
	d.players = append(d.players, p)
	return p
}

func (d *fakeDevice) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.players)
}

func (d *fakeDevice) player(i int) *fakePlayer {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.players[i]
}

func testVoice(id uint32) grain.Voice {
	return grain.Voice{
		ID:                    grain.ID{Index: id, Gen: 1},
		EffectivePlaybackRate: 1,
		GrainSize:             0.01,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestEngine_TriggerReportsDone(t *testing.T) {
	t.Parallel()

	dev := newFakeDevice()
	e := newEngine(dev, WithSampleRate(8000), WithChannels(2))
	e.poll = time.Millisecond
	defer e.Close()

	buf := audiotest.Buffer(8000, 1, 8000, audiotest.Constant(0.5))

	var got atomic.Value
	if err := e.Trigger(testVoice(3), buf, func(id grain.ID) { got.Store(id) }); err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}

	waitFor(t, "player", func() bool { return dev.count() == 1 })
	p := dev.player(0)
	waitFor(t, "play", p.played.Load)

	// 80 stereo frames of float32
	if len(p.data) != 80*2*4 {
		t.Errorf("player got %d bytes, want %d", len(p.data), 80*2*4)
	}
	if e.Active() != 1 {
		t.Errorf("Active() = %d, want 1", e.Active())
	}

	close(dev.release)
	waitFor(t, "done", func() bool { return got.Load() != nil })

	if id := got.Load().(grain.ID); id != (grain.ID{Index: 3, Gen: 1}) {
		t.Errorf("done(%v), want 3.1", id)
	}
	if !p.closed.Load() {
		t.Error("player not closed")
	}
	if e.Active() != 0 {
		t.Errorf("Active() = %d, want 0", e.Active())
	}
}

func TestEngine_DisposeSkipsDone(t *testing.T) {
	t.Parallel()

	dev := newFakeDevice()
	e := newEngine(dev, WithSampleRate(8000))
	e.poll = time.Millisecond
	defer e.Close()

	buf := audiotest.Buffer(8000, 1, 8000, audiotest.Constant(0.5))

	var calls atomic.Int32
	if err := e.Trigger(testVoice(1), buf, func(grain.ID) { calls.Add(1) }); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "player", func() bool { return dev.count() == 1 })

	e.Dispose(testVoice(1).ID)
	e.Dispose(testVoice(1).ID)
	e.Dispose(grain.ID{Index: 42, Gen: 7})

	p := dev.player(0)
	waitFor(t, "close", p.closed.Load)

	time.Sleep(10 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("done called %d times after Dispose", n)
	}
}

func TestEngine_BaseVoice(t *testing.T) {
	t.Parallel()

	dev := newFakeDevice()
	e := newEngine(dev, WithSampleRate(1000), WithChannels(1))
	defer e.Close()

	buf := audiotest.Buffer(1000, 1, 2000, audiotest.Constant(0.5))
	lp := grain.LiveParams{GrainSize: 0.2, PlaybackRate: 1}
	if err := e.StartBase(buf, lp); err != nil {
		t.Fatalf("StartBase() error = %v", err)
	}

	if dev.count() != 1 {
		t.Fatalf("players = %d, want 1", dev.count())
	}
	p := dev.player(0)
	if len(p.data) != 4096 {
		t.Errorf("base player read %d bytes, want a full buffer", len(p.data))
	}

	next := grain.LiveParams{GrainSize: 0.05, PlaybackRate: 2, DetuneCents: 100}
	e.UpdateLive(next)
	e.mu.Lock()
	got := e.base.Live()
	e.mu.Unlock()
	if got != next {
		t.Errorf("base live = %+v, want %+v", got, next)
	}

	e.StopBase()
	if !p.closed.Load() {
		t.Error("base player not closed")
	}
	e.StopBase()
}

func TestEngine_BaseVoiceDisabled(t *testing.T) {
	t.Parallel()

	dev := newFakeDevice()
	e := newEngine(dev, WithBaseVoice(false))
	defer e.Close()

	buf := audiotest.Buffer(1000, 1, 100, audiotest.Constant(0.5))
	if err := e.StartBase(buf, grain.LiveParams{GrainSize: 0.1, PlaybackRate: 1}); err != nil {
		t.Fatal(err)
	}
	if dev.count() != 0 {
		t.Errorf("players = %d, want 0", dev.count())
	}
}

func TestEngine_Close(t *testing.T) {
	t.Parallel()

	dev := newFakeDevice()
	e := newEngine(dev, WithSampleRate(8000))
	e.poll = time.Millisecond

	buf := audiotest.Buffer(8000, 1, 8000, audiotest.Constant(0.5))
	for i := range 5 {
		if err := e.Trigger(testVoice(uint32(i)), buf, nil); err != nil {
			t.Fatal(err)
		}
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if e.Active() != 0 {
		t.Errorf("Active() = %d after Close", e.Active())
	}
	if err := e.Trigger(testVoice(9), buf, nil); !errors.Is(err, engine.ErrClosed) {
		t.Errorf("Trigger() after Close = %v, want ErrClosed", err)
	}
	if err := e.Trigger(testVoice(9), nil, nil); !errors.Is(err, engine.ErrNilBuffer) {
		t.Errorf("Trigger(nil buffer) = %v, want ErrNilBuffer", err)
	}
}

func TestLayerReader(t *testing.T) {
	t.Parallel()

	buf := audiotest.Buffer(1000, 1, 1000, audiotest.Constant(0.5))
	layer, err := engine.NewBaseLayer(buf, 1000, grain.LiveParams{GrainSize: 0.1, PlaybackRate: 1})
	if err != nil {
		t.Fatal(err)
	}
	r := &layerReader{layer: layer, channels: 2}

	p := make([]byte, 8*10+3)
	n, err := r.Read(p)
	if err != nil || n != 80 {
		t.Errorf("Read() = %d, %v; want 80, nil", n, err)
	}
	if _, err := r.Read(make([]byte, 7)); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("Read(short) error = %v", err)
	}
}
