// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"math"
	"sync"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/grain"
)

// BaseOverlap is the crossfade between consecutive base grains in seconds.
const BaseOverlap = 0.1

const minBaseGrain = 0.005

type baseGrain struct {
	samples []float32
	pos     int
}

// BaseLayer loops through a buffer as back-to-back crossfaded grains.
// GrainSize sets the grain length, PlaybackRate how fast the read position
// moves through the buffer and DetuneCents the pitch of each grain. It is
// safe for concurrent use.
type BaseLayer struct {
	mu     sync.Mutex
	buf    *audio.Buffer
	rate   int
	live   grain.LiveParams
	cursor float64 // source seconds where the next grain starts
	next   int     // output frames until the next grain starts
	active []baseGrain
	failed int
}

func NewBaseLayer(buf *audio.Buffer, sampleRate int, lp grain.LiveParams) (*BaseLayer, error) {
	if buf == nil {
		return nil, ErrNilBuffer
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	return &BaseLayer{buf: buf, rate: sampleRate, live: lp}, nil
}

// SetLive retunes the layer. The grain in progress keeps its settings.
func (b *BaseLayer) SetLive(lp grain.LiveParams) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.live = lp
}

func (b *BaseLayer) Live() grain.LiveParams {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.live
}

// Failures counts base grains that could not be rendered.
func (b *BaseLayer) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.failed
}

// Read fills dst with mono samples. The layer loops, so it never runs dry.
func (b *BaseLayer) Read(dst []float32) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range dst {
		if b.next <= 0 {
			b.spawn()
		}

		var sum float32
		keep := b.active[:0]
		for _, g := range b.active {
			sum += g.samples[g.pos]
			g.pos++
			if g.pos < len(g.samples) {
				keep = append(keep, g)
			}
		}
		b.active = keep

		dst[i] = sum
		b.next--
	}

	return len(dst)
}

// spawn starts the next grain. Called with mu held.
func (b *BaseLayer) spawn() {
	size := max(b.live.GrainSize, minBaseGrain)
	fade := min(BaseOverlap, size/2)

	v := grain.Voice{
		SourcePositionSeconds: b.cursor,
		EffectivePlaybackRate: 1,
		DetuneCents:           b.live.DetuneCents,
		Attack:                fade,
		GrainSize:             size - fade,
		Release:               fade,
	}

	samples, err := Render(v, b.buf, b.rate)
	switch {
	case err != nil:
		b.failed++
	case len(samples) > 0:
		b.active = append(b.active, baseGrain{samples: samples})
	}

	b.next = max(1, int(math.Round(size*float64(b.rate))))

	rate := b.live.PlaybackRate
	if !(rate > 0) {
		rate = 1
	}
	b.cursor = math.Mod(b.cursor+size*rate, b.buf.Duration())
}
