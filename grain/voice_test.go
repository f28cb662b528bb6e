// SPDX-License-Identifier: EPL-2.0

package grain

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/ik5/audgrain/params"
)

// seq replays fixed draws in order and then repeats the last one.
type seq struct {
	vals []float64
	n    int
}

func (s *seq) Float64() float64 {
	v := s.vals[min(s.n, len(s.vals)-1)]
	s.n++
	return v
}

func TestNew_Scenario(t *testing.T) {
	t.Parallel()

	p := params.Defaults()
	p.PlaybackPosition = 0.5
	p.PositionVariation = 0

	for range 100 {
		v, err := New(p, 2, rand.New(rand.NewPCG(1, 2)), time.Now())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if v.SourcePositionSeconds != 1.0 {
			t.Fatalf("SourcePositionSeconds = %v, want 1.0", v.SourcePositionSeconds)
		}
	}
}

func TestNew_DrawOrder(t *testing.T) {
	t.Parallel()

	p := params.Defaults()
	p.PlaybackPosition = 0.5
	p.PositionVariation = 0.2
	p.PlaybackRate = 2
	p.PitchShift = 3

	// position jitter +1, rate jitter -1, detune 0
	v, err := New(p, 10, &seq{vals: []float64{1, 0, 0.5}}, time.Time{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if math.Abs(v.SourcePositionSeconds-7) > 1e-9 {
		t.Errorf("SourcePositionSeconds = %v, want 7", v.SourcePositionSeconds)
	}
	if math.Abs(v.EffectivePlaybackRate-1.9) > 1e-9 {
		t.Errorf("EffectivePlaybackRate = %v, want 1.9", v.EffectivePlaybackRate)
	}
	if math.Abs(v.DetuneCents-300) > 1e-9 {
		t.Errorf("DetuneCents = %v, want 300", v.DetuneCents)
	}
}

func TestNew_NoVariationSkipsPositionDraw(t *testing.T) {
	t.Parallel()

	p := params.Defaults()
	rng := &seq{vals: []float64{1, 0}}

	v, err := New(p, 1, rng, time.Time{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if rng.n != 2 {
		t.Errorf("drew %d values, want 2", rng.n)
	}
	if math.Abs(v.EffectivePlaybackRate-1.05) > 1e-9 {
		t.Errorf("EffectivePlaybackRate = %v, want 1.05", v.EffectivePlaybackRate)
	}
	if math.Abs(v.DetuneCents+25) > 1e-9 {
		t.Errorf("DetuneCents = %v, want -25", v.DetuneCents)
	}
}

func TestNew_PositionAlwaysInsideBuffer(t *testing.T) {
	t.Parallel()

	const duration = 3.5

	rng := rand.New(rand.NewPCG(7, 11))
	for _, pos := range []float64{0, 0.01, 0.5, 0.99, 1} {
		for _, variation := range []float64{0, 0.3, 1} {
			p := params.Defaults()
			p.PlaybackPosition = pos
			p.PositionVariation = variation

			for range 500 {
				v, err := New(p, duration, rng, time.Time{})
				if err != nil {
					t.Fatalf("New() error = %v", err)
				}
				if v.SourcePositionSeconds < 0 || v.SourcePositionSeconds > duration {
					t.Fatalf("pos %v var %v: SourcePositionSeconds = %v outside [0, %v]",
						pos, variation, v.SourcePositionSeconds, duration)
				}
			}
		}
	}

	// extreme draws
	for _, draw := range []float64{0, 0.999999999} {
		p := params.Defaults()
		p.PlaybackPosition = 1 - draw
		p.PositionVariation = 1

		v, err := New(p, duration, &seq{vals: []float64{draw, 0.5, 0.5}}, time.Time{})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if v.SourcePositionSeconds < 0 || v.SourcePositionSeconds > duration {
			t.Errorf("draw %v: SourcePositionSeconds = %v", draw, v.SourcePositionSeconds)
		}
	}
}

func TestNew_JitterBounds(t *testing.T) {
	t.Parallel()

	p := params.Defaults()
	p.PlaybackRate = 1.5
	p.PitchShift = -7

	rng := rand.New(rand.NewPCG(3, 4))
	for range 1000 {
		v, err := New(p, 1, rng, time.Time{})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if v.EffectivePlaybackRate < 1.5*0.95 || v.EffectivePlaybackRate > 1.5*1.05 {
			t.Fatalf("EffectivePlaybackRate = %v out of range", v.EffectivePlaybackRate)
		}
		if v.DetuneCents < -725 || v.DetuneCents > -675 {
			t.Fatalf("DetuneCents = %v out of range", v.DetuneCents)
		}
	}
}

func TestNew_CopiesEnvelope(t *testing.T) {
	t.Parallel()

	p := params.Defaults()
	p.GrainSize = 0.2
	p.AttackTime = 0.05
	p.ReleaseTime = 0.25
	now := time.Unix(1700000000, 0)

	v, err := New(p, 1, rand.New(rand.NewPCG(1, 1)), now)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if v.State != Created {
		t.Errorf("State = %v, want created", v.State)
	}
	if !v.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", v.CreatedAt, now)
	}
	if math.Abs(v.TotalDuration()-0.5) > 1e-12 {
		t.Errorf("TotalDuration() = %v, want 0.5", v.TotalDuration())
	}
	if got := v.Gain(0.15); got != 1 {
		t.Errorf("Gain(0.15) = %v, want 1", got)
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 1))
	nan := params.Defaults()
	nan.AttackTime = math.NaN()
	inf := params.Defaults()
	inf.PlaybackRate = math.Inf(1)

	tests := []struct {
		name     string
		p        params.Parameters
		duration float64
		rng      Rand
		want     error
	}{
		{"zero duration", params.Defaults(), 0, rng, ErrInvalidDuration},
		{"negative duration", params.Defaults(), -1, rng, ErrInvalidDuration},
		{"nan duration", params.Defaults(), math.NaN(), rng, ErrInvalidDuration},
		{"inf duration", params.Defaults(), math.Inf(1), rng, ErrInvalidDuration},
		{"nan attack", nan, 1, rng, ErrInvalidParameters},
		{"inf rate", inf, 1, rng, ErrInvalidParameters},
		{"nil rand", params.Defaults(), 1, nil, ErrNilRand},
	}

	for _, tt := range tests {
		if _, err := New(tt.p, tt.duration, tt.rng, time.Time{}); !errors.Is(err, tt.want) {
			t.Errorf("%s: New() error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestVoice_Speed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate  float64
		cents float64
		want  float64
	}{
		{1, 0, 1},
		{1, 1200, 2},
		{1, -1200, 0.5},
		{0.5, 700, 0.5 * math.Pow(2, 7.0/12)},
	}

	for _, tt := range tests {
		v := Voice{EffectivePlaybackRate: tt.rate, DetuneCents: tt.cents}
		if got := v.Speed(); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Speed(%v, %v) = %v, want %v", tt.rate, tt.cents, got, tt.want)
		}
	}
}

func TestLiveFrom(t *testing.T) {
	t.Parallel()

	p := params.Defaults()
	p.PitchShift = -5
	p.GrainSize = 0.3
	p.PlaybackRate = 1.25

	want := LiveParams{GrainSize: 0.3, PlaybackRate: 1.25, DetuneCents: -500}
	if got := LiveFrom(p); got != want {
		t.Errorf("LiveFrom() = %+v, want %+v", got, want)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	for st, want := range map[State]string{
		Created:   "created",
		Sounding:  "sounding",
		Released:  "released",
		Disposed:  "disposed",
		State(42): "state(42)",
	} {
		if got := st.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func BenchmarkNew(b *testing.B) {
	p := params.Defaults()
	p.PositionVariation = 0.4
	rng := rand.New(rand.NewPCG(1, 2))
	now := time.Now()

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		_, _ = New(p, 4, rng, now)
	}
}
