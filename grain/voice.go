// SPDX-License-Identifier: EPL-2.0

package grain

import (
	"fmt"
	"math"
	"time"

	"github.com/ik5/audgrain/params"
)

// Jitter bounds applied to every grain.
const (
	RateJitter   = 0.05 // playback rate varies by up to ±5%
	DetuneJitter = 25.0 // cents
)

// Rand is the random source voices draw from. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	Float64() float64
}

// ID identifies a voice within a Pool.
type ID struct {
	Index uint32
	Gen   uint32
}

func (id ID) String() string {
	return fmt.Sprintf("%d.%d", id.Index, id.Gen)
}

// State is the lifecycle stage of a voice.
type State int

const (
	Created State = iota
	Sounding
	Released
	Disposed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Sounding:
		return "sounding"
	case Released:
		return "released"
	case Disposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Voice is one grain: which part of the buffer to play, how fast, and with
// which envelope. Everything except ID and State is fixed at construction.
type Voice struct {
	ID                    ID
	SourcePositionSeconds float64
	EffectivePlaybackRate float64
	DetuneCents           float64
	Attack                float64
	Release               float64
	GrainSize             float64
	CreatedAt             time.Time
	State                 State
}

// New builds a voice from a parameter snapshot for a buffer of duration
// seconds.
func New(p params.Parameters, duration float64, rng Rand, now time.Time) (Voice, error) {
	if rng == nil {
		return Voice{}, ErrNilRand
	}
	if !(duration > 0) || math.IsInf(duration, 0) {
		return Voice{}, fmt.Errorf("%w: %v", ErrInvalidDuration, duration)
	}
	if !finite(p.GrainSize, p.PlaybackRate, p.PlaybackPosition, p.PositionVariation, p.AttackTime, p.ReleaseTime) {
		return Voice{}, ErrInvalidParameters
	}

	position := p.PlaybackPosition
	if p.PositionVariation > 0 {
		jitter := (rng.Float64()*2 - 1) * p.PositionVariation
		position = max(0, min(position+jitter, 1))
	}

	return Voice{
		SourcePositionSeconds: position * duration,
		EffectivePlaybackRate: p.PlaybackRate * (1 + (rng.Float64()*2-1)*RateJitter),
		DetuneCents:           float64(p.PitchShift)*100 + (rng.Float64()*2-1)*DetuneJitter,
		Attack:                p.AttackTime,
		Release:               p.ReleaseTime,
		GrainSize:             p.GrainSize,
		CreatedAt:             now,
		State:                 Created,
	}, nil
}

// Envelope returns the amplitude shape of the voice.
func (v Voice) Envelope() Envelope {
	return Envelope{Attack: v.Attack, Hold: v.GrainSize, Release: v.Release}
}

// TotalDuration is GrainSize + Attack + Release in seconds.
func (v Voice) TotalDuration() float64 {
	return v.Envelope().Duration()
}

// Gain evaluates the envelope t seconds into the voice.
func (v Voice) Gain(t float64) float64 {
	return v.Envelope().Gain(t)
}

// Speed is the factor the source is played back at once detune is folded
// into the playback rate.
func (v Voice) Speed() float64 {
	return v.EffectivePlaybackRate * math.Exp2(v.DetuneCents/1200)
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
