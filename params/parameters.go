// SPDX-License-Identifier: EPL-2.0

package params

import (
	"errors"
	"math"
)

// PitchShift limits in semitones.
const (
	MinPitchShift = -12
	MaxPitchShift = 12
)

// Parameters is a value snapshot of every grain parameter.
type Parameters struct {
	GrainSize         float64 `yaml:"grain_size"`         // seconds, > 0
	Density           float64 `yaml:"density"`            // grains per second, > 0
	PitchShift        int     `yaml:"pitch_shift"`        // semitones
	PlaybackRate      float64 `yaml:"playback_rate"`      // > 0
	PlaybackPosition  float64 `yaml:"playback_position"`  // normalized [0, 1]
	PositionVariation float64 `yaml:"position_variation"` // normalized [0, 1]
	AttackTime        float64 `yaml:"attack_time"`        // seconds, >= 0
	ReleaseTime       float64 `yaml:"release_time"`       // seconds, >= 0
}

// Defaults returns the parameters a fresh granulator starts with.
func Defaults() Parameters {
	return Parameters{
		GrainSize:         0.1,
		Density:           10,
		PitchShift:        0,
		PlaybackRate:      1,
		PlaybackPosition:  0,
		PositionVariation: 0,
		AttackTime:        0.01,
		ReleaseTime:       0.1,
	}
}

// Value returns field f as a float64.
func (p Parameters) Value(f Field) float64 {
	switch f {
	case FieldGrainSize:
		return p.GrainSize
	case FieldDensity:
		return p.Density
	case FieldPitchShift:
		return float64(p.PitchShift)
	case FieldPlaybackRate:
		return p.PlaybackRate
	case FieldPlaybackPosition:
		return p.PlaybackPosition
	case FieldPositionVariation:
		return p.PositionVariation
	case FieldAttackTime:
		return p.AttackTime
	case FieldReleaseTime:
		return p.ReleaseTime
	default:
		return math.NaN()
	}
}

// Validate reports every field that a setter would reject.
func (p Parameters) Validate() error {
	var errs []error
	for _, f := range Fields {
		if err := check(f, p.Value(f)); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Normalize clamps the normalized fields and the pitch shift into range.
func (p Parameters) Normalize() Parameters {
	p.PlaybackPosition = clamp01(p.PlaybackPosition)
	p.PositionVariation = clamp01(p.PositionVariation)
	p.PitchShift = max(MinPitchShift, min(p.PitchShift, MaxPitchShift))

	return p
}

// Interval is the time between grain triggers in seconds.
func (p Parameters) Interval() float64 {
	return 1 / p.Density
}

// Check validates a raw value for f the way the setters do, without
// clamping.
func Check(f Field, v float64) error {
	return check(f, v)
}

func check(f Field, v float64) error {
	if !f.IsValid() {
		return &ValidationError{Field: f, Value: v, Err: ErrUnknownField}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: f, Value: v, Err: ErrNotFinite}
	}

	switch f {
	case FieldGrainSize, FieldDensity, FieldPlaybackRate:
		if v <= 0 {
			return &ValidationError{Field: f, Value: v, Err: ErrNotPositive}
		}
	case FieldAttackTime, FieldReleaseTime:
		if v < 0 {
			return &ValidationError{Field: f, Value: v, Err: ErrNegative}
		}
	}

	return nil
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}
