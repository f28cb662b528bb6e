// SPDX-License-Identifier: EPL-2.0

package params

import "slices"

// Field names one grain parameter.
type Field string

const (
	FieldGrainSize         Field = "grain_size"
	FieldDensity           Field = "density"
	FieldPitchShift        Field = "pitch_shift"
	FieldPlaybackRate      Field = "playback_rate"
	FieldPlaybackPosition  Field = "playback_position"
	FieldPositionVariation Field = "position_variation"
	FieldAttackTime        Field = "attack_time"
	FieldReleaseTime       Field = "release_time"
)

// Fields lists every parameter in a stable order.
var Fields = []Field{
	FieldGrainSize,
	FieldDensity,
	FieldPitchShift,
	FieldPlaybackRate,
	FieldPlaybackPosition,
	FieldPositionVariation,
	FieldAttackTime,
	FieldReleaseTime,
}

func (f Field) IsValid() bool {
	return slices.Contains(Fields, f)
}

// Class says when a write to a field becomes audible.
type Class int

const (
	// NextGrainOnly fields are read when the next grain is built.
	NextGrainOnly Class = iota
	// Immediate fields are also pushed to the sounding base voice.
	Immediate
	// Reconfigure fields change the trigger timer itself.
	Reconfigure
)

func (c Class) String() string {
	switch c {
	case Immediate:
		return "immediate"
	case Reconfigure:
		return "reconfigure"
	default:
		return "next_grain_only"
	}
}

// ClassOf returns the update class of f.
func ClassOf(f Field) Class {
	switch f {
	case FieldGrainSize, FieldPitchShift, FieldPlaybackRate:
		return Immediate
	case FieldDensity:
		return Reconfigure
	default:
		return NextGrainOnly
	}
}
