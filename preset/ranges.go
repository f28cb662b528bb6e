// SPDX-License-Identifier: EPL-2.0

package preset

import (
	"errors"
	"fmt"
	"math"

	"github.com/ik5/audgrain/params"
)

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Ranges holds one Range per parameter.
type Ranges map[params.Field]Range

// DefaultRanges returns the ranges random presets are drawn from.
func DefaultRanges() Ranges {
	return Ranges{
		params.FieldGrainSize:         {0.01, 0.5},
		params.FieldDensity:           {1, 50},
		params.FieldPitchShift:        {params.MinPitchShift, params.MaxPitchShift},
		params.FieldPlaybackRate:      {0.5, 2},
		params.FieldPositionVariation: {0, 1},
		params.FieldPlaybackPosition:  {0, 1},
		params.FieldAttackTime:        {0.001, 0.1},
		params.FieldReleaseTime:       {0.01, 0.3},
	}
}

// Validate checks that every field has a finite, ordered range whose
// values the parameter store accepts.
func (rs Ranges) Validate() error {
	var errs []error
	for _, f := range params.Fields {
		r, ok := rs[f]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s missing", ErrInvalidRange, f))
			continue
		}
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
			errs = append(errs, fmt.Errorf("%w: %s not finite", ErrInvalidRange, f))
			continue
		}
		if r.Min > r.Max {
			errs = append(errs, fmt.Errorf("%w: %s min %v > max %v", ErrInvalidRange, f, r.Min, r.Max))
			continue
		}
		if err := params.Check(f, r.Min); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidRange, f, err))
		}
	}

	return errors.Join(errs...)
}
