// SPDX-License-Identifier: EPL-2.0

package grain

import "github.com/ik5/audgrain/utils"

// Envelope is a linear attack, hold, release amplitude shape. All fields
// are in seconds.
type Envelope struct {
	Attack  float64
	Hold    float64
	Release float64
}

// Duration is the full length of the envelope.
func (e Envelope) Duration() float64 {
	return e.Attack + e.Hold + e.Release
}

// Gain returns the amplitude in [0, 1] at t seconds after the grain starts.
// It is 0 outside the envelope.
func (e Envelope) Gain(t float64) float64 {
	switch {
	case t < 0 || t > e.Duration():
		return 0
	case t < e.Attack:
		return utils.Lerp(0, 1, t/e.Attack)
	case t <= e.Attack+e.Hold:
		return 1
	default:
		return utils.Lerp(1, 0, (t-e.Attack-e.Hold)/e.Release)
	}
}
