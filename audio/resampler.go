// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/ik5/audgrain/utils"
)

// ResamplerOption configures a Resampler.
type ResamplerOption func(*Resampler)

// WithSpeed plays the source faster (>1) or slower (<1) while converting,
// which shifts pitch by the same factor. Non-positive or non-finite values
// are ignored.
func WithSpeed(speed float64) ResamplerOption {
	return func(r *Resampler) {
		if speed > 0 && !math.IsInf(speed, 0) {
			r.speed = speed
		}
	}
}

// Resampler streams from src to a target sample rate using Catmull-Rom
// cubic interpolation. It works on interleaved samples and keeps the
// channel count. Grain playback uses the speed option so one pass covers
// both device rate conversion and the grain's playback rate and detune.
type Resampler struct {
	src      Source
	dstRate  int
	speed    float64
	step     float64 // source frames consumed per output frame
	channels int

	// history holds four consecutive source frames: t-1, t0, t+1, t+2
	history [4][]float32
	valid   [4]bool
	primed  bool
	eof     bool
	frac    float64

	in []float32

	// one-pole low-pass applied to incoming frames when step > 1
	lowpass  bool
	filtered bool
	alpha    float32
	state    []float32
}

func NewResampler(src Source, dstRate int, opts ...ResamplerOption) *Resampler {
	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		speed:    1,
		channels: src.Channels(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.step = float64(src.SampleRate()) * r.speed / float64(dstRate)
	r.in = make([]float32, r.channels)
	r.state = make([]float32, r.channels)
	for i := range r.history {
		r.history[i] = make([]float32, r.channels)
	}
	if r.step > 1 {
		r.lowpass = true
		r.alpha = 0.5
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

// Speed returns the playback speed factor.
func (r *Resampler) Speed() float64 { return r.speed }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// pull reads a single source frame into r.in.
func (r *Resampler) pull() (bool, error) {
	if r.eof {
		return false, nil
	}

	n, err := r.src.ReadSamples(r.in)
	if err == io.EOF {
		r.eof = true
	} else if err != nil {
		return false, fmt.Errorf("%w", err)
	}
	if n < r.channels {
		return false, nil
	}

	if r.lowpass {
		if !r.filtered {
			// start the filter at the first sample to avoid a fade-in transient
			copy(r.state, r.in)
			r.filtered = true
		}
		for c := range r.channels {
			r.in[c] = r.alpha*r.in[c] + (1-r.alpha)*r.state[c]
			r.state[c] = r.in[c]
		}
	}

	return true, nil
}

// advance shifts the history left by one frame and appends the next one.
func (r *Resampler) advance() error {
	first := r.history[0]
	copy(r.history[:], r.history[1:])
	r.history[3] = first
	copy(r.valid[:], r.valid[1:])

	ok, err := r.pull()
	if err != nil {
		return err
	}
	r.valid[3] = ok
	if ok {
		copy(r.history[3], r.in)
	}

	return nil
}

func (r *Resampler) prime() error {
	r.primed = true

	for i := 1; i < len(r.history); i++ {
		ok, err := r.pull()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		copy(r.history[i], r.in)
		r.valid[i] = true
	}

	if !r.valid[1] {
		return io.EOF
	}

	// no frame before the first one, so t-1 repeats t0
	copy(r.history[0], r.history[1])
	r.valid[0] = true

	return nil
}

// ReadSamples produces output samples at the destination rate.
// dst length must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0

	for written < frames {
		for r.frac >= 1 {
			r.frac--
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		// past the last source frame
		if !r.valid[1] || (!r.valid[2] && r.frac > 0) {
			return written * r.channels, io.EOF
		}

		x := float32(r.frac)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range r.channels {
			y1 := r.history[1][c]
			y2 := y1
			if r.valid[2] {
				y2 = r.history[2][c]
			}
			y3 := y2
			if r.valid[3] {
				y3 = r.history[3][c]
			}
			out[c] = utils.CubicInterpolate(r.history[0][c], y1, y2, y3, x)
		}

		written++
		r.frac += r.step
	}

	return written * r.channels, nil
}
