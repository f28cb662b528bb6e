// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides generated sources and buffers for tests.
package audiotest

import (
	"io"
	"math"

	"github.com/ik5/audgrain/audio"
)

// Wave returns the value of a channel at a frame index.
type Wave func(frame, channel int) float32

// Sine is a sine tone at freq Hz, identical on every channel.
func Sine(sampleRate int, freq float64) Wave {
	return func(frame, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(frame) / float64(sampleRate)))
	}
}

// Constant holds v on every channel.
func Constant(v float32) Wave {
	return func(int, int) float32 { return v }
}

// Ramp rises linearly from 0 to just below 1 over frames.
func Ramp(frames int) Wave {
	return func(frame, _ int) float32 { return float32(frame) / float32(frames) }
}

// Source generates frames from a Wave. It implements audio.Source and
// audio.Sized.
type Source struct {
	sampleRate int
	channels   int
	frames     int
	pos        int
	wave       Wave
	closed     bool
}

func NewSource(sampleRate, channels, frames int, wave Wave) *Source {
	return &Source{sampleRate: sampleRate, channels: channels, frames: frames, wave: wave}
}

// NewSineSource is a shorthand for a sine Source.
func NewSineSource(sampleRate, channels, frames int, freq float64) *Source {
	return NewSource(sampleRate, channels, frames, Sine(sampleRate, freq))
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BufSize() int    { return 4096 }
func (s *Source) Frames() int64   { return int64(s.frames) }
func (s *Source) Closed() bool    { return s.closed }

func (s *Source) Close() error {
	s.closed = true
	return nil
}

// Reset rewinds the source so it can be read again.
func (s *Source) Reset() { s.pos = 0 }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/s.channels, s.frames-s.pos)
	for f := range n {
		for c := range s.channels {
			dst[f*s.channels+c] = s.wave(s.pos+f, c)
		}
	}
	s.pos += n

	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}

	return n * s.channels, nil
}

// Buffer builds an audio.Buffer from a Wave. It panics on invalid
// arguments since it only serves tests.
func Buffer(sampleRate, channels, frames int, wave Wave) *audio.Buffer {
	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
		for f := range frames {
			data[c][f] = wave(f, c)
		}
	}

	buf, err := audio.NewBuffer(sampleRate, data)
	if err != nil {
		panic(err)
	}

	return buf
}

// SineBuffer is a Buffer holding seconds of a sine tone.
func SineBuffer(sampleRate, channels int, seconds, freq float64) *audio.Buffer {
	return Buffer(sampleRate, channels, int(seconds*float64(sampleRate)), Sine(sampleRate, freq))
}

// Peak returns the largest absolute sample value across all channels.
func Peak(buf *audio.Buffer) float32 {
	var peak float32
	for c := range buf.NumChannels() {
		for _, v := range buf.Channel(c) {
			peak = max(peak, float32(math.Abs(float64(v))))
		}
	}

	return peak
}
