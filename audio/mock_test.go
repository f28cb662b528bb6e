// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
)

// genSource produces frames from a waveform function. It delivers at most
// chunk frames per read to exercise callers that loop over short reads.
type genSource struct {
	rate     int
	channels int
	frames   int
	pos      int
	chunk    int
	failAt   int // frame index at which ReadSamples fails, 0 disables
	closed   bool
	wave     func(frame, channel int) float32
}

var errGenFailed = errors.New("generator failed")

func newGenSource(rate, channels, frames int, wave func(frame, channel int) float32) *genSource {
	return &genSource{rate: rate, channels: channels, frames: frames, chunk: 1 << 30, wave: wave}
}

func constantWave(v float32) func(int, int) float32 {
	return func(int, int) float32 { return v }
}

func rampWave(frame, _ int) float32 { return float32(frame) }

func sineWave(rate int, freq float64) func(int, int) float32 {
	return func(frame, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(frame) / float64(rate)))
	}
}

func (g *genSource) SampleRate() int { return g.rate }
func (g *genSource) Channels() int   { return g.channels }
func (g *genSource) BufSize() int    { return 1024 }

func (g *genSource) Close() error {
	g.closed = true
	return nil
}

func (g *genSource) ReadSamples(dst []float32) (int, error) {
	if len(dst)%g.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if g.failAt > 0 && g.pos >= g.failAt {
		return 0, errGenFailed
	}
	if g.pos >= g.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/g.channels, g.frames-g.pos, g.chunk)
	for f := range n {
		for c := range g.channels {
			dst[f*g.channels+c] = g.wave(g.pos+f, c)
		}
	}
	g.pos += n

	return n * g.channels, nil
}

// sizedGenSource reports its length for preallocation.
type sizedGenSource struct{ *genSource }

func (s sizedGenSource) Frames() int64 { return int64(s.frames) }

// drain reads src to EOF with a dst of the given size.
func drain(src Source, size int) ([]float32, error) {
	buf := make([]float32, size)
	var out []float32
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
