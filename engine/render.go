// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/grain"
)

// extra source frames read past the nominal window for interpolation
const tailFrames = 4

// Render returns the mono samples of v at sampleRate with its envelope
// applied. A voice whose window runs past the end of buf is cut short.
func Render(v grain.Voice, buf *audio.Buffer, sampleRate int) ([]float32, error) {
	if buf == nil {
		return nil, ErrNilBuffer
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	total := v.TotalDuration()
	speed := v.Speed()
	if !(total > 0) || math.IsInf(total, 0) || !(speed > 0) || math.IsInf(speed, 0) {
		return nil, nil
	}

	outFrames := int(math.Ceil(total * float64(sampleRate)))
	srcFrames := int(math.Ceil(total*speed*float64(buf.SampleRate()))) + tailFrames

	src := audio.NewBufferSource(buf, buf.TimeToFrame(v.SourcePositionSeconds), srcFrames)
	r := audio.NewResampler(audio.NewMonoMixer(src), sampleRate, audio.WithSpeed(speed))
	defer r.Close()

	out := make([]float32, outFrames)
	n := 0
	for n < outFrames {
		m, err := r.ReadSamples(out[n:])
		n += m
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if m == 0 {
			break
		}
	}
	out = out[:n]

	env := v.Envelope()
	for i := range out {
		out[i] *= float32(env.Gain(float64(i) / float64(sampleRate)))
	}

	return out, nil
}

// Interleave copies mono into every one of channels.
func Interleave(mono []float32, channels int) []float32 {
	if channels <= 1 {
		return mono
	}

	out := make([]float32, len(mono)*channels)
	for i, s := range mono {
		for c := range channels {
			out[i*channels+c] = s
		}
	}

	return out
}

// MixInto adds mono to the interleaved dst starting at frame offset,
// dropping whatever does not fit.
func MixInto(dst []float32, channels, offset int, mono []float32) {
	if channels <= 0 || offset < 0 {
		return
	}

	frames := len(dst) / channels
	for i, s := range mono {
		f := offset + i
		if f >= frames {
			return
		}
		for c := range channels {
			dst[f*channels+c] += s
		}
	}
}

// Float32LE encodes samples the way oto.FormatFloat32LE expects them.
func Float32LE(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}

	return out
}
