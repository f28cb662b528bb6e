// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"fmt"
	"io"
)

// Buffer is a fully decoded, immutable block of audio held per channel.
// It is built once and then shared read-only by every grain voice, so
// none of its methods modify it and callers must not write into the
// slices returned by Channel.
type Buffer struct {
	sampleRate int
	channels   [][]float32
}

// NewBuffer copies channels into a new Buffer. Every channel must have the
// same length, and at least one channel is required.
func NewBuffer(sampleRate int, channels [][]float32) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}

	length := len(channels[0])
	if length == 0 {
		return nil, ErrEmptyStream
	}
	owned := make([][]float32, len(channels))
	for i, ch := range channels {
		if len(ch) != length {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d",
				ErrChannelLength, i, len(ch), length)
		}
		owned[i] = append(make([]float32, 0, length), ch...)
	}

	return &Buffer{sampleRate: sampleRate, channels: owned}, nil
}

func (b *Buffer) SampleRate() int  { return b.sampleRate }
func (b *Buffer) NumChannels() int { return len(b.channels) }

// Length is the number of frames per channel.
func (b *Buffer) Length() int { return len(b.channels[0]) }

// Duration of the buffer in seconds.
func (b *Buffer) Duration() float64 {
	return float64(b.Length()) / float64(b.sampleRate)
}

// Channel returns the samples of channel i. The slice is shared.
func (b *Buffer) Channel(i int) []float32 { return b.channels[i] }

// TimeToFrame converts a position in seconds into a frame index clamped
// to [0, Length].
func (b *Buffer) TimeToFrame(seconds float64) int {
	frame := int(seconds * float64(b.sampleRate))
	return max(0, min(frame, b.Length()))
}

// ReadAll drains src into a Buffer. ctx is checked between reads so a
// long decode can be abandoned; no partial Buffer is returned on error.
func ReadAll(ctx context.Context, src Source) (*Buffer, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrNoChannels
	}

	var hint int64
	if s, ok := src.(Sized); ok {
		hint = s.Frames()
	}

	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, 0, max(hint, 0))
	}

	bufSize := src.BufSize()
	if bufSize < channels {
		bufSize = 4096
	}
	bufSize -= bufSize % channels
	buf := make([]float32, bufSize)

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		n, err := src.ReadSamples(buf)
		frames := n / channels
		for f := range frames {
			base := f * channels
			for c := range channels {
				out[c] = append(out[c], buf[base+c])
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}

	if len(out[0]) == 0 {
		return nil, ErrEmptyStream
	}

	return &Buffer{sampleRate: src.SampleRate(), channels: out}, nil
}

// BufferSource streams a window of a Buffer as an interleaved Source.
type BufferSource struct {
	buf  *Buffer
	pos  int
	end  int
	size int
}

// NewBufferSource reads frames [start, start+frames) of buf. A non-positive
// frames value reads to the end of the buffer.
func NewBufferSource(buf *Buffer, start, frames int) *BufferSource {
	start = max(0, min(start, buf.Length()))
	end := buf.Length()
	if frames > 0 {
		end = min(start+frames, end)
	}

	return &BufferSource{buf: buf, pos: start, end: end, size: 4096}
}

func (s *BufferSource) SampleRate() int { return s.buf.sampleRate }
func (s *BufferSource) Channels() int   { return len(s.buf.channels) }
func (s *BufferSource) BufSize() int    { return s.size }
func (s *BufferSource) Close() error    { return nil }
func (s *BufferSource) Frames() int64   { return int64(s.end - s.pos) }

func (s *BufferSource) ReadSamples(dst []float32) (int, error) {
	channels := len(s.buf.channels)
	if len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if s.pos >= s.end {
		return 0, io.EOF
	}

	frames := min(len(dst)/channels, s.end-s.pos)
	for f := range frames {
		for c, ch := range s.buf.channels {
			dst[f*channels+c] = ch[s.pos+f]
		}
	}
	s.pos += frames

	if s.pos >= s.end {
		return frames * channels, io.EOF
	}

	return frames * channels, nil
}
