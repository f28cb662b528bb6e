// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audgrain/audio"
)

// go-mp3 always decodes to 16-bit stereo
const (
	channels   = 2
	frameBytes = 4
)

// mp3Reader is the subset of *gomp3.Decoder the source uses, so tests can
// substitute it.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 }

// Frames uses the decoded length, which go-mp3 only knows for seekable input.
func (s *source) Frames() int64 {
	if n := s.dec.Length(); n > 0 {
		return n / frameBytes
	}
	return 0
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.dec, s.buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		err = nil
		if n < frameBytes {
			return 0, io.EOF
		}
	default:
		return 0, fmt.Errorf("%w", err)
	}

	samples := (n / frameBytes) * channels
	for i := range samples {
		v := int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8)
		dst[i] = float32(v) / 32768
	}

	return samples, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec), nil
}

func newSource(dec mp3Reader) *source {
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}
}
