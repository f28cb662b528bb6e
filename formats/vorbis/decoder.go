// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audgrain/audio"
)

// oggReader is the subset of *oggvorbis.Reader the source uses.
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read([]float32) (int, error)
}

type source struct {
	dec      oggReader
	channels int
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

// Frames is known only when the input was seekable.
func (s *source) Frames() int64 { return max(s.dec.Length(), 0) }

// ReadSamples decodes straight into dst. oggvorbis always returns whole
// frames, counted in interleaved values.
func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("%w", err)
	}
	if n == 0 && err != nil {
		return 0, io.EOF
	}

	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec)
}

func newSource(dec oggReader) (*source, error) {
	if dec.Channels() <= 0 {
		return nil, audio.ErrNoChannels
	}

	return &source{dec: dec, channels: dec.Channels()}, nil
}
