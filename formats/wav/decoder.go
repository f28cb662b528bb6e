// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/audgrain/audio"
)

const formatPCM = 1

// wavDecoder is the part of *wav.Decoder the source reads from.
type wavDecoder interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type wavSource struct {
	dec        wavDecoder
	sampleRate int
	channels   int
	frames     int64
	// scale maps decoded integers onto [-1, 1), offset recentres unsigned 8-bit data
	scale  float32
	offset int
	intBuf *goaudio.IntBuffer
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) BufSize() int    { return 4096 }
func (s *wavSource) Close() error    { return nil }
func (s *wavSource) Frames() int64   { return s.frames }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	if cap(s.intBuf.Data) < len(dst) {
		s.intBuf.Data = make([]int, len(dst))
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%w", err)
	}
	// drop a trailing partial frame
	n -= n % s.channels
	if n == 0 {
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v-s.offset) * s.scale
	}

	return n, nil
}

// Decoder reads integer PCM WAV files of 8, 16, 24 or 32 bits.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		rs = bytes.NewReader(data)
	}

	d := wav.NewDecoder(rs)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
		}
		return nil, ErrNotWavFile
	}

	if d.WavAudioFormat != formatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedEncoding, d.WavAudioFormat)
	}

	var offset int
	switch d.BitDepth {
	case 8:
		offset = 128
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit", ErrUnsupportedEncoding, d.BitDepth)
	}

	if d.NumChans == 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, d.NumChans)
	}

	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	channels := int(d.NumChans)
	frameBytes := channels * int(d.BitDepth) / 8

	return &wavSource{
		dec:        d,
		sampleRate: int(d.SampleRate),
		channels:   channels,
		frames:     int64(d.PCMSize / frameBytes),
		scale:      1 / float32(int64(1)<<(d.BitDepth-1)),
		offset:     offset,
		intBuf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: int(d.SampleRate)},
			SourceBitDepth: int(d.BitDepth),
		},
	}, nil
}

// DecodeBuffer reads a whole WAV stream into a Buffer. It is the inverse
// of Encode up to 16-bit quantization.
func DecodeBuffer(r io.Reader) (*audio.Buffer, error) {
	src, err := Decoder{}.Decode(r)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	buf, err := audio.ReadAll(context.Background(), src)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return buf, nil
}
