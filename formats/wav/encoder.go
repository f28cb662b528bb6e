// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/utils"
)

// HeaderSize is the length of the canonical PCM header written by this package.
const HeaderSize = 44

// frames converted per write
const chunkFrames = 4096

// MaxChannels is the widest layout whose 16-bit block align still fits the
// header field.
const MaxChannels = math.MaxUint16 / 2

// header returns the canonical 44-byte RIFF/WAVE header for 16-bit PCM.
func header(sampleRate, channels int, samples int) ([]byte, error) {
	if sampleRate <= 0 || sampleRate > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", audio.ErrInvalidSampleRate, sampleRate)
	}
	if channels <= 0 || channels > MaxChannels {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	dataBytes := uint64(samples) * 2
	byteRate := uint64(sampleRate) * uint64(channels) * 2
	if dataBytes > math.MaxUint32-36 || byteRate > math.MaxUint32 {
		return nil, ErrDataTooLarge
	}

	h := make([]byte, HeaderSize)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+dataBytes))
	copy(h[8:12], "WAVE")

	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], formatPCM)
	binary.LittleEndian.PutUint16(h[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(h[34:36], 16)

	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataBytes))

	return h, nil
}

// WriteWAV16 writes interleaved int16 samples as a 16-bit PCM WAV.
func WriteWAV16(w io.Writer, sampleRate, channels int, samples []int16) error {
	if channels > 0 && len(samples)%channels != 0 {
		return fmt.Errorf("%w: %d samples for %d channels", audio.ErrInvalidDstSize, len(samples), channels)
	}

	h, err := header(sampleRate, channels, len(samples))
	if err != nil {
		return err
	}
	if _, err := w.Write(h); err != nil {
		return fmt.Errorf("%w", err)
	}

	out := make([]byte, min(len(samples), chunkFrames*channels)*2)
	for len(samples) > 0 {
		n := min(len(samples), len(out)/2)
		for i, s := range samples[:n] {
			binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
		}
		if _, err := w.Write(out[:2*n]); err != nil {
			return fmt.Errorf("%w", err)
		}
		samples = samples[n:]
	}

	return nil
}

// WriteBuffer encodes buf as a 16-bit PCM WAV, interleaving channels frame
// by frame. Samples are clamped to [-1, 1]; negatives scale by 32768 and
// positives by 32767.
func WriteBuffer(w io.Writer, buf *audio.Buffer) error {
	if buf == nil {
		return ErrNilBuffer
	}

	channels := buf.NumChannels()
	frames := buf.Length()

	h, err := header(buf.SampleRate(), channels, frames*channels)
	if err != nil {
		return err
	}
	if _, err := w.Write(h); err != nil {
		return fmt.Errorf("%w", err)
	}

	out := make([]byte, min(frames, chunkFrames)*channels*2)
	for start := 0; start < frames; start += chunkFrames {
		end := min(start+chunkFrames, frames)
		i := 0
		for f := start; f < end; f++ {
			for c := range channels {
				binary.LittleEndian.PutUint16(out[i:], uint16(utils.Float32ToInt16(buf.Channel(c)[f])))
				i += 2
			}
		}
		if _, err := w.Write(out[:i]); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

// Encode returns buf as a complete WAV file.
func Encode(buf *audio.Buffer) ([]byte, error) {
	if buf == nil {
		return nil, ErrNilBuffer
	}

	var out bytes.Buffer
	out.Grow(HeaderSize + buf.Length()*buf.NumChannels()*2)
	if err := WriteBuffer(&out, buf); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}
