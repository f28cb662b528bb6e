// SPDX-License-Identifier: EPL-2.0

package export

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/formats/wav"
)

// Encoder writes buf to w in one container format.
type Encoder interface {
	Encode(ctx context.Context, w io.Writer, buf *audio.Buffer, s Settings) error
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(ctx context.Context, w io.Writer, buf *audio.Buffer, s Settings) error

func (f EncoderFunc) Encode(ctx context.Context, w io.Writer, buf *audio.Buffer, s Settings) error {
	return f(ctx, w, buf, s)
}

// EncoderRegistry maps formats to encoders.
type EncoderRegistry struct {
	encoders map[Format]Encoder

	mtx *sync.Mutex
}

func NewEncoderRegistry() *EncoderRegistry {
	return &EncoderRegistry{
		encoders: make(map[Format]Encoder),
		mtx:      &sync.Mutex{},
	}
}

// DefaultEncoders returns a registry holding the WAV encoder.
func DefaultEncoders() *EncoderRegistry {
	r := NewEncoderRegistry()
	r.Register(FormatWAV, WAVEncoder{})

	return r
}

func (r *EncoderRegistry) Register(f Format, e Encoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.encoders[f] = e
}

func (r *EncoderRegistry) Get(f Format) (Encoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	e, ok := r.encoders[f]
	return e, ok
}

func (r *EncoderRegistry) Formats() []Format {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	formats := make([]Format, 0, len(r.encoders))
	for f := range r.encoders {
		formats = append(formats, f)
	}
	slices.Sort(formats)

	return formats
}

// WAVEncoder writes 16-bit PCM WAV.
type WAVEncoder struct{}

func (WAVEncoder) Encode(ctx context.Context, w io.Writer, buf *audio.Buffer, _ Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return wav.WriteBuffer(w, buf)
}
