// SPDX-License-Identifier: EPL-2.0

package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ik5/audgrain/audio"
)

// Artifact describes an exported file.
type Artifact struct {
	Name     string
	Format   Format
	MIMEType string
	Size     int64
	Location string
}

// Metrics is told about every finished export.
type Metrics interface {
	ExportDone(ctx context.Context, format string, d time.Duration, err error)
}

type Option func(*Exporter)

func WithEncoders(r *EncoderRegistry) Option {
	return func(e *Exporter) {
		if r != nil {
			e.encoders = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(e *Exporter) {
		e.metrics = m
	}
}

// Exporter encodes buffers and delivers them to a Sink.
type Exporter struct {
	encoders *EncoderRegistry
	sink     Sink
	log      *slog.Logger
	metrics  Metrics
}

func NewExporter(sink Sink, opts ...Option) (*Exporter, error) {
	if sink == nil {
		return nil, ErrNilSink
	}

	e := &Exporter{
		encoders: DefaultEncoders(),
		sink:     sink,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Encoders returns the registry formats are looked up in.
func (e *Exporter) Encoders() *EncoderRegistry {
	return e.encoders
}

// Export encodes buf according to s and stores the result.
func (e *Exporter) Export(ctx context.Context, buf *audio.Buffer, s Settings) (a Artifact, err error) {
	if buf == nil {
		return Artifact{}, ErrNoAudio
	}
	if err := s.Validate(); err != nil {
		return Artifact{}, err
	}

	enc, ok := e.encoders.Get(s.Format)
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %s", ErrEncoderUnavailable, s.Format)
	}

	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.ExportDone(ctx, string(s.Format), time.Since(start), err)
		}
	}()

	var out bytes.Buffer
	if err := enc.Encode(ctx, &out, buf, s); err != nil {
		return Artifact{}, fmt.Errorf("encode %s: %w", s.Format, err)
	}

	name := s.FileName()
	size := int64(out.Len())
	loc, err := e.sink.Put(ctx, name, &out)
	if err != nil {
		return Artifact{}, fmt.Errorf("store %s: %w", name, err)
	}

	e.log.Info("audio exported",
		slog.String("name", name),
		slog.Int64("bytes", size),
		slog.String("location", loc),
	)

	return Artifact{
		Name:     name,
		Format:   s.Format,
		MIMEType: s.Format.MIMEType(),
		Size:     size,
		Location: loc,
	}, nil
}
