// SPDX-License-Identifier: EPL-2.0

package audgrain

import (
	"context"
	"log/slog"
	"time"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/export"
	"github.com/ik5/audgrain/params"
	"github.com/ik5/audgrain/preset"
	"github.com/ik5/audgrain/scheduler"
)

// Metrics receives everything a Granulator measures.
type Metrics interface {
	scheduler.Metrics
	export.Metrics

	DecodeDone(ctx context.Context, format string, d time.Duration, err error)
}

type Option func(*options)

type options struct {
	log       *slog.Logger
	metrics   Metrics
	params    params.Parameters
	sched     []scheduler.Option
	decoders  *audio.Registry
	limits    *audio.Limits
	ranges    preset.Ranges
	presetRng preset.Rand
	sink      export.Sink
	encoders  *export.EncoderRegistry
	settings  export.Settings
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithParameters sets the initial grain parameters.
func WithParameters(p params.Parameters) Option {
	return func(o *options) {
		o.params = p
	}
}

// WithSchedulerOptions is passed through to scheduler.New after the
// logger and metrics.
func WithSchedulerOptions(opts ...scheduler.Option) Option {
	return func(o *options) {
		o.sched = append(o.sched, opts...)
	}
}

// WithDecoders replaces the decoder registry. NewDefaultRegistry is used
// otherwise.
func WithDecoders(r *audio.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.decoders = r
		}
	}
}

// WithDecodeLimits restricts what Load accepts. audio.DefaultLimits
// applies without this option. Empty extension lists
// fall back to the registered formats, a zero MaxBytes to
// audio.DefaultMaxBytes. An empty MIME list disables the MIME check.
func WithDecodeLimits(l audio.Limits) Option {
	return func(o *options) {
		o.limits = &l
	}
}

// WithPresetRanges overrides random preset ranges per field.
func WithPresetRanges(rs preset.Ranges) Option {
	return func(o *options) {
		o.ranges = rs
	}
}

func WithPresetRand(r preset.Rand) Option {
	return func(o *options) {
		o.presetRng = r
	}
}

// WithSink sets where exports are stored. The current directory is used
// otherwise.
func WithSink(s export.Sink) Option {
	return func(o *options) {
		if s != nil {
			o.sink = s
		}
	}
}

func WithEncoders(r *export.EncoderRegistry) Option {
	return func(o *options) {
		o.encoders = r
	}
}

// WithExportSettings sets the initial export state.
func WithExportSettings(s export.Settings) Option {
	return func(o *options) {
		o.settings = s
	}
}
