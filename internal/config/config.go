// SPDX-License-Identifier: EPL-2.0

// Package config loads the audgrain configuration from YAML and the
// environment.
package config

import (
	"io"
	"log/slog"
	"time"

	"github.com/ik5/audgrain/export"
	"github.com/ik5/audgrain/params"
	"github.com/ik5/audgrain/preset"
	"github.com/ik5/audgrain/scheduler"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogText LogFormat = "text"
	LogJSON LogFormat = "json"
)

func (f LogFormat) IsValid() bool {
	return f == LogText || f == LogJSON
}

// EngineKind selects where grains are rendered.
type EngineKind string

const (
	EngineOto     EngineKind = "oto"
	EngineOffline EngineKind = "offline"
)

func (k EngineKind) IsValid() bool {
	return k == EngineOto || k == EngineOffline
}

// Config is the root configuration.
type Config struct {
	Log       LogConfig         `yaml:"log"`
	Params    params.Parameters `yaml:"params"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	Engine    EngineConfig      `yaml:"engine"`
	Decode    DecodeConfig      `yaml:"decode"`
	Export    ExportConfig      `yaml:"export"`
	Preset    PresetConfig      `yaml:"preset"`
	Metrics   MetricsConfig     `yaml:"metrics"`
}

type LogConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// NewLogger builds a logger writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level.slogLevel()}

	var handler slog.Handler
	if c.Format == LogJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

type SchedulerConfig struct {
	MaxVoices     int           `yaml:"max_voices"`
	EvictBatch    int           `yaml:"evict_batch"`
	EvictionGrace time.Duration `yaml:"eviction_grace"`
}

type EngineConfig struct {
	Kind       EngineKind `yaml:"kind"`
	SampleRate int        `yaml:"sample_rate"`
	Channels   int        `yaml:"channels"`
	// BaseVoice plays the looping base layer under the grains.
	BaseVoice bool `yaml:"base_voice"`
}

// DecodeConfig limits what may be loaded. Empty extension and MIME lists
// fall back to the registered decoders' defaults.
type DecodeConfig struct {
	Extensions []string `yaml:"extensions"`
	MIMETypes  []string `yaml:"mime_types"`
	MaxBytes   int64    `yaml:"max_bytes"`
}

type ExportConfig struct {
	export.Settings `yaml:",inline"`

	Dir string `yaml:"dir"`
}

type PresetConfig struct {
	// Ranges overrides the default random preset ranges per field.
	Ranges preset.Ranges `yaml:"ranges"`
}

type MetricsConfig struct {
	// Addr serves /metrics when set, e.g. ":9090".
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: LogInfo, Format: LogText},

		Params: params.Defaults(),

		Scheduler: SchedulerConfig{
			MaxVoices:     scheduler.DefaultMaxVoices,
			EvictBatch:    scheduler.DefaultEvictBatch,
			EvictionGrace: scheduler.DefaultEvictionGrace,
		},

		Engine: EngineConfig{
			Kind:       EngineOto,
			SampleRate: 44100,
			Channels:   2,
			BaseVoice:  true,
		},

		Decode: DecodeConfig{MaxBytes: 50 << 20},

		Export: ExportConfig{
			Settings: export.DefaultSettings(),
			Dir:      ".",
		},
	}
}
