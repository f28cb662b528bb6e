// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audgrain/preset"
)

// Load reads the YAML file at path over the defaults, applies the
// environment and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer f.Close()

		if err := decode(f, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	ApplyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults and validates the
// result. The environment is not consulted.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decode(r, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode yaml: %w", err)
	}

	return nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Log.Level.IsValid() {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}
	if !cfg.Log.Format.IsValid() {
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: text, json", cfg.Log.Format))
	}

	if err := cfg.Params.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("params: %w", err))
	}

	s := cfg.Scheduler
	if s.MaxVoices <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.max_voices must be positive, got %d", s.MaxVoices))
	}
	if s.EvictBatch <= 0 || s.EvictBatch > s.MaxVoices {
		errs = append(errs, fmt.Errorf("scheduler.evict_batch must be in [1, max_voices], got %d", s.EvictBatch))
	}
	if s.EvictionGrace < 0 {
		errs = append(errs, fmt.Errorf("scheduler.eviction_grace must not be negative, got %s", s.EvictionGrace))
	}

	e := cfg.Engine
	if !e.Kind.IsValid() {
		errs = append(errs, fmt.Errorf("engine.kind %q is invalid; valid values: oto, offline", e.Kind))
	}
	if e.SampleRate < 8000 || e.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("engine.sample_rate must be in [8000, 192000], got %d", e.SampleRate))
	}
	if e.Channels < 1 || e.Channels > 8 {
		errs = append(errs, fmt.Errorf("engine.channels must be in [1, 8], got %d", e.Channels))
	}

	if cfg.Decode.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("decode.max_bytes must be positive, got %d", cfg.Decode.MaxBytes))
	}

	if err := cfg.Export.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("export: %w", err))
	}
	if cfg.Export.Dir == "" {
		errs = append(errs, errors.New("export.dir must not be empty"))
	}

	if len(cfg.Preset.Ranges) > 0 {
		if _, err := preset.NewGenerator(preset.WithRanges(cfg.Preset.Ranges)); err != nil {
			errs = append(errs, fmt.Errorf("preset.ranges: %w", err))
		}
	}

	return errors.Join(errs...)
}
