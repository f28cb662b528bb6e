// SPDX-License-Identifier: EPL-2.0

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ik5/audgrain/export"
)

// ApplyEnv overrides cfg with the AUDGRAIN_* environment variables that
// are set. Values that do not parse are ignored.
func ApplyEnv(cfg *Config) {
	cfg.Log.Level = LogLevel(envStr("AUDGRAIN_LOG_LEVEL", string(cfg.Log.Level)))
	cfg.Log.Format = LogFormat(envStr("AUDGRAIN_LOG_FORMAT", string(cfg.Log.Format)))

	cfg.Params.Density = envFloat("AUDGRAIN_DENSITY", cfg.Params.Density)
	cfg.Params.GrainSize = envFloat("AUDGRAIN_GRAIN_SIZE", cfg.Params.GrainSize)

	cfg.Scheduler.MaxVoices = envInt("AUDGRAIN_MAX_VOICES", cfg.Scheduler.MaxVoices)
	cfg.Scheduler.EvictionGrace = envDuration("AUDGRAIN_EVICTION_GRACE", cfg.Scheduler.EvictionGrace)

	cfg.Engine.Kind = EngineKind(envStr("AUDGRAIN_ENGINE", string(cfg.Engine.Kind)))
	cfg.Engine.SampleRate = envInt("AUDGRAIN_SAMPLE_RATE", cfg.Engine.SampleRate)
	cfg.Engine.Channels = envInt("AUDGRAIN_CHANNELS", cfg.Engine.Channels)
	cfg.Engine.BaseVoice = envBool("AUDGRAIN_BASE_VOICE", cfg.Engine.BaseVoice)

	cfg.Export.Dir = envStr("AUDGRAIN_EXPORT_DIR", cfg.Export.Dir)
	cfg.Export.Format = export.Format(envStr("AUDGRAIN_EXPORT_FORMAT", string(cfg.Export.Format)))
	cfg.Export.BitRate = envInt("AUDGRAIN_EXPORT_BIT_RATE", cfg.Export.BitRate)
	cfg.Export.Filename = envStr("AUDGRAIN_EXPORT_FILENAME", cfg.Export.Filename)

	cfg.Metrics.Addr = envStr("AUDGRAIN_METRICS_ADDR", cfg.Metrics.Addr)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
