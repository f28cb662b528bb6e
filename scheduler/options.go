// SPDX-License-Identifier: EPL-2.0

package scheduler

import (
	"log/slog"
	"time"

	"github.com/ik5/audgrain/grain"
)

// Default pool limits.
const (
	DefaultMaxVoices     = 100
	DefaultEvictBatch    = 50
	DefaultEvictionGrace = time.Second
)

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRand sets the random source grains draw their jitter from.
func WithRand(r grain.Rand) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithPoolLimits evicts the evict oldest voices once more than limit are
// active. Non-positive values keep the defaults; evict is capped at limit.
func WithPoolLimits(limit, evict int) Option {
	return func(s *Scheduler) {
		if limit > 0 {
			s.maxVoices = limit
		}
		if evict > 0 {
			s.evictBatch = evict
		}
		s.evictBatch = min(s.evictBatch, s.maxVoices)
	}
}

// WithEvictionGrace sets how long evicted voices keep sounding before they
// are disposed.
func WithEvictionGrace(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.grace = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTickHook registers fn to run at the start of every tick.
func WithTickHook(fn func(time.Time)) Option {
	return func(s *Scheduler) {
		s.onTick = fn
	}
}

// WithStateHook registers fn to observe voice lifecycle transitions:
// Created, Sounding, Released and Disposed. fn may run with the scheduler
// lock held and must not call back into the Scheduler.
func WithStateHook(fn func(grain.Voice)) Option {
	return func(s *Scheduler) {
		s.onState = fn
	}
}
