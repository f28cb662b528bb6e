// SPDX-License-Identifier: EPL-2.0

package params

import (
	"math"
	"sync"
)

// Observer is told about writes that affect playback already in progress.
// Notifications run outside the store lock and concurrent writes may
// deliver them out of order; Snapshot holds the current values.
type Observer interface {
	// OnLiveChange follows a write to an Immediate field.
	OnLiveChange(p Parameters)
	// OnDensityChange follows a write to the density.
	OnDensityChange(p Parameters)
}

// Store is the single mutable copy of the grain parameters. It is safe for
// concurrent use.
type Store struct {
	mu sync.RWMutex
	p  Parameters

	obsMu     sync.Mutex
	nextObsID int
	observers map[int]Observer
}

// NewStore returns a store holding initial, normalized.
func NewStore(initial Parameters) (*Store, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}

	return &Store{
		p:         initial.Normalize(),
		observers: make(map[int]Observer),
	}, nil
}

// Snapshot returns a copy of the current parameters.
func (s *Store) Snapshot() Parameters {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.p
}

// Subscribe registers o and returns a function that removes it again.
func (s *Store) Subscribe(o Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = o

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()

		delete(s.observers, id)
	}
}

// Set validates v, clamps it where the field is bounded, stores it and
// notifies observers according to ClassOf(f). A pitch shift is rounded to
// whole semitones.
func (s *Store) Set(f Field, v float64) error {
	if err := check(f, v); err != nil {
		return err
	}

	s.mu.Lock()
	switch f {
	case FieldGrainSize:
		s.p.GrainSize = v
	case FieldDensity:
		s.p.Density = v
	case FieldPitchShift:
		s.p.PitchShift = int(max(MinPitchShift, min(math.Round(v), MaxPitchShift)))
	case FieldPlaybackRate:
		s.p.PlaybackRate = v
	case FieldPlaybackPosition:
		s.p.PlaybackPosition = clamp01(v)
	case FieldPositionVariation:
		s.p.PositionVariation = clamp01(v)
	case FieldAttackTime:
		s.p.AttackTime = v
	case FieldReleaseTime:
		s.p.ReleaseTime = v
	}
	snap := s.p
	s.mu.Unlock()

	s.notify(ClassOf(f), snap)

	return nil
}

func (s *Store) SetGrainSize(seconds float64) error { return s.Set(FieldGrainSize, seconds) }
func (s *Store) SetDensity(perSecond float64) error { return s.Set(FieldDensity, perSecond) }
func (s *Store) SetPitchShift(semitones int) error  { return s.Set(FieldPitchShift, float64(semitones)) }
func (s *Store) SetPlaybackRate(rate float64) error { return s.Set(FieldPlaybackRate, rate) }

func (s *Store) SetPlaybackPosition(pos float64) error {
	return s.Set(FieldPlaybackPosition, pos)
}

func (s *Store) SetPositionVariation(v float64) error {
	return s.Set(FieldPositionVariation, v)
}

func (s *Store) SetAttackTime(seconds float64) error  { return s.Set(FieldAttackTime, seconds) }
func (s *Store) SetReleaseTime(seconds float64) error { return s.Set(FieldReleaseTime, seconds) }

// Apply replaces all parameters under one lock, so no reader sees a mix of
// old and new values. Observers get one live change and one density change.
func (s *Store) Apply(p Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p = p.Normalize()

	s.mu.Lock()
	s.p = p
	s.mu.Unlock()

	s.notify(Immediate, p)
	s.notify(Reconfigure, p)

	return nil
}

func (s *Store) notify(c Class, p Parameters) {
	if c == NextGrainOnly {
		return
	}

	s.obsMu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.obsMu.Unlock()

	for _, o := range observers {
		if c == Immediate {
			o.OnLiveChange(p)
		} else {
			o.OnDensityChange(p)
		}
	}
}
