// SPDX-License-Identifier: EPL-2.0

// Package enginetest provides a recording grain.Engine for tests.
package enginetest

import (
	"errors"
	"sync"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/grain"
)

var ErrTrigger = errors.New("enginetest: trigger failed")

// Engine records every call. Set Fail or Panic to make Trigger misbehave.
type Engine struct {
	mu        sync.Mutex
	triggered []grain.Voice
	disposed  []grain.ID
	live      []grain.LiveParams
	done      map[grain.ID]func(grain.ID)
	baseOn    bool
	baseStart int

	Fail  bool
	Panic bool
}

func New() *Engine {
	return &Engine{done: make(map[grain.ID]func(grain.ID))}
}

func (e *Engine) Trigger(v grain.Voice, _ *audio.Buffer, done func(grain.ID)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Panic {
		panic("enginetest: trigger panic")
	}
	if e.Fail {
		return ErrTrigger
	}
	e.triggered = append(e.triggered, v)
	e.done[v.ID] = done

	return nil
}

func (e *Engine) UpdateLive(lp grain.LiveParams) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.live = append(e.live, lp)
}

func (e *Engine) Dispose(id grain.ID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.disposed = append(e.disposed, id)
	delete(e.done, id)
}

func (e *Engine) StartBase(_ *audio.Buffer, lp grain.LiveParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.baseOn = true
	e.baseStart++
	e.live = append(e.live, lp)

	return nil
}

func (e *Engine) StopBase() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.baseOn = false
}

// Finish reports every triggered voice that is still sounding as done,
// the way a real engine does when playback ends.
func (e *Engine) Finish() int {
	e.mu.Lock()
	pending := e.done
	e.done = make(map[grain.ID]func(grain.ID))
	e.mu.Unlock()

	for id, done := range pending {
		done(id)
	}

	return len(pending)
}

func (e *Engine) SetFail(fail bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Fail = fail
}

func (e *Engine) SetPanic(p bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Panic = p
}

func (e *Engine) Triggered() []grain.Voice {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]grain.Voice(nil), e.triggered...)
}

func (e *Engine) Disposed() []grain.ID {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]grain.ID(nil), e.disposed...)
}

func (e *Engine) Live() []grain.LiveParams {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]grain.LiveParams(nil), e.live...)
}

// BaseRunning reports whether the base voice is started, and how many
// times it was.
func (e *Engine) BaseRunning() (bool, int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.baseOn, e.baseStart
}
