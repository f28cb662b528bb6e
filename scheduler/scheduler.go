// SPDX-License-Identifier: EPL-2.0

package scheduler

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/grain"
	"github.com/ik5/audgrain/params"
)

// Scheduler decides when grains start and with which parameters. It is
// safe for concurrent use.
type Scheduler struct {
	store   *params.Store
	engine  grain.Engine
	log     *slog.Logger
	metrics Metrics
	rng     grain.Rand
	now     func() time.Time
	onTick  func(time.Time)
	onState func(grain.Voice)

	maxVoices  int
	evictBatch int
	grace      time.Duration

	unsubscribe func()

	// mu serializes ticks with Start, Stop and buffer changes.
	mu       sync.Mutex
	playing  atomic.Bool
	closed   bool
	buf      *audio.Buffer
	pool     *grain.Pool
	loop     *loop
	interval time.Duration
	pending  map[*time.Timer][]grain.Voice // evicted, Released
	failures uint64
}

type loop struct {
	reconfig chan time.Duration
	done     chan struct{}
	exited   chan struct{}
}

// New returns a stopped scheduler observing store.
func New(store *params.Store, engine grain.Engine, opts ...Option) (*Scheduler, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if engine == nil {
		return nil, ErrNilEngine
	}

	s := &Scheduler{
		store:      store,
		engine:     engine,
		log:        slog.Default(),
		metrics:    nopMetrics{},
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:        time.Now,
		maxVoices:  DefaultMaxVoices,
		evictBatch: DefaultEvictBatch,
		grace:      DefaultEvictionGrace,
		pool:       grain.NewPool(),
		pending:    make(map[*time.Timer][]grain.Voice),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.interval = intervalOf(store.Snapshot())
	s.unsubscribe = store.Subscribe(s)

	return s, nil
}

// SetBuffer replaces the buffer grains are cut from. Playback is stopped
// first. A nil buffer unloads.
func (s *Scheduler) SetBuffer(buf *audio.Buffer) error {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.buf = buf

	return nil
}

// Buffer returns the loaded buffer or nil.
func (s *Scheduler) Buffer() *audio.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buf
}

// Start begins triggering grains. It does nothing while already playing or
// without a buffer.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.playing.Load() {
		return nil
	}
	if s.buf == nil {
		s.log.Debug("start ignored, no buffer loaded")
		return nil
	}

	p := s.store.Snapshot()
	if base, ok := s.engine.(grain.BaseVoice); ok {
		if err := base.StartBase(s.buf, grain.LiveFrom(p)); err != nil {
			s.log.Warn("base voice did not start", slog.Any("error", err))
		}
	}

	l := &loop{
		reconfig: make(chan time.Duration, 1),
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	s.loop = l
	s.interval = intervalOf(p)
	s.playing.Store(true)

	go s.run(l, s.interval)

	s.log.Debug("playback started", slog.Duration("interval", s.interval))

	return nil
}

// Stop halts the ticker, waits for it to exit and disposes every active
// voice. It does nothing while stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.playing.Load() {
		s.mu.Unlock()
		return
	}

	l := s.loop
	s.loop = nil
	s.playing.Store(false)
	close(l.done)

	active := s.pool.Drain()
	s.metrics.VoicesChanged(-len(active))
	voices := append(active, s.flushPending()...)
	s.mu.Unlock()

	<-l.exited

	s.dispose(voices)
	if base, ok := s.engine.(grain.BaseVoice); ok {
		base.StopBase()
	}

	s.log.Debug("playback stopped", slog.Int("disposed", len(voices)))
}

// Close stops playback and detaches from the parameter store. It is safe
// to call more than once.
func (s *Scheduler) Close() error {
	s.Stop()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	voices := s.flushPending()
	s.mu.Unlock()

	s.unsubscribe()
	s.dispose(voices)

	return nil
}

// Retire marks a voice Disposed and drops it from the pool, or from its
// eviction batch when it was already released. Engines call it, through
// the done callback, once a voice stops sounding. Unknown ids are ignored.
func (s *Scheduler) Retire(id grain.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, err := s.pool.Remove(id); err == nil {
		s.metrics.VoicesChanged(-1)
		s.setState(&v, grain.Disposed)
		return
	}

	for t, batch := range s.pending {
		i := slices.IndexFunc(batch, func(v grain.Voice) bool { return v.ID == id })
		if i < 0 {
			continue
		}
		v := batch[i]
		batch = slices.Delete(batch, i, i+1)
		if len(batch) == 0 {
			t.Stop()
			delete(s.pending, t)
		} else {
			s.pending[t] = batch
		}
		s.setState(&v, grain.Disposed)
		return
	}
}

func (s *Scheduler) IsPlaying() bool {
	return s.playing.Load()
}

// Interval is the time between two grain triggers.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.interval
}

// ActiveVoices returns the pooled voices in creation order.
func (s *Scheduler) ActiveVoices() []grain.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pool.Voices()
}

// ReleasedVoices returns the evicted voices still inside their grace
// period, oldest first.
func (s *Scheduler) ReleasedVoices() []grain.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []grain.Voice
	for _, batch := range s.pending {
		out = append(out, batch...)
	}
	slices.SortFunc(out, func(a, b grain.Voice) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.Index, b.ID.Index)
	})

	return out
}

func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pool.Len()
}

// Failures is the number of ticks whose grain could not be started.
func (s *Scheduler) Failures() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.failures
}

// OnLiveChange forwards live parameters to the engine while playing. The
// store is read again so a late notification cannot restore older values.
func (s *Scheduler) OnLiveChange(params.Parameters) {
	if !s.playing.Load() {
		return
	}
	s.engine.UpdateLive(grain.LiveFrom(s.store.Snapshot()))
}

// OnDensityChange moves the running ticker to the current interval. Like
// OnLiveChange it reads the store rather than the notified snapshot.
func (s *Scheduler) OnDensityChange(params.Parameters) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := intervalOf(s.store.Snapshot())
	s.interval = d
	if s.loop == nil {
		return
	}

	// only the latest interval matters
	select {
	case <-s.loop.reconfig:
	default:
	}
	s.loop.reconfig <- d
	s.metrics.Reconfigured()
}

func (s *Scheduler) run(l *loop, interval time.Duration) {
	defer close(l.exited)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case d := <-l.reconfig:
			ticker.Reset(d)
			s.log.Debug("density changed", slog.Duration("interval", d))
		case <-ticker.C:
			s.tick(l)
		}
	}
}

func (s *Scheduler) tick(l *loop) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stop ran while this tick waited for the lock
	if s.loop != l {
		return
	}

	now := s.now()
	if s.onTick != nil {
		s.onTick(now)
	}

	v, err := grain.New(s.store.Snapshot(), s.buf.Duration(), s.rng, now)
	if err != nil {
		s.fail(err)
		return
	}

	v.ID = s.pool.Add(v)
	s.setState(&v, grain.Created)
	if err := s.trigger(v); err != nil {
		_, _ = s.pool.Remove(v.ID)
		s.setState(&v, grain.Disposed)
		s.fail(err)
		return
	}
	_ = s.pool.SetState(v.ID, grain.Sounding)
	s.setState(&v, grain.Sounding)
	s.metrics.GrainTriggered()
	s.metrics.VoicesChanged(1)

	if s.pool.Len() > s.maxVoices {
		s.evict()
	}
}

func (s *Scheduler) trigger(v grain.Voice) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTriggerPanic, r)
		}
	}()

	return s.engine.Trigger(v, s.buf, s.Retire)
}

func (s *Scheduler) fail(err error) {
	s.failures++
	s.metrics.GrainFailed()
	s.log.Warn("grain skipped", slog.Any("error", err))
}

// evict moves the oldest voices out of the pool and disposes them after
// the grace period. Called with mu held.
func (s *Scheduler) evict() {
	voices := s.pool.EvictOldest(s.evictBatch)
	for i := range voices {
		s.setState(&voices[i], grain.Released)
	}
	s.metrics.VoicesChanged(-len(voices))
	s.metrics.VoicesEvicted(len(voices))

	var t *time.Timer
	t = time.AfterFunc(s.grace, func() {
		s.mu.Lock()
		batch, ok := s.pending[t]
		delete(s.pending, t)
		s.mu.Unlock()

		if ok {
			s.dispose(batch)
		}
	})
	s.pending[t] = voices

	s.log.Debug("voices evicted", slog.Int("count", len(voices)))
}

// flushPending cancels the eviction timers and returns the voices they
// would have disposed. Called with mu held.
func (s *Scheduler) flushPending() []grain.Voice {
	var voices []grain.Voice
	for t, batch := range s.pending {
		t.Stop()
		voices = append(voices, batch...)
		delete(s.pending, t)
	}

	return voices
}

// dispose tells the engine to drop voices. Called without mu.
func (s *Scheduler) dispose(voices []grain.Voice) {
	for i := range voices {
		s.setState(&voices[i], grain.Disposed)
		s.engine.Dispose(voices[i].ID)
	}
}

func (s *Scheduler) setState(v *grain.Voice, st grain.State) {
	v.State = st
	if s.onState != nil {
		s.onState(*v)
	}
}

// Interval bounds. Any positive density is accepted by the store; the
// ticker runs at most once per MinInterval and at least once per
// MaxInterval.
const (
	MinInterval = time.Millisecond
	MaxInterval = time.Hour
)

func intervalOf(p params.Parameters) time.Duration {
	sec := p.Interval()
	switch {
	case math.IsNaN(sec), sec >= MaxInterval.Seconds():
		return MaxInterval
	case sec <= MinInterval.Seconds():
		return MinInterval
	}

	return time.Duration(sec * float64(time.Second))
}
