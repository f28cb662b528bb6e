// SPDX-License-Identifier: EPL-2.0

package grain

type slot struct {
	gen   uint32
	used  bool
	voice Voice
}

// Pool holds live voices in creation order. It is not safe for concurrent
// use; the scheduler guards it.
type Pool struct {
	slots []slot
	free  []uint32
	order []ID
}

func NewPool() *Pool {
	return &Pool{}
}

// Add stores v, assigns it an ID and returns the ID.
func (p *Pool) Add(v Voice) ID {
	var idx uint32
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		idx = uint32(len(p.slots))
		p.slots = append(p.slots, slot{})
	}

	s := &p.slots[idx]
	s.gen++
	s.used = true
	v.ID = ID{Index: idx, Gen: s.gen}
	s.voice = v
	p.order = append(p.order, v.ID)

	return v.ID
}

// Get returns the voice for id if it is still in the pool.
func (p *Pool) Get(id ID) (Voice, bool) {
	if !p.valid(id) {
		return Voice{}, false
	}

	return p.slots[id.Index].voice, true
}

// SetState updates the state of a pooled voice.
func (p *Pool) SetState(id ID, st State) error {
	if !p.valid(id) {
		return ErrStaleID
	}
	p.slots[id.Index].voice.State = st

	return nil
}

// Remove takes the voice out of the pool and returns it.
func (p *Pool) Remove(id ID) (Voice, error) {
	if !p.valid(id) {
		return Voice{}, ErrStaleID
	}

	for i, o := range p.order {
		if o == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}

	return p.release(id), nil
}

// EvictOldest removes up to n voices, oldest first, and returns them.
func (p *Pool) EvictOldest(n int) []Voice {
	n = max(0, min(n, len(p.order)))
	out := make([]Voice, 0, n)
	for _, id := range p.order[:n] {
		out = append(out, p.release(id))
	}
	p.order = append(p.order[:0], p.order[n:]...)

	return out
}

// Drain empties the pool and returns every voice, oldest first.
func (p *Pool) Drain() []Voice {
	return p.EvictOldest(len(p.order))
}

func (p *Pool) Len() int { return len(p.order) }

// Voices returns a copy of the live voices in creation order.
func (p *Pool) Voices() []Voice {
	out := make([]Voice, len(p.order))
	for i, id := range p.order {
		out[i] = p.slots[id.Index].voice
	}

	return out
}

func (p *Pool) valid(id ID) bool {
	if int(id.Index) >= len(p.slots) {
		return false
	}
	s := p.slots[id.Index]

	return s.used && s.gen == id.Gen
}

func (p *Pool) release(id ID) Voice {
	s := &p.slots[id.Index]
	v := s.voice
	s.used = false
	s.voice = Voice{}
	p.free = append(p.free, id.Index)

	return v
}
