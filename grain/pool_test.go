// SPDX-License-Identifier: EPL-2.0

package grain

import (
	"errors"
	"testing"
)

func voiceAt(pos float64) Voice {
	return Voice{SourcePositionSeconds: pos}
}

func TestPool_AddGetRemove(t *testing.T) {
	t.Parallel()

	p := NewPool()
	a := p.Add(voiceAt(1))
	b := p.Add(voiceAt(2))

	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}

	v, ok := p.Get(b)
	if !ok || v.SourcePositionSeconds != 2 || v.ID != b {
		t.Fatalf("Get(%v) = %+v, %v", b, v, ok)
	}

	if _, err := p.Remove(a); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := p.Get(a); ok {
		t.Error("Get() found a removed voice")
	}
	if _, err := p.Remove(a); !errors.Is(err, ErrStaleID) {
		t.Errorf("second Remove() error = %v, want ErrStaleID", err)
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
}

func TestPool_StaleIDAfterReuse(t *testing.T) {
	t.Parallel()

	p := NewPool()
	old := p.Add(voiceAt(1))
	if _, err := p.Remove(old); err != nil {
		t.Fatal(err)
	}

	fresh := p.Add(voiceAt(2))
	if fresh.Index != old.Index {
		t.Fatalf("slot not reused: %v vs %v", fresh, old)
	}
	if fresh == old {
		t.Fatal("reused slot kept the same generation")
	}
	if _, ok := p.Get(old); ok {
		t.Error("stale id resolved to the new voice")
	}
	if err := p.SetState(old, Disposed); !errors.Is(err, ErrStaleID) {
		t.Errorf("SetState(stale) = %v, want ErrStaleID", err)
	}
	if _, ok := p.Get(ID{}); ok {
		t.Error("zero id resolved")
	}
	if _, ok := p.Get(ID{Index: 99, Gen: 1}); ok {
		t.Error("out of range id resolved")
	}
}

func TestPool_EvictOldest(t *testing.T) {
	t.Parallel()

	p := NewPool()
	for i := range 10 {
		p.Add(voiceAt(float64(i)))
	}

	evicted := p.EvictOldest(4)
	if len(evicted) != 4 {
		t.Fatalf("evicted %d, want 4", len(evicted))
	}
	for i, v := range evicted {
		if v.SourcePositionSeconds != float64(i) {
			t.Errorf("evicted[%d] = %v, want %d", i, v.SourcePositionSeconds, i)
		}
	}

	rest := p.Voices()
	if len(rest) != 6 || rest[0].SourcePositionSeconds != 4 || rest[5].SourcePositionSeconds != 9 {
		t.Errorf("Voices() after eviction = %+v", rest)
	}

	if got := p.EvictOldest(100); len(got) != 6 {
		t.Errorf("EvictOldest(100) = %d voices, want 6", len(got))
	}
	if got := p.EvictOldest(-1); len(got) != 0 {
		t.Errorf("EvictOldest(-1) = %d voices, want 0", len(got))
	}
}

func TestPool_OrderSurvivesReuse(t *testing.T) {
	t.Parallel()

	p := NewPool()
	a := p.Add(voiceAt(0))
	p.Add(voiceAt(1))
	if _, err := p.Remove(a); err != nil {
		t.Fatal(err)
	}
	p.Add(voiceAt(2)) // reuses slot 0

	got := p.Voices()
	if len(got) != 2 || got[0].SourcePositionSeconds != 1 || got[1].SourcePositionSeconds != 2 {
		t.Errorf("Voices() = %+v, want creation order 1, 2", got)
	}
}

func TestPool_DrainAndState(t *testing.T) {
	t.Parallel()

	p := NewPool()
	ids := []ID{p.Add(voiceAt(0)), p.Add(voiceAt(1)), p.Add(voiceAt(2))}

	if err := p.SetState(ids[1], Sounding); err != nil {
		t.Fatal(err)
	}
	if v, _ := p.Get(ids[1]); v.State != Sounding {
		t.Errorf("State = %v, want sounding", v.State)
	}

	drained := p.Drain()
	if len(drained) != 3 || p.Len() != 0 {
		t.Fatalf("Drain() = %d voices, Len() = %d", len(drained), p.Len())
	}
	for _, id := range ids {
		if _, ok := p.Get(id); ok {
			t.Errorf("Get(%v) found a drained voice", id)
		}
	}
}

func BenchmarkPool_AddEvict(b *testing.B) {
	p := NewPool()

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		p.Add(Voice{})
		if p.Len() > 100 {
			p.EvictOldest(50)
		}
	}
}
