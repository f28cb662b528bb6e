// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"sync"
	"testing"
)

// stubDecoder hands out a fresh source built by newSrc, or fails with err.
type stubDecoder struct {
	newSrc func() Source
	err    error
	got    []byte
}

func (d *stubDecoder) Decode(r io.Reader) (Source, error) {
	if d.err != nil {
		return nil, d.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d.got = b

	return d.newSrc(), nil
}

func constantDecoder(rate, channels, frames int, v float32) *stubDecoder {
	return &stubDecoder{newSrc: func() Source {
		return newGenSource(rate, channels, frames, constantWave(v))
	}}
}

func TestRegistry_GetRegistered(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	wavDec := constantDecoder(44100, 2, 10, 0)
	mp3Dec := constantDecoder(44100, 2, 10, 0)
	reg.Register("wav", wavDec)
	reg.Register("mp3", mp3Dec)

	tests := []struct {
		format string
		want   Decoder
		wantOK bool
	}{
		{"wav", wavDec, true},
		{"mp3", mp3Dec, true},
		{"flac", nil, false},
		{"WAV", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			got, ok := reg.Get(tt.format)
			if ok != tt.wantOK {
				t.Fatalf("Get(%q) ok = %v, want %v", tt.format, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Get(%q) returned another decoder", tt.format)
			}
		})
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	first := constantDecoder(8000, 1, 1, 0)
	second := constantDecoder(8000, 1, 1, 0)
	reg.Register("wav", first)
	reg.Register("wav", second)

	got, _ := reg.Get("wav")
	if got != second {
		t.Error("Get() did not return the latest registration")
	}
	if n := len(reg.Formats()); n != 1 {
		t.Errorf("Formats() has %d entries, want 1", n)
	}
}

func TestRegistry_FormatsSorted(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if got := reg.Formats(); len(got) != 0 {
		t.Fatalf("Formats() on empty registry = %v", got)
	}

	for _, f := range []string{"wav", "aiff", "ogg", "mp3"} {
		reg.Register(f, constantDecoder(8000, 1, 1, 0))
	}

	want := []string{"aiff", "mp3", "ogg", "wav"}
	if got := reg.Formats(); !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	dec := constantDecoder(8000, 1, 1, 0)

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() { reg.Register("wav", dec) })
		wg.Go(func() { _, _ = reg.Get("wav") })
		wg.Go(func() { _ = reg.Formats() })
	}
	wg.Wait()

	if got, ok := reg.Get("wav"); !ok || got != dec {
		t.Error("registry lost the decoder under concurrent access")
	}
}

func TestStubDecoder_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	dec := &stubDecoder{err: boom}
	if _, err := dec.Decode(nil); !errors.Is(err, boom) {
		t.Fatalf("Decode() error = %v, want %v", err, boom)
	}
}

func BenchmarkRegistry_Get(b *testing.B) {
	reg := NewRegistry()
	reg.Register("wav", constantDecoder(8000, 1, 1, 0))

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		_, _ = reg.Get("wav")
	}
}

func BenchmarkRegistry_Formats(b *testing.B) {
	reg := NewRegistry()
	for _, f := range []string{"wav", "mp3", "ogg", "aiff"} {
		reg.Register(f, constantDecoder(8000, 1, 1, 0))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		_ = reg.Formats()
	}
}
