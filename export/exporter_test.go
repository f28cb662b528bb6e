// SPDX-License-Identifier: EPL-2.0

package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/formats/wav"
	"github.com/ik5/audgrain/internal/audiotest"
)

type recordedExport struct {
	format string
	err    error
}

type exportMetrics struct {
	mu   sync.Mutex
	done []recordedExport
}

func (m *exportMetrics) ExportDone(_ context.Context, format string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.done = append(m.done, recordedExport{format, err})
}

func TestExport_WAV(t *testing.T) {
	t.Parallel()

	sink := NewMemorySink()
	m := &exportMetrics{}
	e, err := NewExporter(sink, WithMetrics(m))
	if err != nil {
		t.Fatal(err)
	}

	buf := audiotest.SineBuffer(8000, 2, 0.25, 440)
	a, err := e.Export(context.Background(), buf, DefaultSettings())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	wantSize := int64(wav.HeaderSize + buf.Length()*2*2)
	if a.Name != "granulated-audio.wav" || a.MIMEType != "audio/wav" || a.Size != wantSize {
		t.Errorf("Artifact = %+v, want size %d", a, wantSize)
	}

	data, err := sink.Get(a.Name)
	if err != nil {
		t.Fatal(err)
	}
	want, err := wav.Encode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, want) {
		t.Error("stored artifact differs from wav.Encode")
	}

	if len(m.done) != 1 || m.done[0].format != "wav" || m.done[0].err != nil {
		t.Errorf("metrics = %+v", m.done)
	}
}

func TestExport_NoAudio(t *testing.T) {
	t.Parallel()

	sink := NewMemorySink()
	e, _ := NewExporter(sink)

	// checked before anything else, even invalid settings
	if _, err := e.Export(context.Background(), nil, Settings{}); !errors.Is(err, ErrNoAudio) {
		t.Errorf("Export(nil) error = %v, want ErrNoAudio", err)
	}
	if n := len(sink.Names()); n != 0 {
		t.Errorf("sink holds %d artifacts", n)
	}
}

func TestExport_MP3Unavailable(t *testing.T) {
	t.Parallel()

	sink := NewMemorySink()
	e, _ := NewExporter(sink)

	s := DefaultSettings()
	s.Format = FormatMP3
	_, err := e.Export(context.Background(), audiotest.SineBuffer(8000, 1, 0.1, 440), s)
	if !errors.Is(err, ErrEncoderUnavailable) {
		t.Fatalf("Export(mp3) error = %v, want ErrEncoderUnavailable", err)
	}
	if n := len(sink.Names()); n != 0 {
		t.Errorf("sink holds %d artifacts", n)
	}
}

func TestExport_CustomEncoder(t *testing.T) {
	t.Parallel()

	reg := DefaultEncoders()
	var gotRate int
	reg.Register(FormatMP3, EncoderFunc(func(_ context.Context, w io.Writer, _ *audio.Buffer, s Settings) error {
		gotRate = s.BitRate
		_, err := w.Write([]byte("ID3"))
		return err
	}))

	sink := NewMemorySink()
	e, _ := NewExporter(sink, WithEncoders(reg))

	s := Settings{Format: FormatMP3, BitRate: 256, Filename: "take"}
	a, err := e.Export(context.Background(), audiotest.SineBuffer(8000, 1, 0.1, 440), s)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if a.Name != "take.mp3" || a.MIMEType != "audio/mpeg" || a.Size != 3 || gotRate != 256 {
		t.Errorf("Artifact = %+v, bit rate %d", a, gotRate)
	}
	if got := e.Encoders().Formats(); len(got) != 2 || got[0] != FormatMP3 || got[1] != FormatWAV {
		t.Errorf("Formats() = %v", got)
	}
}

func TestExport_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	buf := audiotest.SineBuffer(8000, 1, 0.1, 440)

	t.Run("encoder", func(t *testing.T) {
		t.Parallel()

		reg := NewEncoderRegistry()
		reg.Register(FormatWAV, EncoderFunc(func(context.Context, io.Writer, *audio.Buffer, Settings) error {
			return boom
		}))
		m := &exportMetrics{}
		e, _ := NewExporter(NewMemorySink(), WithEncoders(reg), WithMetrics(m))

		if _, err := e.Export(context.Background(), buf, DefaultSettings()); !errors.Is(err, boom) {
			t.Errorf("Export() error = %v, want %v", err, boom)
		}
		if len(m.done) != 1 || !errors.Is(m.done[0].err, boom) {
			t.Errorf("metrics = %+v", m.done)
		}
	})

	t.Run("settings", func(t *testing.T) {
		t.Parallel()

		e, _ := NewExporter(NewMemorySink())
		s := DefaultSettings()
		s.Filename = "a/b"
		if _, err := e.Export(context.Background(), buf, s); !errors.Is(err, ErrInvalidFilename) {
			t.Errorf("Export() error = %v, want ErrInvalidFilename", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		e, _ := NewExporter(NewMemorySink())
		if _, err := e.Export(ctx, buf, DefaultSettings()); !errors.Is(err, context.Canceled) {
			t.Errorf("Export() error = %v, want context.Canceled", err)
		}
	})

	t.Run("nil sink", func(t *testing.T) {
		t.Parallel()

		if _, err := NewExporter(nil); !errors.Is(err, ErrNilSink) {
			t.Errorf("NewExporter(nil) error = %v", err)
		}
	})
}

func TestDirSink(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	e, _ := NewExporter(NewDirSink(dir))

	buf := audiotest.SineBuffer(8000, 1, 0.1, 440)
	a, err := e.Export(context.Background(), buf, DefaultSettings())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if a.Location != filepath.Join(dir, "granulated-audio.wav") {
		t.Errorf("Location = %q", a.Location)
	}

	got, err := os.ReadFile(a.Location)
	if err != nil {
		t.Fatal(err)
	}
	if int64(len(got)) != a.Size {
		t.Errorf("file size = %d, want %d", len(got), a.Size)
	}

	decoded, err := wav.DecodeBuffer(bytes.NewReader(got))
	if err != nil {
		t.Fatalf("DecodeBuffer() error = %v", err)
	}
	if decoded.Length() != buf.Length() {
		t.Errorf("decoded %d frames, want %d", decoded.Length(), buf.Length())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the artifact", len(entries))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestDirSink_FailedWriteLeavesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := NewDirSink(dir).Put(context.Background(), "x.wav", failingReader{}); err == nil {
		t.Fatal("Put() succeeded with a failing reader")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("directory holds %d entries after a failed write", len(entries))
	}
}

func TestMemorySink_Get(t *testing.T) {
	t.Parallel()

	m := NewMemorySink()
	if _, err := m.Get("nope"); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("Get() error = %v", err)
	}

	if _, err := m.Put(context.Background(), "a", bytes.NewReader([]byte{1, 2})); err != nil {
		t.Fatal(err)
	}
	got, _ := m.Get("a")
	got[0] = 9
	again, _ := m.Get("a")
	if again[0] != 1 {
		t.Error("Get() returned shared storage")
	}
}

func BenchmarkExport_WAV(b *testing.B) {
	e, _ := NewExporter(NewMemorySink())
	buf := audiotest.SineBuffer(44100, 2, 1, 440)
	s := DefaultSettings()

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		_, _ = e.Export(context.Background(), buf, s)
	}
}
