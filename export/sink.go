// SPDX-License-Identifier: EPL-2.0

package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Sink stores a finished artifact and returns where it went.
type Sink interface {
	Put(ctx context.Context, name string, r io.Reader) (location string, err error)
}

// DirSink writes artifacts into a directory. A file only appears under its
// final name once it is complete.
type DirSink struct {
	Dir  string
	Perm os.FileMode
}

func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir, Perm: 0o644}
}

func (d *DirSink) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("export dir: %w", err)
	}

	tmp, err := os.CreateTemp(d.Dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("export temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("export write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("export sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("export close: %w", err)
	}
	if err := os.Chmod(tmp.Name(), d.Perm); err != nil {
		return "", fmt.Errorf("export chmod: %w", err)
	}

	dst := filepath.Join(d.Dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("export rename: %w", err)
	}

	return dst, nil
}

// MemorySink keeps artifacts in memory.
type MemorySink struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

func (m *MemorySink) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[name] = data

	return "mem:" + name, nil
}

// Get returns a copy of the artifact stored under name.
func (m *MemorySink) Get(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
	}

	return bytes.Clone(data), nil
}

func (m *MemorySink) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.files))
	for n := range m.files {
		names = append(names, n)
	}
	slices.Sort(names)

	return names
}
