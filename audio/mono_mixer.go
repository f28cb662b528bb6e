// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer folds every channel of src into one by averaging. Grains are
// rendered in mono and spread to the output channels afterwards.
type MonoMixer struct {
	src     Source
	scratch []float32
}

func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{src: src}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }
func (m *MonoMixer) BufSize() int    { return m.src.BufSize() }

func (m *MonoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples writes up to len(dst) mono frames.
func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	channels := m.src.Channels()
	if channels == 1 {
		return m.src.ReadSamples(dst)
	}

	need := len(dst) * channels
	if cap(m.scratch) < need {
		m.scratch = make([]float32, max(need, 8192))
	}
	scratch := m.scratch[:need]

	n, err := m.src.ReadSamples(scratch)
	frames := n / channels

	if channels == 2 {
		for f := range frames {
			dst[f] = (scratch[2*f] + scratch[2*f+1]) * 0.5
		}
		return frames, err
	}

	scale := 1 / float32(channels)
	for f := range frames {
		var sum float32
		for _, s := range scratch[f*channels : (f+1)*channels] {
			sum += s
		}
		dst[f] = sum * scale
	}

	return frames, err
}
