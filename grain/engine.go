// SPDX-License-Identifier: EPL-2.0

package grain

import (
	"github.com/ik5/audgrain/audio"
	"github.com/ik5/audgrain/params"
)

// LiveParams are the parameters that retune the sounding base voice
// without waiting for the next grain.
type LiveParams struct {
	GrainSize    float64
	PlaybackRate float64
	DetuneCents  float64
}

// LiveFrom extracts the live parameters from a snapshot.
func LiveFrom(p params.Parameters) LiveParams {
	return LiveParams{
		GrainSize:    p.GrainSize,
		PlaybackRate: p.PlaybackRate,
		DetuneCents:  float64(p.PitchShift) * 100,
	}
}

// Engine renders voices. Trigger must not block on playback and must not
// call done before it returns; done reports that the voice finished
// sounding on its own. Dispose stops a voice early and is a no-op for
// unknown IDs.
type Engine interface {
	Trigger(v Voice, buf *audio.Buffer, done func(ID)) error
	UpdateLive(lp LiveParams)
	Dispose(id ID)
}

// BaseVoice is implemented by engines that keep a continuous looping
// granular layer under the triggered grains. It starts with playback and
// follows UpdateLive.
type BaseVoice interface {
	StartBase(buf *audio.Buffer, lp LiveParams) error
	StopBase()
}
