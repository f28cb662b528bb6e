// SPDX-License-Identifier: EPL-2.0

package audgrain

import (
	"errors"

	"github.com/ik5/audgrain/export"
)

var (
	// ErrNoAudio is returned by LoadBuffer(nil) and by Export before
	// anything is loaded.
	ErrNoAudio = export.ErrNoAudio

	ErrNilEngine = errors.New("audgrain: nil engine")
)
