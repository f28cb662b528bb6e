// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	ErrNilBuffer         = errors.New("nil audio buffer")
	ErrInvalidSampleRate = errors.New("output sample rate must be positive")
	ErrInvalidChannels   = errors.New("output channel count must be positive")
	ErrClosed            = errors.New("engine is closed")
)
