// SPDX-License-Identifier: EPL-2.0

package grain

import "errors"

var (
	ErrInvalidDuration   = errors.New("buffer duration must be positive and finite")
	ErrInvalidParameters = errors.New("grain parameters must be finite")
	ErrNilRand           = errors.New("nil random source")
	ErrStaleID           = errors.New("voice id is no longer in the pool")
)
