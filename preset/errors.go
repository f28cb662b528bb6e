// SPDX-License-Identifier: EPL-2.0

package preset

import "errors"

var (
	ErrNilStore     = errors.New("nil parameter store")
	ErrInvalidRange = errors.New("invalid preset range")
)
