// SPDX-License-Identifier: EPL-2.0

package scheduler

import "errors"

var (
	ErrClosed       = errors.New("scheduler is closed")
	ErrNilStore     = errors.New("nil parameter store")
	ErrNilEngine    = errors.New("nil grain engine")
	ErrTriggerPanic = errors.New("engine panicked while triggering a grain")
)
