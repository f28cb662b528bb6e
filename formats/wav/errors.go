// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile          = errors.New("not a WAV file")
	ErrUnsupportedEncoding = errors.New("unsupported WAV encoding")
	ErrNilBuffer           = errors.New("nil audio buffer")
	ErrDataTooLarge        = errors.New("audio data exceeds WAV size limit")
	ErrInvalidChannels     = errors.New("channel count out of range")
)
