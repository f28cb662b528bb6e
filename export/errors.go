// SPDX-License-Identifier: EPL-2.0

package export

import "errors"

var (
	ErrNoAudio            = errors.New("no audio to export")
	ErrEncoderUnavailable = errors.New("no encoder registered for format")
	ErrInvalidFormat      = errors.New("invalid export format")
	ErrInvalidBitRate     = errors.New("invalid bit rate")
	ErrInvalidFilename    = errors.New("invalid file name")
	ErrNilSink            = errors.New("nil export sink")
	ErrArtifactNotFound   = errors.New("artifact not found")
)
