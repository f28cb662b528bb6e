// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize    = errors.New("dst size must be multiple of channels")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrNoChannels        = errors.New("audio must have at least one channel")
	ErrChannelLength     = errors.New("channels differ in length")
	ErrEmptyStream       = errors.New("stream holds no audio frames")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// DecodeError reports audio bytes that could not be turned into a Buffer.
type DecodeError struct {
	Format string
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("decode audio: %v", e.Cause)
	}
	return fmt.Sprintf("decode %s audio: %v", e.Format, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// ValidationRule names the check a file failed.
type ValidationRule string

const (
	RuleExtension ValidationRule = "extension"
	RuleMIMEType  ValidationRule = "mime_type"
	RuleSize      ValidationRule = "size"
)

// ValidationError is the structured result of a failed Validate call.
type ValidationError struct {
	Rule    ValidationRule
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid audio file (%s): %s", e.Rule, e.Message)
}
