// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultMaxBytes is the largest file Validate accepts by default (50 MiB).
const DefaultMaxBytes int64 = 50 * 1024 * 1024

// FileInfo describes an incoming file before it is decoded.
type FileInfo struct {
	Name     string
	MIMEType string
	Size     int64
}

// Extension returns the lower case extension of the file name without the dot.
func (f FileInfo) Extension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Name)), ".")
}

// Limits configures what Validate accepts. An empty MIMETypes list skips
// the MIME check, which is useful when the caller has no content type
// (e.g. files read from disk).
type Limits struct {
	Extensions []string
	MIMETypes  []string
	MaxBytes   int64
}

// DefaultLimits accepts the formats registered in reg.
func DefaultLimits(reg *Registry) Limits {
	return Limits{
		Extensions: reg.Formats(),
		MIMETypes: []string{
			"audio/wav", "audio/x-wav", "audio/wave",
			"audio/mpeg",
			"audio/ogg",
			"audio/aiff", "audio/x-aiff",
		},
		MaxBytes: DefaultMaxBytes,
	}
}

// Validate checks extension, MIME type and size. It returns nil when the
// file is acceptable.
func Validate(info FileInfo, limits Limits) *ValidationError {
	ext := info.Extension()
	if !slices.Contains(limits.Extensions, ext) {
		return &ValidationError{
			Rule:    RuleExtension,
			Message: fmt.Sprintf("invalid file extension %q, allowed extensions: %s", ext, strings.Join(limits.Extensions, ", ")),
		}
	}

	if len(limits.MIMETypes) > 0 && !slices.Contains(limits.MIMETypes, strings.ToLower(info.MIMEType)) {
		return &ValidationError{
			Rule:    RuleMIMEType,
			Message: fmt.Sprintf("invalid file type %q", info.MIMEType),
		}
	}

	if limits.MaxBytes > 0 && info.Size > limits.MaxBytes {
		return tooLarge(limits.MaxBytes)
	}

	return nil
}

func tooLarge(maxBytes int64) *ValidationError {
	return &ValidationError{
		Rule:    RuleSize,
		Message: fmt.Sprintf("file too large, maximum size: %dMB", maxBytes/(1024*1024)),
	}
}

// sizeGuard reads at most max+1 bytes from r and fails once the stream
// turns out longer than max, whatever size the caller declared.
type sizeGuard struct {
	r   io.Reader
	max int64
	n   int64
}

func newSizeGuard(r io.Reader, maxBytes int64) *sizeGuard {
	return &sizeGuard{r: io.LimitReader(r, maxBytes+1), max: maxBytes}
}

func (g *sizeGuard) Read(p []byte) (int, error) {
	n, err := g.r.Read(p)
	g.n += int64(n)
	if g.exceeded() {
		return n, tooLarge(g.max)
	}

	return n, err
}

func (g *sizeGuard) exceeded() bool {
	return g.n > g.max
}

// Decode validates info, picks the decoder registered for its extension
// and reads r into a Buffer.
func Decode(ctx context.Context, reg *Registry, limits Limits, info FileInfo, r io.Reader) (*Buffer, error) {
	if verr := Validate(info, limits); verr != nil {
		return nil, verr
	}

	format := info.Extension()
	dec, ok := reg.Get(format)
	if !ok {
		return nil, &DecodeError{Format: format, Cause: ErrUnsupportedFormat}
	}

	var guard *sizeGuard
	if limits.MaxBytes > 0 {
		guard = newSizeGuard(r, limits.MaxBytes)
		r = guard
	}

	src, err := dec.Decode(r)
	if guard != nil && guard.exceeded() {
		if src != nil {
			_ = src.Close()
		}
		return nil, tooLarge(limits.MaxBytes)
	}
	if err != nil {
		return nil, &DecodeError{Format: format, Cause: err}
	}
	defer src.Close()

	buf, err := ReadAll(ctx, src)
	if guard != nil && guard.exceeded() {
		return nil, tooLarge(limits.MaxBytes)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &DecodeError{Format: format, Cause: err}
	}

	return buf, nil
}
