// SPDX-License-Identifier: EPL-2.0

package export

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Format is an export container.
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
)

func (f Format) IsValid() bool {
	return f == FormatWAV || f == FormatMP3
}

// MIMEType is the media type artifacts of this format carry.
func (f Format) MIMEType() string {
	switch f {
	case FormatWAV:
		return "audio/wav"
	case FormatMP3:
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}

// BitRates lists the MP3 bit rates in kbps.
var BitRates = []int{128, 192, 256, 320}

const (
	DefaultFilename = "granulated-audio"
	DefaultBitRate  = 192
)

// Settings selects what an export produces.
type Settings struct {
	Format   Format `yaml:"format"`
	BitRate  int    `yaml:"bit_rate"` // kbps, MP3 only
	Filename string `yaml:"filename"` // without extension
}

func DefaultSettings() Settings {
	return Settings{
		Format:   FormatWAV,
		BitRate:  DefaultBitRate,
		Filename: DefaultFilename,
	}
}

// Validate reports every invalid field.
func (s Settings) Validate() error {
	var errs []error

	if !s.Format.IsValid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidFormat, s.Format))
	}
	if s.Format == FormatMP3 && !slices.Contains(BitRates, s.BitRate) {
		errs = append(errs, fmt.Errorf("%w: %d kbps", ErrInvalidBitRate, s.BitRate))
	}
	if err := checkFilename(s.Filename); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// FileName is the artifact name, {filename}.{format}.
func (s Settings) FileName() string {
	return s.Filename + "." + string(s.Format)
}

func checkFilename(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidFilename, name)
	}

	return nil
}
