// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF audio with github.com/go-audio/aiff.
//
// # Usage
//
// Register the Decoder with an audio.Registry, or call it directly:
//
//	file, _ := os.Open("pad.aif")
//	src, err := aiff.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	buf, err := audio.ReadAll(ctx, src)
//
// # Output Format
//
// AIFF decoder output:
//   - Sample format: float32 in range [-1.0, 1.0)
//   - Channels: as stored in the file
//   - Sample rate: as stored in the file
//
// Integer samples of 8, 16, 24 and 32 bits are scaled by their bit depth.
// The frame count comes from the COMM chunk, so the Source implements
// audio.Sized and ReadAll can allocate the Buffer once.
//
// # Error Handling
//
// The package defines:
//   - ErrNotAiffFile: the input has no FORM/AIFF header
//   - ErrUnsupportedBitDepth: any depth other than 8, 16, 24 or 32
//   - ErrUnsupportedAiffLayout: no usable channel layout
//
// Example:
//
//	if errors.Is(err, aiff.ErrUnsupportedBitDepth) {
//	    fmt.Println("convert to 16-bit first")
//	}
//
// # Limitations
//
// go-audio/aiff needs an io.ReadSeeker. Other readers are buffered in
// memory first, which is fine for the file sizes the granulator accepts.
// AIFF-C (compressed) and writing are not supported.
package aiff
