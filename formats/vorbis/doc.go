// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio with github.com/jfreymuth/oggvorbis.
//
// # Usage
//
//	file, _ := os.Open("texture.ogg")
//	src, err := vorbis.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	buf, err := audio.ReadAll(ctx, src)
//
// # Output Format
//
// Vorbis decoder output:
//   - Sample format: float32 in range [-1.0, 1.0], passed through as decoded
//   - Channels: as stored in the stream, interleaved [L0, R0, L1, R1, ...]
//   - Sample rate: as stored in the stream
//
// The Source reports the stream length through audio.Sized when the
// decoder knows it.
//
// # Error Handling
//
// A stream without channels is rejected with audio.ErrNoChannels. Other
// failures are the decoder's own errors, wrapped.
package vorbis
