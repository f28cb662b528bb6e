// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio with
// github.com/hajimehoshi/go-mp3.
//
// # Usage
//
//	file, _ := os.Open("voice.mp3")
//	src, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	buf, err := audio.ReadAll(ctx, src)
//
// To fold the result down to mono before granulating:
//
//	mono := audio.NewMonoMixer(src)
//
// # Output Format
//
// MP3 decoder output:
//   - Sample format: float32 in range [-1.0, 1.0)
//   - Channels: always 2, even for mono files
//   - Sample rate: as stored in the stream
//
// When the input is an io.Seeker the decoded length is known and the
// Source implements audio.Sized. Otherwise ReadAll grows the Buffer as it
// reads.
//
// # Limitations
//
// Encoding mp3 is not supported here; the export package reports it as an
// unavailable format.
package mp3
