// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files.
//
// # Usage
//
//	file, _ := os.Open("in.wav")
//	buf, err := wav.DecodeBuffer(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	out, _ := os.Create("out.wav")
//	defer out.Close()
//	if err := wav.WriteBuffer(out, buf); err != nil {
//	    // Handle error
//	}
//
// # Decoding
//
// Decoding goes through github.com/go-audio/wav and accepts integer PCM at
// 8, 16, 24 or 32 bits with any channel count. The Source it returns also
// reports its length through audio.Sized, so audio.ReadAll can size the
// Buffer up front:
//
//	buf, err := wav.DecodeBuffer(file)
//
// # Encoding
//
// Encoding always produces the canonical 44-byte header followed by
// frame-interleaved little-endian 16-bit samples:
//
//	offset  field           value
//	0       ChunkID         "RIFF"
//	4       ChunkSize       36 + data bytes
//	8       Format          "WAVE"
//	12      Subchunk1ID     "fmt "
//	16      Subchunk1Size   16
//	20      AudioFormat     1 (PCM)
//	22      NumChannels     N
//	24      SampleRate      Hz
//	28      ByteRate        SampleRate * N * 2
//	32      BlockAlign      N * 2
//	34      BitsPerSample   16
//	36      Subchunk2ID     "data"
//	40      Subchunk2Size   data bytes
//	44      samples
//
// Float samples are clamped to [-1, 1]. Negative values scale by 32768 and
// positive ones by 32767, so DecodeBuffer(Encode(buf)) matches buf within
// 16-bit quantization.
//
//	data, err := wav.Encode(buf)
//
// WriteWAV16 writes already quantized int16 samples with the same header.
//
// # Error Handling
//
// The package defines:
//   - ErrNotWavFile: the input has no RIFF/WAVE header
//   - ErrUnsupportedEncoding: non-PCM data or an unsupported bit depth
//   - ErrInvalidChannels: zero channels, or more than MaxChannels when encoding
//   - ErrDataTooLarge: the data does not fit the 32-bit RIFF sizes
//   - ErrNilBuffer: Encode or WriteBuffer was given nil
package wav
