// SPDX-License-Identifier: EPL-2.0

// Package audio holds the sample-level building blocks of the granulator.
//
// This package contains:
//   - Source interface for streamed, decoded audio
//   - Buffer, the immutable decoded sample every grain reads from
//   - Registry, Validate and Decode for turning uploads into Buffers
//   - Resampler and MonoMixer for rate and channel conversion
//
// # Usage
//
// Register the decoders once, then decode each incoming file:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//	reg.Register("mp3", mp3.Decoder{})
//
//	file, _ := os.Open("loop.wav")
//	st, _ := file.Stat()
//	info := audio.FileInfo{Name: st.Name(), Size: st.Size()}
//
//	limits := audio.DefaultLimits(reg)
//	limits.MIMETypes = nil // no content type for files on disk
//	buf, err := audio.Decode(ctx, reg, limits, info, file)
//	if err != nil {
//	    // *ValidationError or *DecodeError
//	}
//
// # Sources and Buffers
//
// Decoders produce a streaming Source of interleaved float32 samples in
// [-1, 1]. ReadAll drains a Source into a Buffer, which is the immutable,
// per-channel representation every grain reads from:
//
//	buf, err := audio.ReadAll(ctx, src)
//	fmt.Println(buf.Duration(), buf.SampleRate(), buf.NumChannels())
//
// A window of a Buffer can be streamed again through BufferSource, which
// is how a grain pulls its slice of the source:
//
//	win := audio.NewBufferSource(buf, buf.TimeToFrame(1.25), 4410)
//
// # Validation and Decoding
//
// Validate checks a FileInfo against Limits (extension, MIME type and size)
// and returns a *ValidationError describing the first rule that failed.
// Decode runs validation, picks the decoder from a Registry by extension and
// reads the result into a Buffer. Decoder failures come back as *DecodeError.
// The stream is read through a limit of MaxBytes, so a file whose declared
// size is wrong still fails with RuleSize once it grows past the limit.
//
//	limits := audio.DefaultLimits(reg)
//	buf, err := audio.Decode(ctx, reg, limits, info, file)
//	var verr *audio.ValidationError
//	if errors.As(err, &verr) {
//	    log.Println(verr.Rule, verr.Message)
//	}
//
// # Resampling
//
// Resampler converts the sample rate using cubic interpolation. WithSpeed
// additionally scales playback speed, which is how grain playback rate and
// detune are applied in the same pass:
//
//	r := audio.NewResampler(src, 48000, audio.WithSpeed(1.5))
//
// # Channel Mixing
//
// MonoMixer averages all channels into one:
//
//	mono := audio.NewMonoMixer(src)
//	buf := make([]float32, 4096)
//	n, err := mono.ReadSamples(buf)
//
// # Sample Format
//
// Samples are float32 in [-1, 1]. Sources interleave channels frame by
// frame; Buffers keep one slice per channel. A Buffer always holds at
// least one channel and one frame, NewBuffer and ReadAll report
// ErrEmptyStream otherwise.
//
// # End of Stream
//
// ReadSamples returns io.EOF once the source is exhausted. The call that
// returns io.EOF may still have written samples, so always consume n first:
//
//	for {
//	    n, err := src.ReadSamples(buf)
//	    process(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
