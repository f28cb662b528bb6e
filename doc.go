// SPDX-License-Identifier: EPL-2.0

// Package audgrain is a granular synthesizer. It cuts a loaded sample into
// short enveloped grains and plays them back at a configurable density,
// pitch and playback rate.
//
// # Overview
//
// A Granulator ties the subpackages together:
//
//   - audio and formats/* decode uploaded files (WAV, MP3, Ogg Vorbis,
//     AIFF) into an audio.Buffer
//   - params holds the live grain parameters and notifies observers
//   - scheduler fires one grain per 1/density seconds and keeps the voice
//     pool bounded
//   - engine/oto plays grains on the sound card, engine/offline records
//     them into a buffer
//   - preset draws random parameter sets
//   - export encodes buffers (PCM16 WAV) and stores them through a Sink
//
// # Quick Start
//
//	eng, _ := oto.New()
//	g, _ := audgrain.New(eng)
//	defer g.Close()
//
//	f, _ := os.Open("loop.wav")
//	st, _ := f.Stat()
//	_ = g.Load(ctx, audio.FileInfo{Name: "loop.wav", Size: st.Size()}, f)
//
//	_ = g.SetDensity(25)
//	_ = g.Start()
//
// Parameter writes take effect while playing: grain size, playback rate and
// pitch are pushed to the engine right away, density restarts the grain
// clock, and the rest is read when the next grain is built.
package audgrain
