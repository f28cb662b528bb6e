// SPDX-License-Identifier: EPL-2.0

// Package grain builds grain voices and tracks the ones still sounding.
//
// New turns a parameter snapshot into a Voice: a randomized source
// position, a slightly detuned and rate-jittered playback speed, and a
// linear attack/hold/release envelope. Voices are plain values; the audio
// itself is produced by an Engine.
//
// Pool is an arena of live voices. Each slot carries a generation counter
// so an ID held after its voice was removed can never resolve to the voice
// that reused the slot.
package grain
