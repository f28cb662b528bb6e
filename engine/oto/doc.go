// SPDX-License-Identifier: EPL-2.0

// Package oto plays grains on the default audio device through
// github.com/hajimehoshi/oto/v2.
//
// Every triggered grain is rendered to float32 samples and gets its own
// player; a goroutine polls the player and reports the voice done once it
// falls silent. The base voice is a single player fed by an
// engine.BaseLayer for as long as playback runs.
package oto
