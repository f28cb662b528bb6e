// SPDX-License-Identifier: EPL-2.0

// Package scheduler triggers grains at the configured density.
//
// A Scheduler owns one ticker while playing. Every tick takes a parameter
// snapshot, builds a grain.Voice for the loaded buffer and hands it to a
// grain.Engine. Density writes reset the ticker in place; writes to live
// parameters are forwarded to the engine at once. Everything else is read
// on the next tick.
//
// Voices stay in the scheduler's pool until the engine reports them done,
// playback stops, or the pool grows past its limit. Evicted voices are
// disposed after a short grace period so their tails are not cut.
package scheduler
