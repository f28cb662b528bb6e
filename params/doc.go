// SPDX-License-Identifier: EPL-2.0

// Package params holds the granulator's shared, mutable grain parameters.
//
// A Store is the single writable copy. Readers take a Snapshot, which is a
// plain value, so a grain built from it never sees a later write. Every
// setter validates its input, clamps normalized fields into range and
// returns without waiting on anything.
//
// Fields fall into three classes (see ClassOf):
//
//   - Immediate: grain size, pitch shift and playback rate. Observers get
//     OnLiveChange so a sounding base voice can follow the new value.
//   - Reconfigure: density. Observers get OnDensityChange so a running
//     scheduler can restart its timer at the new interval.
//   - NextGrainOnly: position, position variation, attack and release.
//     Nobody is notified; the next grain simply reads the new value.
//
// Observers are called after the store lock is released, on the writer's
// goroutine.
package params
