// SPDX-License-Identifier: EPL-2.0

// Package offline records what the scheduler plays instead of sending it
// to a device. Grains are placed at their creation time relative to the
// first event, and Render mixes everything, base voice included, into one
// buffer ready for export.
package offline
