// SPDX-License-Identifier: EPL-2.0

// Package engine holds the rendering shared by the grain engines.
//
// Render cuts one voice out of a buffer: the source window is mixed to
// mono, played back at the voice's speed and converted to the output rate
// in one Resampler pass, then shaped by the voice envelope. BaseLayer
// strings such grains together into the continuous looping layer that
// plays under the triggered grains.
//
// The subpackages oto and offline turn rendered grains into sound on a
// device or into a recorded buffer.
package engine
