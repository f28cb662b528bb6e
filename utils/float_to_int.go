// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 converts a sample in [-1, 1] to signed 16-bit PCM.
// Negative values scale by 32768 and positive ones by 32767, so both ends
// of the range map exactly onto the int16 limits. Out of range input is
// clamped first, the result is truncated toward zero and NaN maps to 0.
func Float32ToInt16(x float32) int16 {
	if math.IsNaN(float64(x)) {
		return 0
	}

	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	if x < 0 {
		return int16(x * 32768)
	}

	return int16(x * 32767)
}
