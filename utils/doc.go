// SPDX-License-Identifier: EPL-2.0

// Package utils holds the sample math shared by the resampler and the PCM
// writers.
package utils
