// SPDX-License-Identifier: EPL-2.0

// Package preset draws random parameter sets from a table of ranges.
package preset
