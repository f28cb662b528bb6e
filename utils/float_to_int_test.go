// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{"zero", 0, 0},
		{"full positive", 1, math.MaxInt16},
		{"full negative", -1, math.MinInt16},
		{"half positive", 0.5, 16383},
		{"half negative", -0.5, -16384},
		{"small positive truncates", 0.001, 32},
		{"small negative truncates", -0.001, -32},
		{"clamp above", 1.5, math.MaxInt16},
		{"clamp below", -1.5, math.MinInt16},
		{"clamp far above", 100, math.MaxInt16},
		{"clamp far below", -100, math.MinInt16},
		{"positive infinity", float32(math.Inf(1)), math.MaxInt16},
		{"negative infinity", float32(math.Inf(-1)), math.MinInt16},
		{"nan", float32(math.NaN()), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float32ToInt16(tt.input); got != tt.want {
				t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFloat32ToInt16_Monotonic(t *testing.T) {
	t.Parallel()

	prev := Float32ToInt16(-1)
	for i := -999; i <= 1000; i++ {
		f := float32(i) / 1000
		cur := Float32ToInt16(f)
		if cur < prev {
			t.Fatalf("Float32ToInt16(%v) = %d, below previous %d", f, cur, prev)
		}
		prev = cur
	}
}

func BenchmarkFloat32ToInt16(b *testing.B) {
	in := make([]float32, 8000)
	out := make([]int16, 8000)
	for i := range in {
		in[i] = float32(math.Sin(float64(i) * 0.1))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		for j, v := range in {
			out[j] = Float32ToInt16(v)
		}
	}
}
