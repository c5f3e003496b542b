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
		{"full negative", -1, -math.MaxInt16},
		{"half", 0.5, 16383},
		{"negative half", -0.5, -16383},
		{"clamp high", 1.5, math.MaxInt16},
		{"clamp low", -100, -math.MaxInt16},
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
	for f := -0.99; f <= 1.0; f += 0.01 {
		cur := Float32ToInt16(float32(f))
		if cur < prev {
			t.Fatalf("not monotonic at %v: %d < %d", f, cur, prev)
		}
		prev = cur
	}
}

func TestInt16ToFloat32(t *testing.T) {
	t.Parallel()

	if got := Int16ToFloat32(math.MinInt16); got != -1 {
		t.Errorf("Int16ToFloat32(MinInt16) = %v, want -1", got)
	}
	if got := Int16ToFloat32(0); got != 0 {
		t.Errorf("Int16ToFloat32(0) = %v, want 0", got)
	}
	if got := Int16ToFloat32(16384); got != 0.5 {
		t.Errorf("Int16ToFloat32(16384) = %v, want 0.5", got)
	}
}

func TestIntsToFloat32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bitDepth int
		in       int
		want     float32
	}{
		{8, -128, -1},
		{8, 64, 0.5},
		{16, -32768, -1},
		{16, 16384, 0.5},
		{24, 4194304, 0.5},
		{32, -2147483648, -1},
		{12, 16384, 0.5},
	}

	for _, tt := range tests {
		dst := make([]float32, 1)
		if n := IntsToFloat32(dst, []int{tt.in}, tt.bitDepth); n != 1 {
			t.Fatalf("IntsToFloat32() = %d, want 1", n)
		}
		if dst[0] != tt.want {
			t.Errorf("IntsToFloat32(%d bits, %d) = %v, want %v", tt.bitDepth, tt.in, dst[0], tt.want)
		}
	}
}

func TestFloat32ToInts_ShortDst(t *testing.T) {
	t.Parallel()

	dst := make([]int, 2)
	if n := Float32ToInts(dst, []float32{1, -1, 0.5}); n != 2 {
		t.Errorf("Float32ToInts() = %d, want 2", n)
	}
	if dst[0] != math.MaxInt16 || dst[1] != -math.MaxInt16 {
		t.Errorf("dst = %v", dst)
	}
}

func TestConvert_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	f := make([]float32, 1024)
	ints := make([]int, 1024)

	allocs := testing.AllocsPerRun(100, func() {
		Float32ToInts(ints, f)
		IntsToFloat32(f, ints, 16)
	})
	if allocs > 0 {
		t.Errorf("batch conversion allocated %v times, want 0", allocs)
	}
}

func BenchmarkFloat32ToInts(b *testing.B) {
	src := make([]float32, 8000)
	for i := range src {
		src[i] = float32(math.Sin(float64(i) * 0.1))
	}
	dst := make([]int, len(src))

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		Float32ToInts(dst, src)
	}
}
