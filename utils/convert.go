// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	return int16(x * 32767)
}

// Int16ToFloat32 maps a 16-bit PCM sample to [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768
}

// FullScale returns the magnitude of the most negative sample at the given
// bit depth. Unknown depths are treated as 16-bit.
func FullScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 1 << 7
	case 24:
		return 1 << 23
	case 32:
		return 1 << 31
	default:
		return 1 << 15
	}
}

// IntsToFloat32 normalizes integer PCM samples of the given bit depth
// into dst and returns the number converted.
func IntsToFloat32(dst []float32, src []int, bitDepth int) int {
	n := min(len(dst), len(src))
	scale := 1 / FullScale(bitDepth)
	for i := range n {
		dst[i] = float32(src[i]) * scale
	}

	return n
}

// Float32ToInts converts normalized samples to 16-bit PCM values stored in
// ints, which is what integer PCM encoders consume.
func Float32ToInts(dst []int, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = int(Float32ToInt16(src[i]))
	}

	return n
}
