// SPDX-License-Identifier: EPL-2.0

// Package utils holds small numeric helpers shared by the audio, trim and
// playback packages.
package utils

import "cmp"

// CubicInterpolate performs Catmull-Rom interpolation between y1 and y2.
// x is the fractional position between y1 and y2 (0 <= x <= 1); y0 and y3 are
// the neighbouring samples.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	x = Clamp(x, -1, 1)

	// 32767 keeps +1.0 from overflowing
	return int16(x * 32767.0)
}

// Clamp limits v to [lo, hi]. When lo > hi the result is lo.
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
