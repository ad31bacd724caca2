// SPDX-License-Identifier: EPL-2.0

package trim

import "github.com/ik5/wavetrim/utils"

// PixelToSeconds maps a horizontal position on a surface of width pixels to
// a time offset in a clip of duration seconds. The result is clamped to
// [0, duration]; a non-positive width maps everything to 0.
func PixelToSeconds(pixel, duration, width float64) float64 {
	if width <= 0 || duration <= 0 {
		return 0
	}
	return utils.Clamp(pixel/width*duration, 0, duration)
}

// SecondsToPixel is the inverse of PixelToSeconds, clamped to [0, width].
func SecondsToPixel(seconds, duration, width float64) float64 {
	if width <= 0 || duration <= 0 {
		return 0
	}
	return utils.Clamp(seconds/duration*width, 0, width)
}
