// SPDX-License-Identifier: EPL-2.0

// Package trim maps between surface pixels and clip time and models the two
// draggable trim bars of the editor.
//
// Pointer events drive the model:
//
//	bars := trim.NewBars(float64(width))
//	bars.Move(x)      // pointer move: hover, or drag when grabbed
//	bars.StartDrag()  // pointer down
//	bars.StopDrag()   // pointer up
//
//	left, right := bars.Region()
//	start := trim.PixelToSeconds(left, buf.Duration(), float64(width))
//	end := trim.PixelToSeconds(right, buf.Duration(), float64(width))
package trim
