// SPDX-License-Identifier: EPL-2.0

package trim

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Style holds the overlay colours.
type Style struct {
	Bar       color.Color
	Highlight color.Color // hovered or dragged bar
	Shade     color.Color // area outside the selection
	BarWidth  int
}

// DefaultStyle mirrors the classic editor look: white bars, red when
// selected, translucent grey outside the trim region.
var DefaultStyle = Style{
	Bar:       color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	Highlight: color.RGBA{R: 0xff, A: 0xff},
	Shade:     color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0x80},
	BarWidth:  2,
}

// Clear makes the overlay fully transparent.
func Clear(dst draw.Image) {
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// Draw paints the shaded outside areas and both bars onto dst. The overlay
// is expected to span the same width the bars were created with.
func (b *Bars) Draw(dst draw.Image, style Style) {
	r := dst.Bounds()
	left := r.Min.X + int(math.Round(b.left.X))
	right := r.Min.X + int(math.Round(b.right.X))

	shade := image.NewUniform(style.Shade)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, left, r.Max.Y).Intersect(r), shade, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(right, r.Min.Y, r.Max.X, r.Max.Y).Intersect(r), shade, image.Point{}, draw.Over)

	b.drawBar(dst, left, b.left.Role, style)
	b.drawBar(dst, right, b.right.Role, style)
}

func (b *Bars) drawBar(dst draw.Image, x int, role Role, style Style) {
	c := style.Bar
	if role == b.dragged || (b.dragged == None && role == b.hovered) {
		c = style.Highlight
	}

	w := max(style.BarWidth, 1)
	r := dst.Bounds()
	bar := image.Rect(x-w/2, r.Min.Y, x-w/2+w, r.Max.Y).Intersect(r)
	draw.Draw(dst, bar, image.NewUniform(c), image.Point{}, draw.Src)

	// grab handle: a small square at the top, on the inner side of the bar
	const handle = 8
	hx := x
	if role == Right {
		hx = x - handle
	}
	draw.Draw(dst, image.Rect(hx, r.Min.Y, hx+handle, r.Min.Y+handle).Intersect(r),
		image.NewUniform(c), image.Point{}, draw.Src)
}
