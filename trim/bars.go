// SPDX-License-Identifier: EPL-2.0

package trim

import (
	"math"

	"github.com/ik5/wavetrim/utils"
)

// DefaultTolerance is how close, in pixels, the pointer must be to a bar to
// hover or grab it.
const DefaultTolerance = 10.0

// Role identifies one of the two trim bars.
type Role int

const (
	None Role = iota
	Left
	Right
)

func (r Role) String() string {
	switch r {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// Bar is a draggable marker at a horizontal pixel position.
type Bar struct {
	X    float64
	Role Role
}

// Bars is the two-marker trim model of one drawing surface. It is not safe
// for concurrent use; the owner serialises pointer events.
//
// Left <= Right is deliberately not enforced. Consumers treat an inverted
// region as empty.
type Bars struct {
	left, right Bar
	width       float64
	tolerance   float64

	hovered Role
	dragged Role
}

// NewBars places the bars at both edges of a surface of the given width.
func NewBars(width float64) *Bars {
	width = math.Max(width, 0)
	return &Bars{
		left:      Bar{X: 0, Role: Left},
		right:     Bar{X: width, Role: Right},
		width:     width,
		tolerance: DefaultTolerance,
	}
}

// SetTolerance changes the hover radius; non-positive values restore the
// default.
func (b *Bars) SetTolerance(px float64) {
	if px <= 0 {
		px = DefaultTolerance
	}
	b.tolerance = px
}

func (b *Bars) Width() float64 { return b.width }
func (b *Bars) Left() Bar      { return b.left }
func (b *Bars) Right() Bar     { return b.right }
func (b *Bars) Hovered() Role  { return b.hovered }
func (b *Bars) Dragged() Role  { return b.dragged }

// Region returns the left and right positions.
func (b *Bars) Region() (left, right float64) {
	return b.left.X, b.right.X
}

// Set moves both bars, clamping each to the surface. It is used to restore
// the trim state of a previously edited sound.
func (b *Bars) Set(left, right float64) {
	b.left.X = b.clamp(left)
	b.right.X = b.clamp(right)
}

// HitTest returns the bar within tolerance of x, preferring the closer one
// and Left on a tie.
func (b *Bars) HitTest(x float64) Role {
	dl := math.Abs(x - b.left.X)
	dr := math.Abs(x - b.right.X)

	switch {
	case dl <= b.tolerance && dl <= dr:
		return Left
	case dr <= b.tolerance:
		return Right
	default:
		return None
	}
}

// Move handles a pointer move. While dragging it repositions the dragged bar;
// otherwise it refreshes which bar is hovered for the next StartDrag.
func (b *Bars) Move(x float64) {
	switch b.dragged {
	case Left:
		b.left.X = b.clamp(x)
	case Right:
		b.right.X = b.clamp(x)
	default:
		b.hovered = b.HitTest(x)
	}
}

// StartDrag grabs the hovered bar, if any.
func (b *Bars) StartDrag() {
	if b.hovered != None {
		b.dragged = b.hovered
	}
}

// StopDrag releases the dragged bar; its position stays where it was left.
func (b *Bars) StopDrag() {
	b.dragged = None
}

func (b *Bars) clamp(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return utils.Clamp(x, 0, b.width)
}
