// SPDX-License-Identifier: EPL-2.0

package trim

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestPixelToSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                   string
		pixel, duration, width float64
		want                   float64
	}{
		{"origin", 0, 4, 300, 0},
		{"middle", 150, 4, 300, 2},
		{"end", 300, 4, 300, 4},
		{"below range", -50, 4, 300, 0},
		{"above range", 400, 4, 300, 4},
		{"zero width", 10, 4, 0, 0},
		{"zero duration", 10, 0, 300, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := PixelToSeconds(tt.pixel, tt.duration, tt.width); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PixelToSeconds(%v, %v, %v) = %v, want %v",
					tt.pixel, tt.duration, tt.width, got, tt.want)
			}
		})
	}
}

func TestMapper_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, width := range []float64{1, 300, 1024} {
		for _, duration := range []float64{0.01, 1.5, 600} {
			for p := 0.0; p <= width; p += width / 37 {
				got := SecondsToPixel(PixelToSeconds(p, duration, width), duration, width)
				if math.Abs(got-p) > 1e-6 {
					t.Fatalf("round trip of %v (d=%v w=%v) = %v", p, duration, width, got)
				}
			}
		}
	}
}

func TestSecondsToPixel_Clamps(t *testing.T) {
	t.Parallel()

	if got := SecondsToPixel(-1, 2, 300); got != 0 {
		t.Errorf("SecondsToPixel(-1) = %v, want 0", got)
	}
	if got := SecondsToPixel(3, 2, 300); got != 300 {
		t.Errorf("SecondsToPixel(3) = %v, want 300", got)
	}
}

func TestBars_Defaults(t *testing.T) {
	t.Parallel()

	b := NewBars(300)
	if l, r := b.Region(); l != 0 || r != 300 {
		t.Errorf("Region() = (%v, %v), want (0, 300)", l, r)
	}
	if b.Left().Role != Left || b.Right().Role != Right {
		t.Error("bar roles not assigned")
	}
}

func TestBars_HitTest(t *testing.T) {
	t.Parallel()

	b := NewBars(300)
	b.Set(100, 112)

	tests := []struct {
		x    float64
		want Role
	}{
		{50, None},
		{95, Left},
		{104, Left},
		{106, Left}, // equal distance prefers left
		{109, Right},
		{122, Right},
		{123, None},
	}

	for _, tt := range tests {
		if got := b.HitTest(tt.x); got != tt.want {
			t.Errorf("HitTest(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestBars_DragClamps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		grabAt float64
		dragTo float64
		role   Role
		want   float64
	}{
		{"left below zero", 2, -50, Left, 0},
		{"right beyond width", 298, 400, Right, 300},
		{"left inside", 0, 120, Left, 120},
		{"left past right is allowed", 0, 300, Left, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := NewBars(300)
			b.Move(tt.grabAt)
			if b.Hovered() != tt.role {
				t.Fatalf("Hovered() = %v, want %v", b.Hovered(), tt.role)
			}

			b.StartDrag()
			b.Move(tt.dragTo)
			b.StopDrag()

			got := b.Left().X
			if tt.role == Right {
				got = b.Right().X
			}
			if got != tt.want {
				t.Errorf("position = %v, want %v", got, tt.want)
			}
			if b.Dragged() != None {
				t.Errorf("Dragged() = %v after StopDrag", b.Dragged())
			}
		})
	}
}

func TestBars_StartDragWithoutHover(t *testing.T) {
	t.Parallel()

	b := NewBars(300)
	b.Move(150)
	b.StartDrag()
	if b.Dragged() != None {
		t.Fatalf("Dragged() = %v, want none", b.Dragged())
	}

	b.Move(10)
	if l, r := b.Region(); l != 0 || r != 300 {
		t.Errorf("bars moved without a drag: (%v, %v)", l, r)
	}
}

func TestBars_SetClampsAndTolerance(t *testing.T) {
	t.Parallel()

	b := NewBars(200)
	b.Set(-10, math.NaN())
	if l, r := b.Region(); l != 0 || r != 0 {
		t.Errorf("Region() = (%v, %v), want (0, 0)", l, r)
	}

	b.Set(50, 150)
	b.SetTolerance(1)
	if b.HitTest(52) != None {
		t.Error("HitTest(52) with tolerance 1 should miss")
	}
	b.SetTolerance(0)
	if b.HitTest(52) != Left {
		t.Error("SetTolerance(0) should restore the default")
	}
}

func TestBars_Draw(t *testing.T) {
	t.Parallel()

	b := NewBars(100)
	b.Set(20, 80)
	b.Move(80) // hover right

	img := image.NewRGBA(image.Rect(0, 0, 100, 30))
	Clear(img)
	b.Draw(img, DefaultStyle)

	if got := img.RGBAAt(50, 20); got.A != 0 {
		t.Errorf("selection interior = %v, want transparent", got)
	}
	if got := img.RGBAAt(5, 20); got.A == 0 {
		t.Error("area left of the selection is not shaded")
	}
	if got := img.RGBAAt(20, 20); got != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Errorf("left bar = %v, want white", got)
	}
	if got := img.RGBAAt(80, 20); got != (color.RGBA{R: 0xff, A: 0xff}) {
		t.Errorf("hovered right bar = %v, want red", got)
	}
}
