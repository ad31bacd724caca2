// SPDX-License-Identifier: EPL-2.0

package waveform

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/ik5/wavetrim/audio"
	"github.com/ik5/wavetrim/utils"
	"golang.org/x/image/draw"
)

var (
	ErrNoAudio      = errors.New("no audio to render")
	ErrInvalidWidth = errors.New("width must be positive")
	ErrNotReady     = errors.New("envelope not initialised")
)

// Peak is the sample range covered by one pixel column.
type Peak struct {
	Min float32
	Max float32
}

// Renderer retains the envelope of one buffer and paints it on demand.
type Renderer struct {
	env []Peak
}

func New() *Renderer {
	return &Renderer{}
}

// Init computes one Peak per pixel column over the mono mixdown of buf,
// replacing any previous envelope.
func (r *Renderer) Init(buf *audio.Buffer, width int) error {
	if buf == nil {
		return ErrNoAudio
	}
	if width <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}

	mono, err := mixdown(buf)
	if err != nil {
		return err
	}

	r.env = envelope(mono, width)
	return nil
}

// Envelope returns the retained peaks, one per column.
func (r *Renderer) Envelope() []Peak {
	out := make([]Peak, len(r.env))
	copy(out, r.env)
	return out
}

// Width is the column count of the retained envelope.
func (r *Renderer) Width() int { return len(r.env) }

// DrawWave paints the envelope as vertical bars scaled to height and centred
// on yOffset+height/2. Columns beyond the destination are skipped.
func (r *Renderer) DrawWave(dst draw.Image, yOffset, height int, c color.Color) {
	if height <= 0 {
		return
	}

	b := dst.Bounds()
	src := image.NewUniform(c)
	half := float64(height) / 2
	center := float64(b.Min.Y+yOffset) + half

	for x, p := range r.env {
		hi := utils.Clamp(float64(p.Max), -1, 1)
		lo := utils.Clamp(float64(p.Min), -1, 1)

		top := int(math.Floor(center - hi*half))
		bottom := int(math.Ceil(center - lo*half))
		if bottom <= top {
			bottom = top + 1
		}

		col := image.Rect(b.Min.X+x, top, b.Min.X+x+1, bottom).Intersect(b)
		if col.Empty() {
			continue
		}
		draw.Draw(dst, col, src, image.Point{}, draw.Over)
	}
}

// Clear erases dst to transparent.
func Clear(dst draw.Image) {
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// WritePNG renders the envelope on a background of bg and encodes it.
func (r *Renderer) WritePNG(w io.Writer, height int, bg, fg color.Color) error {
	if len(r.env) == 0 {
		return ErrNotReady
	}
	if height <= 0 {
		return fmt.Errorf("%w: height %d", ErrInvalidWidth, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, len(r.env), height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	r.DrawWave(img, 0, height, fg)

	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func mixdown(buf *audio.Buffer) ([]float32, error) {
	mixer := audio.NewMonoMixer(buf.Source())
	mono, err := audio.ReadAll(mixer)
	if err != nil {
		return nil, fmt.Errorf("mixdown: %w", err)
	}
	return mono.Samples(), nil
}

func envelope(samples []float32, width int) []Peak {
	env := make([]Peak, width)
	if len(samples) == 0 {
		return env
	}

	step := float64(len(samples)) / float64(width)

	for x := range env {
		from := int(float64(x) * step)
		to := int(float64(x+1) * step)
		// fewer samples than columns: each column still shows its nearest sample
		if to <= from {
			to = from + 1
		}
		from = min(from, len(samples)-1)
		to = min(to, len(samples))

		p := Peak{Min: samples[from], Max: samples[from]}
		for _, v := range samples[from+1 : to] {
			p.Min = min(p.Min, v)
			p.Max = max(p.Max, v)
		}
		env[x] = p
	}

	return env
}
