// SPDX-License-Identifier: EPL-2.0

// Package sound pairs decoded clips with the trim region the user last
// edited on them.
package sound

import (
	"errors"
	"fmt"

	"github.com/ik5/wavetrim/audio"
	"github.com/ik5/wavetrim/trim"
)

var (
	ErrOutOfRange = errors.New("sound index out of range")
	ErrSkipped    = errors.New("sound was not loaded")
)

// Sound is a decoded clip and its trim bar positions in pixels.
type Sound struct {
	Buffer *audio.Buffer
	Name   string

	LeftX  float64
	RightX float64
}

// New selects the whole clip: LeftX is 0 and RightX is width.
func New(buf *audio.Buffer, name string, width float64) *Sound {
	return &Sound{
		Buffer: buf,
		Name:   name,
		LeftX:  0,
		RightX: width,
	}
}

// Bounds converts the trim region to seconds for a surface of width pixels.
// The result may be inverted; playback treats that as an empty region.
func (s *Sound) Bounds(width float64) (start, end float64) {
	if s.Buffer == nil {
		return 0, 0
	}

	d := s.Buffer.Duration()
	return trim.PixelToSeconds(s.LeftX, d, width), trim.PixelToSeconds(s.RightX, d, width)
}

// SetTrim stores bar positions, typically on pointer release.
func (s *Sound) SetTrim(left, right float64) {
	s.LeftX, s.RightX = left, right
}

// Clip returns the trimmed part of the buffer.
func (s *Sound) Clip(width float64) *audio.Buffer {
	if s.Buffer == nil {
		return nil
	}

	start, end := s.Bounds(width)
	return s.Buffer.Slice(start, end)
}

// Collection is the ordered set of sounds of one preset or search page.
// Slots whose source was skipped or failed hold nil so indexes keep
// matching the source list.
type Collection struct {
	sounds  []*Sound
	current int
}

func NewCollection() *Collection {
	return &Collection{current: -1}
}

// Replace discards the current sounds and builds new ones from bufs. names
// may be shorter than bufs.
func (c *Collection) Replace(bufs []*audio.Buffer, names []string, width float64) {
	c.sounds = make([]*Sound, len(bufs))
	c.current = -1

	for i, buf := range bufs {
		if buf == nil {
			continue
		}

		name := fmt.Sprintf("sound %d", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		c.sounds[i] = New(buf, name, width)
	}
}

func (c *Collection) Len() int { return len(c.sounds) }

// At returns the sound at i, nil for a skipped slot.
func (c *Collection) At(i int) *Sound {
	if i < 0 || i >= len(c.sounds) {
		return nil
	}
	return c.sounds[i]
}

// Select makes i the current sound.
func (c *Collection) Select(i int) (*Sound, error) {
	if i < 0 || i >= len(c.sounds) {
		return nil, fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(c.sounds))
	}
	if c.sounds[i] == nil {
		return nil, fmt.Errorf("%w: %d", ErrSkipped, i)
	}

	c.current = i
	return c.sounds[i], nil
}

// Current returns the selected sound and its index, or nil and -1.
func (c *Collection) Current() (*Sound, int) {
	if c.current < 0 {
		return nil, -1
	}
	return c.sounds[c.current], c.current
}

// Loaded counts the non-nil slots.
func (c *Collection) Loaded() int {
	n := 0
	for _, s := range c.sounds {
		if s != nil {
			n++
		}
	}
	return n
}
