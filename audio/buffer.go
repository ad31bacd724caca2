// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/wavetrim/utils"
)

// Buffer is fully decoded PCM audio held in memory. It is produced once by
// decoding and never mutated afterwards, so it is safe to share between
// goroutines; every derived Buffer (Slice, Resample, Remix) is a new value.
type Buffer struct {
	samples    []float32 // interleaved
	sampleRate int
	channels   int
}

// NewBuffer copies interleaved samples into a new Buffer.
func NewBuffer(samples []float32, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 || channels <= 0 || len(samples)%channels != 0 {
		return nil, fmt.Errorf("%w: rate=%d channels=%d samples=%d",
			ErrInvalidLayout, sampleRate, channels, len(samples))
	}

	data := make([]float32, len(samples))
	copy(data, samples)

	return &Buffer{samples: data, sampleRate: sampleRate, channels: channels}, nil
}

// ReadAll drains src into a Buffer and closes it.
func ReadAll(src Source) (*Buffer, error) {
	defer src.Close()

	channels := src.Channels()
	if src.SampleRate() <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: rate=%d channels=%d", ErrInvalidLayout, src.SampleRate(), channels)
	}

	chunk := src.BufSize()
	if chunk < channels {
		chunk = 4096
	}
	chunk -= chunk % channels

	buf := make([]float32, chunk)
	var samples []float32

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			samples = append(samples, buf[:n]...)
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		if n == 0 {
			// a source that neither progresses nor reports EOF is finished
			break
		}
	}

	// drop a trailing partial frame
	samples = samples[:len(samples)-len(samples)%channels]

	return &Buffer{samples: samples, sampleRate: src.SampleRate(), channels: channels}, nil
}

func (b *Buffer) SampleRate() int { return b.sampleRate }
func (b *Buffer) Channels() int   { return b.channels }

// Frames is the number of sample frames (samples per channel).
func (b *Buffer) Frames() int { return len(b.samples) / b.channels }

// Duration in seconds.
func (b *Buffer) Duration() float64 {
	return float64(b.Frames()) / float64(b.sampleRate)
}

// Sample returns the value of channel ch at frame, or 0 outside the buffer.
func (b *Buffer) Sample(frame, ch int) float32 {
	if frame < 0 || frame >= b.Frames() || ch < 0 || ch >= b.channels {
		return 0
	}
	return b.samples[frame*b.channels+ch]
}

// Samples returns a copy of the interleaved sample data.
func (b *Buffer) Samples() []float32 {
	out := make([]float32, len(b.samples))
	copy(out, b.samples)
	return out
}

// FrameAt converts a time offset to a frame index clamped to [0, Frames()].
func (b *Buffer) FrameAt(seconds float64) int {
	f := int(math.Round(seconds * float64(b.sampleRate)))
	return min(max(f, 0), b.Frames())
}

// Slice returns the region between start and end seconds. Offsets are
// clamped to the buffer; an inverted or empty region yields a zero-length
// Buffer rather than an error.
func (b *Buffer) Slice(start, end float64) *Buffer {
	from, to := b.FrameAt(start), b.FrameAt(end)
	if to < from {
		to = from
	}

	return &Buffer{
		samples:    b.samples[from*b.channels : to*b.channels : to*b.channels],
		sampleRate: b.sampleRate,
		channels:   b.channels,
	}
}

// Source streams the buffer through the Source interface.
func (b *Buffer) Source() Source {
	return &bufferSource{buf: b}
}

// Remix converts the buffer to the requested channel count. Mixing down to
// mono averages all channels; any other conversion maps output channel c to
// input channel c modulo the input count.
func (b *Buffer) Remix(channels int) *Buffer {
	if channels <= 0 || channels == b.channels {
		return b
	}

	frames := b.Frames()
	out := make([]float32, frames*channels)

	if channels == 1 {
		inv := 1 / float32(b.channels)
		for f := range frames {
			var sum float32
			for c := range b.channels {
				sum += b.samples[f*b.channels+c]
			}
			out[f] = sum * inv
		}
	} else {
		for f := range frames {
			for c := range channels {
				out[f*channels+c] = b.samples[f*b.channels+c%b.channels]
			}
		}
	}

	return &Buffer{samples: out, sampleRate: b.sampleRate, channels: channels}
}

// Resample converts the buffer to rate using Catmull-Rom cubic interpolation.
func (b *Buffer) Resample(rate int) *Buffer {
	if rate <= 0 || rate == b.sampleRate {
		return b
	}
	if b.Frames() == 0 {
		return &Buffer{sampleRate: rate, channels: b.channels}
	}

	ratio := float64(b.sampleRate) / float64(rate)
	frames := b.Frames()
	outFrames := int(math.Floor(float64(frames) / ratio))
	out := make([]float32, outFrames*b.channels)

	for i := range outFrames {
		pos := float64(i) * ratio
		idx := int(pos)
		x := float32(pos - float64(idx))

		for c := range b.channels {
			y0 := b.clampedSample(idx-1, c)
			y1 := b.clampedSample(idx, c)
			y2 := b.clampedSample(idx+1, c)
			y3 := b.clampedSample(idx+2, c)
			out[i*b.channels+c] = utils.CubicInterpolate(y0, y1, y2, y3, x)
		}
	}

	return &Buffer{samples: out, sampleRate: rate, channels: b.channels}
}

// clampedSample repeats the edge frames outside the buffer.
func (b *Buffer) clampedSample(frame, ch int) float32 {
	frame = min(max(frame, 0), b.Frames()-1)
	return b.samples[frame*b.channels+ch]
}

// DecodeBytes detects the format of data, decodes it and reads it fully.
// hint may be a URL, file name or MIME type. Every failure wraps ErrDecode.
func (r *Registry) DecodeBytes(data []byte, hint string) (*Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrDecode, ErrEmptyPayload)
	}

	format, dec, ok := r.Detect(data[:min(len(data), 64)], hint)
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrDecode, ErrUnknownFormat)
	}

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, format, err)
	}

	buf, err := ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, format, err)
	}

	return buf, nil
}

type bufferSource struct {
	buf *Buffer
	pos int // next sample index
}

func (s *bufferSource) SampleRate() int { return s.buf.sampleRate }
func (s *bufferSource) Channels() int   { return s.buf.channels }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.buf.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if s.pos >= len(s.buf.samples) {
		return 0, io.EOF
	}

	n := copy(dst, s.buf.samples[s.pos:])
	s.pos += n

	if s.pos >= len(s.buf.samples) {
		return n, io.EOF
	}
	return n, nil
}
