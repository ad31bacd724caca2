// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"errors"
	"io"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type sliceReader struct {
	data []int
	err  error
}

func (r *sliceReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n := copy(buf.Data, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestSource_Normalises(t *testing.T) {
	t.Parallel()

	src := NewSource(&sliceReader{data: []int{16384, -32768, 0, 32767}}, 8000, 2, 16)

	dst := make([]float32, 8)
	n, err := src.ReadSamples(dst)
	if n != 4 {
		t.Fatalf("n = %d, want 4", n)
	}
	if !errors.Is(err, io.EOF) {
		t.Errorf("short read err = %v, want io.EOF", err)
	}
	if dst[0] != 0.5 || dst[1] != -1 || dst[2] != 0 {
		t.Errorf("dst = %v, want [0.5 -1 0 ~1]", dst[:4])
	}

	n, err = src.ReadSamples(dst)
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("drained read = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestSource_EightBitIsSigned(t *testing.T) {
	t.Parallel()

	// raw bytes as go-audio reports them: 0x40, 0xc0, 0x80, 0x7f
	src := NewSource(&sliceReader{data: []int{0x40, 0xc0, 0x80, 0x7f}}, 8000, 1, 8)

	dst := make([]float32, 4)
	if n, _ := src.ReadSamples(dst); n != 4 {
		t.Fatalf("n = %d, want 4", n)
	}

	want := []float32{0.5, -0.5, -1, 127.0 / 128}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestSource_ReaderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	src := NewSource(&sliceReader{err: boom}, 8000, 1, 24)

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestSeekable(t *testing.T) {
	t.Parallel()

	rs, err := Seekable(strings.NewReader("abc"))
	if err != nil {
		t.Fatalf("Seekable() error = %v", err)
	}
	if _, err := rs.Seek(1, io.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	b, _ := io.ReadAll(rs)
	if string(b) != "bc" {
		t.Errorf("read %q, want bc", b)
	}

	// io.MultiReader is not a seeker and must be buffered
	rs, err = Seekable(io.MultiReader(strings.NewReader("x")))
	if err != nil || rs == nil {
		t.Fatalf("Seekable(multi) = %v, %v", rs, err)
	}
}
