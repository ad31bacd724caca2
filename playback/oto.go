// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/ik5/wavetrim/audio"
)

// OtoSink plays through the system audio device. oto allows a single
// context per process, so create one OtoSink and share it.
type OtoSink struct {
	ctx      *oto.Context
	rate     int
	channels int
}

func NewOtoSink(sampleRate, channels int) (*OtoSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready

	return &OtoSink{ctx: ctx, rate: sampleRate, channels: channels}, nil
}

func (s *OtoSink) SampleRate() int { return s.rate }
func (s *OtoSink) Channels() int   { return s.channels }

func (s *OtoSink) Start(src audio.Source) (Stream, error) {
	if src.SampleRate() != s.rate || src.Channels() != s.channels {
		return nil, fmt.Errorf("%w: got %d Hz/%d ch, sink is %d Hz/%d ch",
			audio.ErrInvalidLayout, src.SampleRate(), src.Channels(), s.rate, s.channels)
	}

	p := s.ctx.NewPlayer(newFloat32Reader(src))
	p.Play()

	st := &otoStream{
		player: p,
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
	}
	go st.watch()

	return st, nil
}

type otoStream struct {
	player *oto.Player
	done   chan struct{}
	stop   chan struct{}
	once   sync.Once
}

func (s *otoStream) Done() <-chan struct{} { return s.done }

func (s *otoStream) Stop() error {
	s.once.Do(func() {
		s.player.Pause()
		close(s.stop)
	})
	<-s.done
	return nil
}

func (s *otoStream) watch() {
	defer close(s.done)

	t := time.NewTicker(10 * time.Millisecond)
	defer t.Stop()

	for {
		select {
		case <-s.stop:
			s.player.Close()
			return
		case <-t.C:
			if !s.player.IsPlaying() {
				s.player.Close()
				return
			}
		}
	}
}

// float32Reader encodes a Source as little-endian float32 bytes.
type float32Reader struct {
	src     audio.Source
	samples []float32
	pending []byte
	err     error
}

func newFloat32Reader(src audio.Source) *float32Reader {
	chunk := max(src.BufSize(), 1024)
	chunk -= chunk % src.Channels()

	return &float32Reader{
		src:     src,
		samples: make([]float32, chunk),
	}
}

func (r *float32Reader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.fill()
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *float32Reader) fill() {
	n, err := r.src.ReadSamples(r.samples)

	out := make([]byte, 4*n)
	for i, v := range r.samples[:n] {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	r.pending = out

	switch {
	case errors.Is(err, io.EOF):
		r.err = io.EOF
	case err != nil:
		r.err = fmt.Errorf("read samples: %w", err)
	case n == 0:
		r.err = io.EOF
	}
}
