// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/ik5/wavetrim/audio"
	"github.com/ik5/wavetrim/internal/audiotest"
)

// fakeSink drains every source it is given. When hold is set, streams stay
// open until stopped.
type fakeSink struct {
	rate     int
	channels int
	hold     bool

	mtx     sync.Mutex
	started []*fakeStream
}

type fakeStream struct {
	src     audio.Source
	samples []float32
	done    chan struct{}
	once    sync.Once
}

func (s *fakeSink) SampleRate() int { return s.rate }
func (s *fakeSink) Channels() int   { return s.channels }

func (s *fakeSink) Start(src audio.Source) (Stream, error) {
	st := &fakeStream{src: src, done: make(chan struct{})}

	buf := make([]float32, 512*src.Channels())
	for {
		n, err := src.ReadSamples(buf)
		st.samples = append(st.samples, buf[:n]...)
		if errors.Is(err, io.EOF) || n == 0 {
			break
		}
	}

	s.mtx.Lock()
	s.started = append(s.started, st)
	s.mtx.Unlock()

	if !s.hold {
		st.finish()
	}
	return st, nil
}

func (s *fakeSink) streams() []*fakeStream {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return append([]*fakeStream(nil), s.started...)
}

func (st *fakeStream) finish()               { st.once.Do(func() { close(st.done) }) }
func (st *fakeStream) Done() <-chan struct{} { return st.done }
func (st *fakeStream) Stop() error           { st.finish(); return nil }

type failingSink struct{ fakeSink }

var errDevice = errors.New("device unavailable")

func (s *failingSink) Start(audio.Source) (Stream, error) { return nil, errDevice }

func TestPlay_InvertedRangeIsSilent(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{rate: 8000, channels: 1}
	e := NewEngine(sink)
	buf := audiotest.SineBuffer(t, 8000, 1, 24000, 440) // 3s

	v, err := e.Play(buf, 2.0, 1.0)
	if err != nil {
		t.Fatalf("Play(2, 1) error = %v, want nil", err)
	}
	if v.Duration() != 0 {
		t.Errorf("Duration() = %v, want 0", v.Duration())
	}
	if err := v.Wait(context.Background()); err != nil {
		t.Errorf("Wait() = %v", err)
	}
	if err := v.Stop(); err != nil {
		t.Errorf("Stop() = %v", err)
	}
	if n := len(sink.streams()); n != 0 {
		t.Errorf("sink started %d streams, want 0", n)
	}
}

func TestPlay_ConvertsToSinkFormat(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{rate: 16000, channels: 2}
	e := NewEngine(sink)
	buf := audiotest.SineBuffer(t, 8000, 1, 16000, 440) // 2s mono

	v, err := e.Play(buf, 0.5, 1.0)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if math.Abs(v.Duration()-0.5) > 1e-9 {
		t.Errorf("Duration() = %v, want 0.5", v.Duration())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := v.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	streams := sink.streams()
	if len(streams) != 1 {
		t.Fatalf("sink started %d streams, want 1", len(streams))
	}
	src := streams[0].src
	if src.SampleRate() != 16000 || src.Channels() != 2 {
		t.Errorf("source format = %d Hz/%d ch, want 16000/2", src.SampleRate(), src.Channels())
	}
	if got := len(streams[0].samples); got != 8000*2 {
		t.Errorf("played %d samples, want %d", got, 8000*2)
	}
}

func TestPlay_ClampsOffsets(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{rate: 8000, channels: 1}
	e := NewEngine(sink)
	buf := audiotest.SineBuffer(t, 8000, 1, 8000, 440)

	v, err := e.Play(buf, -3, 42)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if math.Abs(v.Duration()-1) > 1e-9 {
		t.Errorf("Duration() = %v, want 1", v.Duration())
	}
}

func TestPlay_Overlapping(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{rate: 8000, channels: 1, hold: true}
	e := NewEngine(sink)
	buf := audiotest.SineBuffer(t, 8000, 1, 8000, 440)

	a, err := e.Play(buf, 0, 1)
	if err != nil {
		t.Fatalf("Play a: %v", err)
	}
	b, err := e.Play(buf, 0, 0.5)
	if err != nil {
		t.Fatalf("Play b: %v", err)
	}
	if n := e.Active(); n != 2 {
		t.Fatalf("Active() = %d, want 2", n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait on held voice = %v, want deadline exceeded", err)
	}

	if err := a.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := a.Wait(context.Background()); err != nil {
		t.Errorf("Wait after Stop = %v", err)
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Wait(context.Background()); err != nil {
		t.Errorf("Wait after Close = %v", err)
	}
	if _, err := e.Play(buf, 0, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Play after Close error = %v, want ErrClosed", err)
	}

	deadline := time.Now().Add(time.Second)
	for e.Active() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if n := e.Active(); n != 0 {
		t.Errorf("Active() = %d after Close, want 0", n)
	}
}

// gateSink blocks in Start until release is closed.
type gateSink struct {
	fakeSink
	entered chan struct{}
	release chan struct{}
}

func (s *gateSink) Start(src audio.Source) (Stream, error) {
	close(s.entered)
	<-s.release
	return s.fakeSink.Start(src)
}

func TestPlay_CloseWhileStarting(t *testing.T) {
	t.Parallel()

	sink := &gateSink{
		fakeSink: fakeSink{rate: 8000, channels: 1, hold: true},
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	e := NewEngine(sink)
	buf := audiotest.SineBuffer(t, 8000, 1, 8000, 440)

	type result struct {
		v   *Voice
		err error
	}
	played := make(chan result, 1)
	go func() {
		v, err := e.Play(buf, 0, 1)
		played <- result{v, err}
	}()

	<-sink.entered
	if err := e.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	close(sink.release)

	res := <-played
	if !errors.Is(res.err, ErrClosed) || res.v != nil {
		t.Fatalf("Play() = %v, %v, want nil, ErrClosed", res.v, res.err)
	}

	streams := sink.streams()
	if len(streams) != 1 {
		t.Fatalf("sink started %d streams, want 1", len(streams))
	}
	select {
	case <-streams[0].Done():
	case <-time.After(time.Second):
		t.Error("stream started during Close was left playing")
	}
	if n := e.Active(); n != 0 {
		t.Errorf("Active() = %d, want 0", n)
	}
}

func TestPlay_Errors(t *testing.T) {
	t.Parallel()

	e := NewEngine(&fakeSink{rate: 8000, channels: 1})
	if _, err := e.Play(nil, 0, 1); !errors.Is(err, ErrNoAudio) {
		t.Errorf("Play(nil) error = %v, want ErrNoAudio", err)
	}

	failing := NewEngine(&failingSink{fakeSink{rate: 8000, channels: 1}})
	buf := audiotest.SineBuffer(t, 8000, 1, 800, 440)
	if _, err := failing.Play(buf, 0, 1); !errors.Is(err, errDevice) {
		t.Errorf("Play on failing sink error = %v, want errDevice", err)
	}
}

func TestFloat32Reader(t *testing.T) {
	t.Parallel()

	buf, err := audio.NewBuffer([]float32{0.5, -0.25, 1, 0}, 8000, 2)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}

	data, err := io.ReadAll(newFloat32Reader(buf.Source()))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(data) != 16 {
		t.Fatalf("len = %d, want 16", len(data))
	}

	// 0.5 is 0x3f000000
	if data[0] != 0 || data[1] != 0 || data[2] != 0 || data[3] != 0x3f {
		t.Errorf("first sample bytes = % x", data[:4])
	}
}
