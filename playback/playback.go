// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ik5/wavetrim/audio"
)

var (
	ErrNoAudio = errors.New("no audio to play")
	ErrClosed  = errors.New("engine closed")
)

// Sink is an output device. Start begins playing src right away and returns
// without waiting for it to finish.
type Sink interface {
	SampleRate() int
	Channels() int
	Start(src audio.Source) (Stream, error)
}

// Stream is one sound playing on a Sink.
type Stream interface {
	// Done is closed once the stream has played out or was stopped.
	Done() <-chan struct{}
	Stop() error
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine plays regions of decoded buffers. Every Play creates an independent
// voice, so overlapping calls are heard together.
type Engine struct {
	sink   Sink
	logger *slog.Logger

	mtx    sync.Mutex
	voices map[*Voice]struct{}
	closed bool
}

func NewEngine(sink Sink, opts ...Option) *Engine {
	e := &Engine{
		sink:   sink,
		logger: slog.Default(),
		voices: make(map[*Voice]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Play starts buf at start seconds and stops it at end seconds. Offsets are
// clamped to the buffer; end <= start yields a voice of zero length that is
// already finished.
func (e *Engine) Play(buf *audio.Buffer, start, end float64) (*Voice, error) {
	if buf == nil {
		return nil, ErrNoAudio
	}

	e.mtx.Lock()
	closed := e.closed
	e.mtx.Unlock()
	if closed {
		return nil, ErrClosed
	}

	clip := buf.Slice(start, end)
	if clip.Frames() == 0 {
		e.logger.Debug("empty region, nothing to play", "start", start, "end", end)
		return finishedVoice(), nil
	}

	duration := clip.Duration()
	clip = clip.Resample(e.sink.SampleRate()).Remix(e.sink.Channels())

	stream, err := e.sink.Start(clip.Source())
	if err != nil {
		return nil, fmt.Errorf("start playback: %w", err)
	}

	v := &Voice{stream: stream, duration: duration, done: stream.Done()}
	if err := e.track(v); err != nil {
		return nil, err
	}

	e.logger.Debug("voice started", "start", start, "end", end, "duration", duration)

	return v, nil
}

// Active returns the number of voices still playing.
func (e *Engine) Active() int {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	return len(e.voices)
}

// Close stops every playing voice and refuses further Play calls.
func (e *Engine) Close() error {
	e.mtx.Lock()
	e.closed = true
	voices := make([]*Voice, 0, len(e.voices))
	for v := range e.voices {
		voices = append(voices, v)
	}
	e.mtx.Unlock()

	var errs []error
	for _, v := range voices {
		if err := v.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// track registers v. A Close that ran while the stream was starting has
// not seen v, so the stream is stopped here instead.
func (e *Engine) track(v *Voice) error {
	e.mtx.Lock()
	if e.closed {
		e.mtx.Unlock()
		if err := v.Stop(); err != nil {
			return errors.Join(ErrClosed, err)
		}
		return ErrClosed
	}
	e.voices[v] = struct{}{}
	e.mtx.Unlock()

	go func() {
		<-v.done

		e.mtx.Lock()
		delete(e.voices, v)
		e.mtx.Unlock()
	}()

	return nil
}

// Voice is a single playback started by Engine.Play.
type Voice struct {
	stream   Stream
	duration float64
	done     <-chan struct{}
}

func finishedVoice() *Voice {
	done := make(chan struct{})
	close(done)
	return &Voice{done: done}
}

// Duration of the played region in seconds.
func (v *Voice) Duration() float64 { return v.duration }

// Done is closed when the voice has finished.
func (v *Voice) Done() <-chan struct{} { return v.done }

// Wait blocks until the voice finishes or ctx is done.
func (v *Voice) Wait(ctx context.Context) error {
	select {
	case <-v.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w", ctx.Err())
	}
}

// Stop silences the voice. Stopping a finished voice is a no-op.
func (v *Voice) Stop() error {
	if v.stream == nil {
		return nil
	}
	if err := v.stream.Stop(); err != nil {
		return fmt.Errorf("stop voice: %w", err)
	}
	return nil
}
