// SPDX-License-Identifier: EPL-2.0

package wavetrim

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrRunning = errors.New("animator already running")

// FrameFunc draws one frame.
type FrameFunc func(now time.Time)

// Animator calls a FrameFunc at a fixed rate between Start and Stop.
type Animator struct {
	interval time.Duration
	frame    FrameFunc
	frames   atomic.Uint64

	mtx    sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAnimator runs frame fps times per second; fps <= 0 means 60.
func NewAnimator(fps int, frame FrameFunc) *Animator {
	if fps <= 0 {
		fps = 60
	}
	return &Animator{
		interval: time.Second / time.Duration(fps),
		frame:    frame,
	}
}

// Start begins the loop. It runs until Stop is called or ctx is done.
func (a *Animator) Start(ctx context.Context) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	if a.done != nil {
		select {
		case <-a.done:
		default:
			return ErrRunning
		}
	}

	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})

	go a.run(ctx, a.done)
	return nil
}

func (a *Animator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	t := time.NewTicker(a.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			a.frame(now)
			a.frames.Add(1)
		}
	}
}

// Stop ends the loop and waits for the frame in progress, if any.
func (a *Animator) Stop() {
	a.mtx.Lock()
	cancel, done := a.cancel, a.done
	a.mtx.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (a *Animator) Running() bool {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	if a.done == nil {
		return false
	}
	select {
	case <-a.done:
		return false
	default:
		return true
	}
}

// Frames is the number of frames drawn so far.
func (a *Animator) Frames() uint64 { return a.frames.Load() }
