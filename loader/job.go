// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ik5/wavetrim/audio"
)

type State int32

const (
	Idle State = iota
	Loading
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Result is the outcome of one source. A skipped source has an empty
// Source and neither Buffer nor Err.
type Result struct {
	Source string
	Buffer *audio.Buffer
	Err    error
	Bytes  int64
}

func (r Result) Skipped() bool { return r.Source == "" }

type Results []Result

// Buffers returns the decoded buffers by index, nil where a source was
// skipped or failed.
func (rs Results) Buffers() []*audio.Buffer {
	out := make([]*audio.Buffer, len(rs))
	for i, r := range rs {
		out[i] = r.Buffer
	}
	return out
}

// Err joins the errors of all failed sources.
func (rs Results) Err() error {
	var errs []error
	for _, r := range rs {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}

// Job is one run of Loader.Start.
type Job struct {
	id      uuid.UUID
	sources []string
	logger  *slog.Logger
	started time.Time

	mtx       sync.Mutex
	results   Results
	completed int

	state      atomic.Int32
	onComplete CompleteFunc
	once       sync.Once
	cancel     context.CancelFunc
	done       chan struct{}
}

func (j *Job) ID() string { return j.id.String() }

func (j *Job) State() State { return State(j.state.Load()) }

func (j *Job) Len() int { return len(j.sources) }

// Completed is the number of sources that have finished, skipped ones
// included.
func (j *Job) Completed() int {
	j.mtx.Lock()
	defer j.mtx.Unlock()

	return j.completed
}

// Results returns a snapshot; slots of unfinished sources are zero.
func (j *Job) Results() Results {
	j.mtx.Lock()
	defer j.mtx.Unlock()

	return append(Results(nil), j.results...)
}

// Done is closed after onComplete has returned.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job is complete or ctx is done.
func (j *Job) Wait(ctx context.Context) (Results, error) {
	select {
	case <-j.done:
		return j.Results(), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w", ctx.Err())
	}
}

// Cancel aborts the sources still loading. They complete with an error and
// the job still reaches Complete.
func (j *Job) Cancel() { j.cancel() }

// complete stores res at index i and reports whether it was the last one.
func (j *Job) complete(i int, res Result) bool {
	j.mtx.Lock()
	defer j.mtx.Unlock()

	j.results[i] = res
	j.completed++
	return j.completed == len(j.sources)
}

func (j *Job) finish() {
	j.once.Do(func() {
		j.state.Store(int32(Complete))
		results := j.Results()

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		j.logger.Info("job complete", "sources", len(results), "failed", failed,
			"elapsed", time.Since(j.started))

		if j.onComplete != nil {
			j.onComplete(results)
		}

		j.cancel()
		close(j.done)
	})
}
