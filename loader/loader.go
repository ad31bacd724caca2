// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ik5/wavetrim/audio"
	"github.com/ik5/wavetrim/formats"
	"github.com/ik5/wavetrim/internal/observe"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 8
)

// ProgressFunc receives byte progress for the source at index. It is only
// called when the total size is known and may be called from several
// goroutines at once.
type ProgressFunc func(index int, loaded, total int64)

// CompleteFunc receives the results of a finished job, indexed like the
// source list.
type CompleteFunc func(Results)

type Option func(*Loader)

func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

func WithRegistry(r *audio.Registry) Option {
	return func(l *Loader) {
		if r != nil {
			l.registry = r
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithMetrics(m *observe.Metrics) Option {
	return func(l *Loader) {
		if m != nil {
			l.metrics = m
		}
	}
}

// WithTimeout bounds each fetch and decode. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = max(d, 0) }
}

// WithConcurrency caps the number of sources loaded at the same time.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(l *Loader) { l.progress = fn }
}

// Loader fetches and decodes audio sources in parallel.
type Loader struct {
	client      *http.Client
	registry    *audio.Registry
	logger      *slog.Logger
	metrics     *observe.Metrics
	timeout     time.Duration
	concurrency int
	progress    ProgressFunc
}

func New(opts ...Option) *Loader {
	l := &Loader{
		client:      http.DefaultClient,
		registry:    formats.NewRegistry(),
		logger:      slog.Default(),
		metrics:     observe.DefaultMetrics(),
		timeout:     DefaultTimeout,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start loads every source in the background and returns at once. Empty
// sources complete immediately with an empty Result. Failed sources
// complete too, carrying the error, so onComplete is always called exactly
// once. onComplete may be nil.
func (l *Loader) Start(ctx context.Context, sources []string, onComplete CompleteFunc) *Job {
	ctx, cancel := context.WithCancel(ctx)

	j := &Job{
		id:         uuid.New(),
		sources:    append([]string(nil), sources...),
		results:    make(Results, len(sources)),
		onComplete: onComplete,
		cancel:     cancel,
		done:       make(chan struct{}),
		started:    time.Now(),
	}
	j.logger = l.logger.With("job", j.id.String())
	j.state.Store(int32(Loading))

	l.metrics.ActiveJobs.Add(ctx, 1)
	j.logger.Debug("job started", "sources", len(sources))

	pending := make([]int, 0, len(sources))
	for i, src := range sources {
		if src == "" {
			j.complete(i, Result{})
			l.metrics.RecordLoad(ctx, "skipped", 0)
			continue
		}
		pending = append(pending, i)
	}

	// every source was empty
	if len(pending) == 0 {
		l.finish(ctx, j)
		return j
	}

	go func() {
		var g errgroup.Group
		g.SetLimit(l.concurrency)

		for _, i := range pending {
			g.Go(func() error {
				res := l.load(ctx, i, j.sources[i], j.logger)
				if j.complete(i, res) {
					l.finish(ctx, j)
				}
				return nil
			})
		}

		_ = g.Wait()
	}()

	return j
}

func (l *Loader) finish(ctx context.Context, j *Job) {
	j.finish()
	l.metrics.ActiveJobs.Add(context.WithoutCancel(ctx), -1)
}

// LoadAndDecode fetches and decodes a single source.
func (l *Loader) LoadAndDecode(ctx context.Context, src string) (*audio.Buffer, error) {
	if src == "" {
		return nil, ErrEmptySource
	}

	res := l.load(ctx, -1, src, l.logger)
	return res.Buffer, res.Err
}

func (l *Loader) load(ctx context.Context, index int, src string, logger *slog.Logger) Result {
	start := time.Now()
	res := Result{Source: src}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	data, hint, err := l.fetch(ctx, index, src)
	res.Bytes = int64(len(data))
	l.metrics.BytesFetched.Add(ctx, res.Bytes)

	if err != nil {
		res.Err = fmt.Errorf("%w: %s: %w", ErrTransport, src, err)
		l.fail(ctx, logger, index, res, failureKind(err))
		return res
	}

	buf, err := l.registry.DecodeBytes(data, hint)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", src, err)
		l.fail(ctx, logger, index, res, "decode")
		return res
	}

	res.Buffer = buf
	l.metrics.RecordLoad(ctx, "ok", time.Since(start))
	logger.Debug("source loaded", "index", index, "source", src,
		"bytes", res.Bytes, "duration", buf.Duration())

	return res
}

func (l *Loader) fetch(ctx context.Context, index int, src string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	p, err := l.open(ctx, src)
	if err != nil {
		return nil, "", err
	}
	defer p.body.Close()

	data, err := io.ReadAll(&progressReader{
		r:     p.body,
		index: index,
		total: p.total,
		fn:    l.progressFor(index),
	})
	if err != nil {
		return data, "", fmt.Errorf("read body: %w", err)
	}

	return data, p.hint, nil
}

func (l *Loader) progressFor(index int) ProgressFunc {
	if index < 0 {
		return nil
	}
	return l.progress
}

func (l *Loader) fail(ctx context.Context, logger *slog.Logger, index int, res Result, kind string) {
	mctx := context.WithoutCancel(ctx)
	l.metrics.RecordLoad(mctx, "error", 0)
	l.metrics.RecordLoadFailure(mctx, kind)
	logger.Warn("source failed", "index", index, "source", res.Source, "kind", kind, "err", res.Err)
}

func failureKind(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "transport"
}
