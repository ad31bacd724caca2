// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ik5/wavetrim/audio"
	"github.com/ik5/wavetrim/internal/audiotest"
	"github.com/ik5/wavetrim/internal/observe"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func wait(t *testing.T, j *Job) Results {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rs, err := j.Wait(ctx)
	if err != nil {
		t.Fatalf("job did not complete: %v", err)
	}
	return rs
}

// clipServer serves generated WAV clips; /<n>.wav is n frames long.
func clipServer(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for path, h := range routes {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func serveWAV(frames int) http.HandlerFunc {
	payload := audiotest.SineWAV(8000, 1, frames, 440)
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "audio/wav")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	}
}

func TestStart_PreservesOrder(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := clipServer(t, map[string]http.HandlerFunc{
		"/first.wav": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
				return
			}
			serveWAV(100)(w, r)
		},
		"/second.wav": serveWAV(200),
	})

	var calls atomic.Int32
	job := New().Start(context.Background(),
		[]string{srv.URL + "/first.wav", srv.URL + "/second.wav"},
		func(Results) { calls.Add(1) })

	if job.State() != Loading {
		t.Fatalf("State() = %v, want loading", job.State())
	}

	// second finishes while first is still held back
	deadline := time.Now().Add(5 * time.Second)
	for job.Completed() < 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if job.Results()[1].Buffer == nil {
		t.Fatal("second source should have completed first")
	}
	close(release)

	rs := wait(t, job)
	if rs[0].Buffer.Frames() != 100 || rs[1].Buffer.Frames() != 200 {
		t.Errorf("frames = %d, %d; want 100, 200", rs[0].Buffer.Frames(), rs[1].Buffer.Frames())
	}
	if job.State() != Complete {
		t.Errorf("State() = %v, want complete", job.State())
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("onComplete called %d times, want 1", n)
	}
}

func TestStart_EmptySources(t *testing.T) {
	t.Parallel()

	srv := clipServer(t, map[string]http.HandlerFunc{"/a.wav": serveWAV(80)})

	var got Results
	var calls atomic.Int32
	job := New().Start(context.Background(),
		[]string{"", srv.URL + "/a.wav", ""},
		func(rs Results) {
			calls.Add(1)
			got = rs
		})

	wait(t, job)

	if n := calls.Load(); n != 1 {
		t.Fatalf("onComplete called %d times, want 1", n)
	}
	if job.Completed() != 3 {
		t.Errorf("Completed() = %d, want 3", job.Completed())
	}
	if !got[0].Skipped() || !got[2].Skipped() || got[1].Skipped() {
		t.Errorf("skipped flags = %v %v %v", got[0].Skipped(), got[1].Skipped(), got[2].Skipped())
	}
	bufs := got.Buffers()
	if bufs[0] != nil || bufs[1] == nil || bufs[2] != nil {
		t.Errorf("Buffers() = %v", bufs)
	}
}

func TestStart_NothingToLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sources []string
	}{
		{"no sources", nil},
		{"all empty", []string{"", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			job := New().Start(context.Background(), tt.sources, func(Results) { calls.Add(1) })

			rs := wait(t, job)
			if len(rs) != len(tt.sources) {
				t.Errorf("len(results) = %d, want %d", len(rs), len(tt.sources))
			}
			if calls.Load() != 1 {
				t.Errorf("onComplete called %d times, want 1", calls.Load())
			}
		})
	}
}

func TestStart_FailuresStillComplete(t *testing.T) {
	t.Parallel()

	srv := clipServer(t, map[string]http.HandlerFunc{
		"/ok.wav": serveWAV(50),
		"/missing.wav": func(w http.ResponseWriter, _ *http.Request) {
			http.NotFound(w, nil)
		},
		"/garbage.wav": func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("definitely not audio"))
		},
	})

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	var calls atomic.Int32
	job := New(WithMetrics(metrics)).Start(context.Background(), []string{
		srv.URL + "/missing.wav",
		srv.URL + "/ok.wav",
		srv.URL + "/garbage.wav",
	}, func(Results) { calls.Add(1) })

	rs := wait(t, job)

	if calls.Load() != 1 {
		t.Errorf("onComplete called %d times, want 1", calls.Load())
	}
	if !errors.Is(rs[0].Err, ErrTransport) || rs[0].Buffer != nil {
		t.Errorf("missing source = %+v, want transport failure", rs[0])
	}
	if rs[1].Err != nil || rs[1].Buffer == nil {
		t.Errorf("ok source = %+v", rs[1])
	}
	if !errors.Is(rs[2].Err, audio.ErrDecode) {
		t.Errorf("garbage source error = %v, want decode failure", rs[2].Err)
	}
	if err := rs.Err(); !errors.Is(err, ErrTransport) || !errors.Is(err, audio.ErrDecode) {
		t.Errorf("Results.Err() = %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var failures int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "wavetrim.loader.failures" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				failures += dp.Value
			}
		}
	}
	if failures != 2 {
		t.Errorf("recorded failures = %d, want 2", failures)
	}
}

func TestStart_Progress(t *testing.T) {
	t.Parallel()

	srv := clipServer(t, map[string]http.HandlerFunc{"/a.wav": serveWAV(4000)})
	size := int64(len(audiotest.SineWAV(8000, 1, 4000, 440)))

	var (
		mtx  sync.Mutex
		last = map[int][2]int64{}
	)
	progress := func(index int, loaded, total int64) {
		mtx.Lock()
		defer mtx.Unlock()
		last[index] = [2]int64{loaded, total}
	}

	job := New(WithProgress(progress)).Start(context.Background(),
		[]string{"", srv.URL + "/a.wav"}, nil)
	rs := wait(t, job)

	mtx.Lock()
	defer mtx.Unlock()

	if _, ok := last[0]; ok {
		t.Error("progress reported for a skipped source")
	}
	if got := last[1]; got[0] != size || got[1] != size {
		t.Errorf("final progress = %v, want %d/%d", got, size, size)
	}
	if rs[1].Bytes != size {
		t.Errorf("Bytes = %d, want %d", rs[1].Bytes, size)
	}
}

func TestStart_LocalFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	name := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(name, audiotest.SineWAV(8000, 2, 300, 220), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	job := New().Start(context.Background(), []string{
		name,
		"file://" + name,
		filepath.Join(dir, "nope.wav"),
	}, nil)
	rs := wait(t, job)

	for i := range 2 {
		if rs[i].Err != nil || rs[i].Buffer.Frames() != 300 || rs[i].Buffer.Channels() != 2 {
			t.Errorf("source %d = %+v", i, rs[i])
		}
	}
	if !errors.Is(rs[2].Err, ErrTransport) || !errors.Is(rs[2].Err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", rs[2].Err)
	}
}

func TestJob_Cancel(t *testing.T) {
	t.Parallel()

	srv := clipServer(t, map[string]http.HandlerFunc{
		"/stuck.wav": func(_ http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		},
	})

	job := New(WithConcurrency(1)).Start(context.Background(),
		[]string{srv.URL + "/stuck.wav", srv.URL + "/stuck.wav"}, nil)
	job.Cancel()

	rs := wait(t, job)
	for i, r := range rs {
		if !errors.Is(r.Err, ErrTransport) {
			t.Errorf("source %d error = %v, want transport failure", i, r.Err)
		}
	}
}

func TestStart_Timeout(t *testing.T) {
	t.Parallel()

	srv := clipServer(t, map[string]http.HandlerFunc{
		"/slow.wav": func(_ http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		},
	})

	job := New(WithTimeout(20*time.Millisecond)).Start(context.Background(),
		[]string{srv.URL + "/slow.wav"}, nil)
	rs := wait(t, job)

	if !errors.Is(rs[0].Err, ErrTransport) {
		t.Errorf("error = %v, want transport failure", rs[0].Err)
	}
}

func TestJob_WaitContext(t *testing.T) {
	t.Parallel()

	srv := clipServer(t, map[string]http.HandlerFunc{
		"/slow.wav": func(_ http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		},
	})

	job := New().Start(context.Background(), []string{srv.URL + "/slow.wav"}, nil)
	t.Cleanup(job.Cancel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := job.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
	if job.ID() == "" {
		t.Error("job has no ID")
	}
}

func TestLoadAndDecode(t *testing.T) {
	t.Parallel()

	srv := clipServer(t, map[string]http.HandlerFunc{"/a.wav": serveWAV(123)})
	l := New()

	buf, err := l.LoadAndDecode(context.Background(), srv.URL+"/a.wav")
	if err != nil {
		t.Fatalf("LoadAndDecode: %v", err)
	}
	if buf.Frames() != 123 {
		t.Errorf("Frames() = %d, want 123", buf.Frames())
	}

	if _, err := l.LoadAndDecode(context.Background(), ""); !errors.Is(err, ErrEmptySource) {
		t.Errorf("LoadAndDecode(\"\") error = %v, want ErrEmptySource", err)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	for s, want := range map[State]string{Idle: "idle", Loading: "loading", Complete: "complete", State(9): "State(9)"} {
		if got := s.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
