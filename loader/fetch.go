// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// payload is an opened source. total is 0 when the size is unknown.
type payload struct {
	body  io.ReadCloser
	total int64
	hint  string
}

func (l *Loader) open(ctx context.Context, src string) (*payload, error) {
	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.openHTTP(ctx, src)
	case strings.HasPrefix(src, "file://"):
		u, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", src, err)
		}
		return openFile(u.Path)
	default:
		return openFile(src)
	}
}

func (l *Loader) openHTTP(ctx context.Context, src string) (*payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("get: unexpected status %s", resp.Status)
	}

	hint := src
	if ct := resp.Header.Get("Content-Type"); ct != "" && isAudioType(ct) {
		hint = ct
	}

	return &payload{
		body:  resp.Body,
		total: max(resp.ContentLength, 0),
		hint:  hint,
	}, nil
}

func openFile(name string) (*payload, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	var total int64
	if fi, err := f.Stat(); err == nil {
		total = fi.Size()
	}

	return &payload{body: f, total: total, hint: name}, nil
}

func isAudioType(ct string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "audio/")
}

// progressReader reports the running byte count after every read.
type progressReader struct {
	r      io.Reader
	index  int
	loaded int64
	total  int64
	fn     ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		// with an unknown size there is nothing meaningful to show
		if p.fn != nil && p.total > 0 {
			p.fn(p.index, p.loaded, p.total)
		}
	}
	return n, err
}
