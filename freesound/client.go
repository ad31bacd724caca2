// SPDX-License-Identifier: EPL-2.0

package freesound

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ik5/wavetrim/internal/observe"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL  = "https://freesound.org/apiv2"
	DefaultPageSize = 9

	previewKey = "preview-hq-mp3"
)

// Result is one search hit.
type Result struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

type soundResponse struct {
	Previews map[string]string `json:"previews"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithPageSize(n int) Option {
	return func(cl *Client) {
		if n > 0 {
			cl.pageSize = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

func WithMetrics(m *observe.Metrics) Option {
	return func(cl *Client) {
		if m != nil {
			cl.metrics = m
		}
	}
}

// Client talks to the Freesound API v2.
type Client struct {
	baseURL  string
	pageSize int
	http     *http.Client
	logger   *slog.Logger
	metrics  *observe.Metrics

	mtx   sync.RWMutex
	token string
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		pageSize: DefaultPageSize,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   slog.Default(),
		metrics:  observe.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the API key used by later requests.
func (c *Client) SetToken(token string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.token = token
}

func (c *Client) getToken() string {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	return c.token
}

// Search runs one page of a text search.
func (c *Client) Search(ctx context.Context, q Query) ([]Result, error) {
	u := c.baseURL + "/search/text/?" + q.values(c.getToken(), c.pageSize).Encode()

	var resp searchResponse
	if err := c.get(ctx, "search", u, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("search done", "query", q.Text, "page", q.page(), "results", len(resp.Results))
	return resp.Results, nil
}

// Sound returns the high quality mp3 preview URL of sound id.
func (c *Client) Sound(ctx context.Context, id int) (string, error) {
	v := url.Values{}
	v.Set("token", c.getToken())
	u := c.baseURL + "/sounds/" + strconv.Itoa(id) + "/?" + v.Encode()

	var resp soundResponse
	if err := c.get(ctx, "sound", u, &resp); err != nil {
		return "", err
	}

	preview := resp.Previews[previewKey]
	if preview == "" {
		return "", fmt.Errorf("%w: %d", ErrNoPreview, id)
	}
	return preview, nil
}

// Previews resolves the preview URL of every result concurrently. The
// returned slice is indexed like results; the first failure cancels the
// rest.
func (c *Client) Previews(ctx context.Context, results []Result) ([]string, error) {
	urls := make([]string, len(results))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.pageSize)

	for i, r := range results {
		g.Go(func() error {
			u, err := c.Sound(ctx, r.ID)
			if err != nil {
				return err
			}
			urls[i] = u
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (c *Client) get(ctx context.Context, endpoint, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return transportError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordSearch(ctx, endpoint, 0)
		return transportError(err)
	}
	defer resp.Body.Close()

	c.metrics.RecordSearch(ctx, endpoint, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := classify(resp.StatusCode, detail(body))
		c.logger.Warn("freesound request failed", "endpoint", endpoint, "status", resp.StatusCode, "err", serr)
		return serr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &StatusError{
			Status: resp.StatusCode,
			Detail: "invalid response: " + err.Error(),
			kind:   ErrService,
			err:    err,
		}
	}
	return nil
}

// detail extracts the server's explanation from an error body.
func detail(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	return strings.TrimSpace(string(body))
}
