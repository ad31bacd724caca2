// SPDX-License-Identifier: EPL-2.0

// Package preset reads sample kits: named lists of audio URLs served by the
// companion preset service at /api/presets.
package preset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Path is where the preset service publishes its list.
const Path = "/api/presets"

var (
	ErrStatus   = errors.New("unexpected preset service status")
	ErrNoName   = errors.New("preset has no name")
	ErrNoSample = errors.New("sample has no url")
)

type Sample struct {
	URL  string `json:"url" yaml:"url"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

type Preset struct {
	Name    string   `json:"name" yaml:"name"`
	Samples []Sample `json:"samples" yaml:"samples"`
}

// URLs lists the sample locations in order.
func (p Preset) URLs() []string {
	out := make([]string, len(p.Samples))
	for i, s := range p.Samples {
		out[i] = s.URL
	}
	return out
}

// Names lists the sample names in order; unnamed samples give "".
func (p Preset) Names() []string {
	out := make([]string, len(p.Samples))
	for i, s := range p.Samples {
		out[i] = s.Name
	}
	return out
}

// Validate requires a name. Samples without a URL are allowed: they load
// as skipped slots.
func (p Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNoName
	}
	return nil
}

// Parse reads a YAML list of presets.
func Parse(r io.Reader) ([]Preset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var presets []Preset
	if err := dec.Decode(&presets); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse presets: %w", err)
	}

	var errs []error
	for i, p := range presets {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("preset %d: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return presets, nil
}

func LoadFile(name string) ([]Preset, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open presets: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Client fetches presets from a preset service.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// List returns the presets. Relative sample URLs are resolved against the
// service address.
func (c *Client) List(ctx context.Context) ([]Preset, error) {
	endpoint := c.baseURL + Path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get presets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	var presets []Preset
	if err := json.NewDecoder(resp.Body).Decode(&presets); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return presets, nil
	}
	for i := range presets {
		for j, s := range presets[i].Samples {
			presets[i].Samples[j].URL = resolve(base, s.URL)
		}
	}

	return presets, nil
}

func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return ref
	}
	return base.ResolveReference(u).String()
}
