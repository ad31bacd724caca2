// SPDX-License-Identifier: EPL-2.0

// Package config holds the runtime settings of the wavetrim command: a YAML
// file overlaid with WAVETRIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/ik5/wavetrim/freesound"
	"github.com/ik5/wavetrim/internal/observe"
	"github.com/ik5/wavetrim/loader"
	"gopkg.in/yaml.v3"
)

const envPrefix = "WAVETRIM_"

type Config struct {
	LogLevel string `yaml:"log_level"`

	Freesound Freesound `yaml:"freesound"`
	Loader    Loader    `yaml:"loader"`
	Surface   Surface   `yaml:"surface"`
	Output    Output    `yaml:"output"`

	// PresetsURL is the base address of the preset service.
	PresetsURL string `yaml:"presets_url"`
}

type Freesound struct {
	BaseURL  string `yaml:"base_url"`
	Token    string `yaml:"token"`
	PageSize int    `yaml:"page_size"`
}

type Loader struct {
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
}

// Surface is the drawing area the trim bars and waveform share.
type Surface struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	FrameRate int `yaml:"frame_rate"`
}

type Output struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Freesound: Freesound{
			BaseURL:  freesound.DefaultBaseURL,
			PageSize: freesound.DefaultPageSize,
		},
		Loader: Loader{
			Timeout:     loader.DefaultTimeout,
			Concurrency: loader.DefaultConcurrency,
		},
		Surface: Surface{
			Width:     800,
			Height:    100,
			FrameRate: 60,
		},
		Output: Output{
			SampleRate: 48000,
			Channels:   2,
		},
		PresetsURL: "http://localhost:3000",
	}
}

// Load reads path over the defaults, applies the environment and
// validates. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer f.Close()

		if err := decode(f, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults and validates it.
// The environment is not consulted.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decode(r, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg from variables returned by lookup, normally
// os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
			return
		}
		*dst = n
	}

	str("LOG_LEVEL", &cfg.LogLevel)
	str("FREESOUND_URL", &cfg.Freesound.BaseURL)
	str("FREESOUND_TOKEN", &cfg.Freesound.Token)
	num("FREESOUND_PAGE_SIZE", &cfg.Freesound.PageSize)
	str("PRESETS_URL", &cfg.PresetsURL)
	num("CONCURRENCY", &cfg.Loader.Concurrency)
	num("WIDTH", &cfg.Surface.Width)
	num("HEIGHT", &cfg.Surface.Height)
	num("FRAME_RATE", &cfg.Surface.FrameRate)
	num("SAMPLE_RATE", &cfg.Output.SampleRate)
	num("CHANNELS", &cfg.Output.Channels)

	if v, ok := lookup(envPrefix + "FETCH_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sFETCH_TIMEOUT: %w", envPrefix, err))
		} else {
			cfg.Loader.Timeout = d
		}
	}

	return errors.Join(errs...)
}

// Validate returns every problem found, joined.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := observe.ResolveLogLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Freesound.BaseURL == "" {
		errs = append(errs, errors.New("freesound.base_url is required"))
	}
	if cfg.Freesound.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("freesound.page_size %d must be positive", cfg.Freesound.PageSize))
	}
	if cfg.Loader.Timeout < 0 {
		errs = append(errs, fmt.Errorf("loader.timeout %s must not be negative", cfg.Loader.Timeout))
	}
	if cfg.Loader.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("loader.concurrency %d must be positive", cfg.Loader.Concurrency))
	}
	if cfg.Surface.Width <= 0 || cfg.Surface.Height <= 0 {
		errs = append(errs, fmt.Errorf("surface %dx%d must be positive", cfg.Surface.Width, cfg.Surface.Height))
	}
	if cfg.Surface.FrameRate <= 0 || cfg.Surface.FrameRate > 240 {
		errs = append(errs, fmt.Errorf("surface.frame_rate %d is out of range [1, 240]", cfg.Surface.FrameRate))
	}
	if cfg.Output.SampleRate < 8000 || cfg.Output.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("output.sample_rate %d is out of range [8000, 192000]", cfg.Output.SampleRate))
	}
	if cfg.Output.Channels != 1 && cfg.Output.Channels != 2 {
		errs = append(errs, fmt.Errorf("output.channels %d must be 1 or 2", cfg.Output.Channels))
	}

	return errors.Join(errs...)
}
