// SPDX-License-Identifier: EPL-2.0

package wavetrim

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"github.com/ik5/wavetrim/audio"
	"github.com/ik5/wavetrim/loader"
	"github.com/ik5/wavetrim/playback"
	"github.com/ik5/wavetrim/preset"
	"github.com/ik5/wavetrim/sound"
	"github.com/ik5/wavetrim/trim"
	"github.com/ik5/wavetrim/waveform"
	"golang.org/x/image/draw"
)

var (
	ErrNothingSelected = errors.New("no sound selected")
	ErrNoEngine        = errors.New("no playback engine")
	ErrNoLoader        = errors.New("no loader")
)

// WaveColor is the default waveform colour.
var WaveColor = color.RGBA{R: 0x83, G: 0xe8, B: 0x3e, A: 0xff}

type SessionOption func(*Session)

func WithLoader(l *loader.Loader) SessionOption {
	return func(s *Session) { s.loader = l }
}

func WithEngine(e *playback.Engine) SessionOption {
	return func(s *Session) { s.engine = e }
}

func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithWaveColor(c color.Color) SessionOption {
	return func(s *Session) { s.waveColor = c }
}

func WithBarStyle(style trim.Style) SessionOption {
	return func(s *Session) { s.barStyle = style }
}

// Session is the state of one editing surface: the loaded sounds, the one
// being edited, its trim bars and waveform. All methods are safe to call
// from the pointer handlers, the redraw loop and loader callbacks at once.
type Session struct {
	width  int
	height int

	loader    *loader.Loader
	engine    *playback.Engine
	logger    *slog.Logger
	waveColor color.Color
	barStyle  trim.Style

	mtx    sync.Mutex
	sounds *sound.Collection
	bars   *trim.Bars
	wave   *waveform.Renderer
	job    *loader.Job
	gen    uint64
}

// NewSession creates a session for a surface of width x height pixels.
func NewSession(width, height int, opts ...SessionOption) *Session {
	s := &Session{
		width:     max(width, 1),
		height:    max(height, 1),
		logger:    slog.Default(),
		waveColor: WaveColor,
		barStyle:  trim.DefaultStyle,
		sounds:    sound.NewCollection(),
		wave:      waveform.New(),
	}
	s.bars = trim.NewBars(float64(s.width))

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Width() int  { return s.width }
func (s *Session) Height() int { return s.height }

// Load replaces the current sounds with the given sources. A previous load
// still running is cancelled and its results are not used. The first sound
// is selected when the job completes; onComplete, when not nil, runs after
// that. onComplete runs exactly once per job, superseded jobs included, so
// callers can always reset their progress display in it.
func (s *Session) Load(ctx context.Context, sources, names []string, onComplete loader.CompleteFunc) (*loader.Job, error) {
	if s.loader == nil {
		return nil, ErrNoLoader
	}

	names = append([]string(nil), names...)

	s.mtx.Lock()
	if s.job != nil {
		s.job.Cancel()
	}
	s.gen++
	gen := s.gen
	s.mtx.Unlock()

	job := s.loader.Start(ctx, sources, func(rs loader.Results) {
		s.mtx.Lock()
		if s.gen == gen {
			s.useLocked(rs.Buffers(), names)
		} else {
			s.logger.Debug("load superseded, results not used", "sources", len(rs))
		}
		s.mtx.Unlock()

		if onComplete != nil {
			onComplete(rs)
		}
	})

	s.mtx.Lock()
	if s.gen == gen && job.State() != loader.Complete {
		s.job = job
	}
	s.mtx.Unlock()

	return job, nil
}

// LoadPreset loads every sample of p.
func (s *Session) LoadPreset(ctx context.Context, p preset.Preset, onComplete loader.CompleteFunc) (*loader.Job, error) {
	s.logger.Info("loading preset", "preset", p.Name, "samples", len(p.Samples))
	return s.Load(ctx, p.URLs(), p.Names(), onComplete)
}

// Use replaces the sounds with already decoded buffers and selects the
// first one, if it loaded. Results of a load still running are dropped.
func (s *Session) Use(bufs []*audio.Buffer, names []string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.job != nil {
		s.job.Cancel()
	}
	s.gen++
	s.useLocked(bufs, names)
}

func (s *Session) useLocked(bufs []*audio.Buffer, names []string) {
	s.job = nil
	s.sounds.Replace(bufs, names, float64(s.width))
	s.bars = trim.NewBars(float64(s.width))
	s.wave = waveform.New()

	if err := s.selectLocked(0); err != nil {
		s.logger.Debug("nothing selected after load", "err", err)
	}
}

// Len is the number of sound slots, skipped ones included.
func (s *Session) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.sounds.Len()
}

// Sound returns the sound at i, nil for an empty slot.
func (s *Session) Sound(i int) *sound.Sound {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.sounds.At(i)
}

// Current returns the selected sound and its index, or nil and -1.
func (s *Session) Current() (*sound.Sound, int) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.sounds.Current()
}

// Select makes sound i current and restores its trim bars.
func (s *Session) Select(i int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.selectLocked(i)
}

func (s *Session) selectLocked(i int) error {
	snd, err := s.sounds.Select(i)
	if err != nil {
		return err
	}

	s.bars.StopDrag()
	s.bars.Set(snd.LeftX, snd.RightX)

	wave := waveform.New()
	if err := wave.Init(snd.Buffer, s.width); err != nil {
		return fmt.Errorf("waveform of %q: %w", snd.Name, err)
	}
	s.wave = wave

	return nil
}

func (s *Session) PointerMove(x float64) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.bars.Move(x)
}

func (s *Session) PointerDown() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.bars.StartDrag()
}

// PointerUp releases the bars and stores their positions on the current
// sound.
func (s *Session) PointerUp() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.bars.StopDrag()

	if snd, _ := s.sounds.Current(); snd != nil {
		snd.SetTrim(s.bars.Region())
	}
}

// Hovered reports which bar is under the pointer or being dragged.
func (s *Session) Hovered() trim.Role {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if r := s.bars.Dragged(); r != trim.None {
		return r
	}
	return s.bars.Hovered()
}

// Region returns the trim region of the current sound in seconds, as shown
// by the bars.
func (s *Session) Region() (start, end float64, err error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.regionLocked()
}

func (s *Session) regionLocked() (start, end float64, err error) {
	snd, _ := s.sounds.Current()
	if snd == nil {
		return 0, 0, ErrNothingSelected
	}

	d := snd.Buffer.Duration()
	left, right := s.bars.Region()
	w := float64(s.width)
	return trim.PixelToSeconds(left, d, w), trim.PixelToSeconds(right, d, w), nil
}

// CanPlay reports whether Play has something to play.
func (s *Session) CanPlay() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	snd, _ := s.sounds.Current()
	return snd != nil && s.engine != nil
}

// Play plays the trimmed region of the current sound. An inverted region
// plays nothing.
func (s *Session) Play() (*playback.Voice, error) {
	if s.engine == nil {
		return nil, ErrNoEngine
	}

	s.mtx.Lock()
	snd, _ := s.sounds.Current()
	start, end, err := s.regionLocked()
	s.mtx.Unlock()
	if err != nil {
		return nil, err
	}

	return s.engine.Play(snd.Buffer, start, end)
}

// PlaySound plays sound i from start to end, whatever is selected.
func (s *Session) PlaySound(i int) (*playback.Voice, error) {
	if s.engine == nil {
		return nil, ErrNoEngine
	}

	snd := s.Sound(i)
	if snd == nil {
		return nil, fmt.Errorf("%w: %d", sound.ErrSkipped, i)
	}
	return s.engine.Play(snd.Buffer, 0, snd.Buffer.Duration())
}

// Render draws one frame: the waveform of the current sound with the trim
// bars on top. dst should be Width x Height.
func (s *Session) Render(dst draw.Image) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	waveform.Clear(dst)
	s.wave.DrawWave(dst, 0, dst.Bounds().Dy(), s.waveColor)
	s.bars.Draw(dst, s.barStyle)
}
