// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ik5/wavetrim/formats/wav"
	"github.com/ik5/wavetrim/freesound"
	"github.com/ik5/wavetrim/loader"
	"github.com/ik5/wavetrim/playback"
	"github.com/ik5/wavetrim/preset"
	"github.com/ik5/wavetrim/waveform"
)

func (a *app) newLoader(opts ...loader.Option) *loader.Loader {
	return loader.New(append([]loader.Option{
		loader.WithLogger(a.logger),
		loader.WithTimeout(a.cfg.Loader.Timeout),
		loader.WithConcurrency(a.cfg.Loader.Concurrency),
	}, opts...)...)
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	page := fs.Int("page", 1, "result page, starting at 1")
	maxDur := fs.Int("max-duration", 0, "longest clip in seconds, 0 for no limit")
	previews := fs.Bool("previews", true, "resolve mp3 preview URLs")
	token := fs.String("token", a.cfg.Freesound.Token, "Freesound API key")

	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return errUsage
	}

	client := freesound.NewClient(a.cfg.Freesound.BaseURL, *token,
		freesound.WithPageSize(a.cfg.Freesound.PageSize),
		freesound.WithLogger(a.logger),
	)

	q := freesound.Query{
		Text:        strings.Join(fs.Args(), " "),
		Page:        *page,
		MaxDuration: freesound.DurationFilter(*maxDur),
	}

	results, err := client.Search(ctx, q)
	if err != nil {
		return err
	}

	urls := make([]string, len(results))
	if *previews && len(results) > 0 {
		if urls, err = client.Previews(ctx, results); err != nil {
			return err
		}
	}

	for i, r := range results {
		fmt.Fprintf(a.stdout, "%d\t%s\t%s\n", r.ID, r.Name, urls[i])
	}
	if q.HasPrev() {
		fmt.Fprintf(a.stderr, "page %d (previous: -page %d, next: -page %d)\n", q.Page, q.Prev().Page, q.Next().Page)
	} else {
		fmt.Fprintf(a.stderr, "page %d (next: -page %d)\n", q.Page, q.Next().Page)
	}
	return nil
}

func (a *app) render(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	out := fs.String("out", ".", "output directory")
	width := fs.Int("width", a.cfg.Surface.Width, "image width in pixels")
	height := fs.Int("height", a.cfg.Surface.Height, "image height in pixels")

	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return errUsage
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	sources := fs.Args()

	var mtx sync.Mutex
	progress := func(index int, loaded, total int64) {
		mtx.Lock()
		defer mtx.Unlock()
		fmt.Fprintf(a.stderr, "\r[%d] %s %d/%d bytes", index, shortName(sources[index]), loaded, total)
		if loaded == total {
			fmt.Fprintln(a.stderr)
		}
	}

	job := a.newLoader(loader.WithProgress(progress)).Start(ctx, sources, nil)
	results, err := job.Wait(ctx)
	if err != nil {
		job.Cancel()
		return err
	}

	var errs []error
	for i, r := range results {
		if r.Skipped() {
			a.logger.Info("skipping empty source", "index", i)
			continue
		}
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}

		base := shortName(r.Source)
		name := filepath.Join(*out, fmt.Sprintf("%02d_%s.png", i, strings.TrimSuffix(base, path.Ext(base))))
		if err := writeWaveform(name, r, *width, *height); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(a.stdout, "%s\t%.3fs\t%s\n", r.Source, r.Buffer.Duration(), name)
	}

	return errors.Join(errs...)
}

func writeWaveform(name string, r loader.Result, width, height int) error {
	wave := waveform.New()
	if err := wave.Init(r.Buffer, width); err != nil {
		return fmt.Errorf("%s: %w", r.Source, err)
	}

	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	bg := color.RGBA{A: 0xff}
	fg := color.RGBA{R: 0x83, G: 0xe8, B: 0x3e, A: 0xff}
	if err := wave.WritePNG(f, height, bg, fg); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return f.Close()
}

func regionFlags(fs *flag.FlagSet) (start, end *float64) {
	start = fs.Float64("start", 0, "region start in seconds")
	end = fs.Float64("end", -1, "region end in seconds, negative for the end of the clip")
	return start, end
}

func (a *app) play(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	start, end := regionFlags(fs)

	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	buf, err := a.newLoader().LoadAndDecode(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if *end < 0 {
		*end = buf.Duration()
	}

	sink, err := playback.NewOtoSink(a.cfg.Output.SampleRate, a.cfg.Output.Channels)
	if err != nil {
		return err
	}
	engine := playback.NewEngine(sink, playback.WithLogger(a.logger))
	defer engine.Close()

	voice, err := engine.Play(buf, *start, *end)
	if err != nil {
		return err
	}
	a.logger.Info("playing", "source", fs.Arg(0), "start", *start, "end", *end, "duration", voice.Duration())

	// the device buffers a little past the last sample
	ctx, cancel := context.WithTimeout(ctx, time.Duration(voice.Duration()*float64(time.Second))+2*time.Second)
	defer cancel()

	return voice.Wait(ctx)
}

func (a *app) trim(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trim", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	start, end := regionFlags(fs)
	out := fs.String("out", "clip.wav", "output WAV file")

	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	buf, err := a.newLoader().LoadAndDecode(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if *end < 0 {
		*end = buf.Duration()
	}

	clip := buf.Slice(*start, *end)

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	defer f.Close()

	if err := wav.WriteClip(f, clip); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s\t%.3fs\n", *out, clip.Duration())
	return f.Close()
}

func (a *app) presets(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "list":
		return a.presetsList(ctx, args[1:])
	case "serve":
		return a.presetsServe(ctx, args[1:])
	default:
		return errUsage
	}
}

func (a *app) presetsList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("presets list", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	base := fs.String("url", a.cfg.PresetsURL, "preset service address")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	list, err := preset.NewClient(*base, nil).List(ctx)
	if err != nil {
		return err
	}
	for i, p := range list {
		fmt.Fprintf(a.stdout, "%d\t%s\n", i, p.Name)
		for _, s := range p.Samples {
			fmt.Fprintf(a.stdout, "\t%s\t%s\n", s.Name, s.URL)
		}
	}
	return nil
}

func (a *app) presetsServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("presets serve", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	file := fs.String("file", "presets.yaml", "YAML preset file")
	addr := fs.String("addr", ":3000", "listen address")
	dir := fs.String("samples", "", "directory served next to the presets, for relative sample URLs")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	list, err := preset.LoadFile(*file)
	if err != nil {
		return err
	}

	var files http.Handler
	if *dir != "" {
		files = http.FileServer(http.Dir(*dir))
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           preset.NewHandler(list, a.logger).Mux(files),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info("serving presets", "addr", *addr, "presets", len(list))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func shortName(src string) string {
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	return path.Base(src)
}
