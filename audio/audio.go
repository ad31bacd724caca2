// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"path"
	"strings"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Matcher is implemented by decoders that can recognise their format from
// the first bytes of a payload.
type Matcher interface {
	Match(head []byte) bool
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
type Registry struct {
	codecs map[string]Decoder
	order  []string

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	format = strings.ToLower(format)
	if _, ok := r.codecs[format]; !ok {
		r.order = append(r.order, format)
	}
	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// Formats lists the registered format keys in registration order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Detect picks a decoder for a payload. Magic bytes win over the hint; the
// hint (a file name, URL or MIME type) is only consulted when no registered
// Matcher recognises head.
func (r *Registry) Detect(head []byte, hint string) (string, Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, format := range r.order {
		if m, ok := r.codecs[format].(Matcher); ok && m.Match(head) {
			return format, r.codecs[format], true
		}
	}

	if format := FormatFromHint(hint); format != "" {
		if d, ok := r.codecs[format]; ok {
			return format, d, true
		}
	}

	return "", nil, false
}

var mimeFormats = map[string]string{
	"audio/mpeg":   "mp3",
	"audio/mp3":    "mp3",
	"audio/wav":    "wav",
	"audio/wave":   "wav",
	"audio/x-wav":  "wav",
	"audio/ogg":    "ogg",
	"audio/vorbis": "ogg",
	"audio/aiff":   "aiff",
	"audio/x-aiff": "aiff",
}

// FormatFromHint maps a MIME type, URL or file name to a format key.
// It returns "" when nothing can be inferred.
func FormatFromHint(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return ""
	}

	mime, _, _ := strings.Cut(hint, ";")
	if f, ok := mimeFormats[strings.TrimSpace(mime)]; ok {
		return f
	}

	// strip query and fragment of URLs
	if i := strings.IndexAny(hint, "?#"); i >= 0 {
		hint = hint[:i]
	}

	switch ext := strings.TrimPrefix(path.Ext(hint), "."); ext {
	case "wav", "wave":
		return "wav"
	case "mp3":
		return "mp3"
	case "ogg", "oga":
		return "ogg"
	case "aif", "aiff", "aifc":
		return "aiff"
	default:
		return ""
	}
}
