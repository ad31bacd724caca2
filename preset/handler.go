// SPDX-License-Identifier: EPL-2.0

package preset

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler serves a fixed preset list as JSON.
type Handler struct {
	presets []Preset
	logger  *slog.Logger
}

func NewHandler(presets []Preset, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if presets == nil {
		presets = []Preset{}
	}
	return &Handler{presets: presets, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	// pages are usually opened from another origin
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if err := json.NewEncoder(w).Encode(h.presets); err != nil {
		h.logger.Warn("write presets", "err", err)
	}
}

// Mux routes Path to h. Other paths are served by files when it is not nil,
// so the samples can live next to the preset list.
func (h *Handler) Mux(files http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(Path, h)
	if files != nil {
		mux.Handle("/", files)
	}
	return mux
}
