// Package icon serves sized app icons through the icon fallback chain.
package icon

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	iconimg "github.com/leapstack-labs/approuter/internal/icon"
	"github.com/leapstack-labs/approuter/internal/web/apperr"
	"github.com/leapstack-labs/approuter/internal/web/features/common"
	"github.com/leapstack-labs/approuter/internal/web/metrics"
	"github.com/leapstack-labs/approuter/pkg/core"
)

// LeafParam is the URL parameter holding the icon file name, icon-<size>.png.
const LeafParam = "leaf"

// Handlers serves /{id}/icon-<size>.png.
type Handlers struct {
	accessor core.AppAccessor
	renderer *iconimg.Renderer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance. m may be nil.
func NewHandlers(accessor core.AppAccessor, renderer *iconimg.Renderer, m *metrics.Metrics, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if renderer == nil {
		renderer = iconimg.NewRenderer(logger)
	}
	return &Handlers{accessor: accessor, renderer: renderer, metrics: m, logger: logger}
}

// ServeIcon renders the icon of the app at the requested size. Unknown apps
// get the platform default icon.
func (h *Handlers) ServeIcon(w http.ResponseWriter, r *http.Request) {
	size, err := iconimg.ParseSize(sizeFromLeaf(chi.URLParam(r, LeafParam)))
	if err != nil {
		apperr.Write(w, r, h.logger, apperr.NewBadRequest("Invalid icon size", err))
		return
	}

	opts := iconimg.Options{
		Size:     size,
		Maskable: r.URL.Query().Get("maskable") == "true",
	}
	if raw := r.URL.Query().Get("background"); raw != "" {
		bg, err := iconimg.ParseColor(raw)
		if err != nil {
			apperr.Write(w, r, h.logger, apperr.NewBadRequest("Invalid background color", err))
			return
		}
		opts.Background = &bg
	}

	var app *core.App
	if id, ok := common.AppID(r); ok {
		app, err = h.accessor.FetchApp(r.Context(), core.Query{ID: id, Projection: core.ProjectIcon, Size: size})
		switch {
		case errors.Is(err, core.ErrAppNotFound):
			app = nil
		case err != nil:
			apperr.Write(w, r, h.logger, err)
			return
		}
	}

	data, src, err := h.renderer.Render(app, opts)
	if err != nil {
		apperr.Write(w, r, h.logger, err)
		return
	}
	h.metrics.IconRendered(src.String())

	common.NoStore(w)
	common.WriteBody(w, "image/png", data)
}

// sizeFromLeaf extracts the size segment of icon-<size>.png.
func sizeFromLeaf(leaf string) string {
	return strings.TrimSuffix(strings.TrimPrefix(leaf, "icon-"), ".png")
}
