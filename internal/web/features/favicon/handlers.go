// Package favicon serves the platform and per-app favicons.
package favicon

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	iconimg "github.com/leapstack-labs/approuter/internal/icon"
	"github.com/leapstack-labs/approuter/internal/web/features/common"
	"github.com/leapstack-labs/approuter/internal/web/metrics"
	"github.com/leapstack-labs/approuter/pkg/core"
)

// Handlers serves /favicon.ico and /{id}/favicon.ico. It never responds 404.
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

// ServeFavicon writes the favicon of the app in the route, or the platform
// default when there is no app id or the app cannot be loaded.
func (h *Handlers) ServeFavicon(w http.ResponseWriter, r *http.Request) {
	id, ok := common.AppID(r)
	if !ok {
		h.writeDefault(w)
		return
	}

	app, err := h.accessor.FetchApp(r.Context(), core.Query{ID: id, Projection: core.ProjectIcon, Size: iconimg.FaviconSize})
	if err != nil {
		if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
			return
		}
		if !errors.Is(err, core.ErrAppNotFound) {
			h.logger.Error("serving default favicon after lookup failure",
				slog.Int64("app_id", id),
				slog.Any("error", err))
		}
		h.writeDefault(w)
		return
	}

	data, src, err := h.renderer.Render(app, iconimg.Options{Size: iconimg.FaviconSize})
	if err != nil {
		h.logger.Error("serving default favicon after render failure",
			slog.Int64("app_id", id),
			slog.Any("error", err))
		h.writeDefault(w)
		return
	}
	h.metrics.IconRendered(src.String())

	common.NoStore(w)
	common.WriteBody(w, "image/png", data)
}

func (h *Handlers) writeDefault(w http.ResponseWriter) {
	h.metrics.IconRendered(iconimg.SourceDefault.String())
	w.Header().Set("Cache-Control", "public, max-age=86400")
	common.WriteBody(w, "image/x-icon", iconimg.DefaultFavicon())
}
