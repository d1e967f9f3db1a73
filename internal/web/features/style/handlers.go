// Package style serves the per-app stylesheets.
package style

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/approuter/internal/web/apperr"
	"github.com/leapstack-labs/approuter/internal/web/features/common"
	"github.com/leapstack-labs/approuter/pkg/core"
)

const contentType = "text/css; charset=utf-8"

// Handlers serves one stylesheet slot of an app.
type Handlers struct {
	accessor core.AppAccessor
	slot     core.Projection
	logger   *slog.Logger
}

// NewHandlers creates a Handlers for slot, which must be core.ProjectCoreStyle
// or core.ProjectSharedStyle.
func NewHandlers(accessor core.AppAccessor, slot core.Projection, logger *slog.Logger) (*Handlers, error) {
	if !slot.IsStyle() {
		return nil, fmt.Errorf("%s is not a stylesheet projection", slot)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{accessor: accessor, slot: slot, logger: logger}, nil
}

// ServeStyle writes the stored CSS text of the app.
func (h *Handlers) ServeStyle(w http.ResponseWriter, r *http.Request) {
	id, ok := common.AppID(r)
	if !ok {
		apperr.Write(w, r, h.logger, apperr.NewNotFound("App not found"))
		return
	}

	app, err := h.accessor.FetchApp(r.Context(), core.Query{ID: id, Projection: h.slot, Raw: true})
	if err != nil {
		apperr.Write(w, r, h.logger, apperr.Wrap(err, "App not found"))
		return
	}

	css := app.CoreStyle
	if h.slot == core.ProjectSharedStyle {
		css = app.SharedStyle
	}

	common.NoStore(w)
	common.WriteBody(w, contentType, []byte(css))
}
