// Package manifest serves the web app manifest of an app.
package manifest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	iconimg "github.com/leapstack-labs/approuter/internal/icon"
	"github.com/leapstack-labs/approuter/internal/web/apperr"
	"github.com/leapstack-labs/approuter/internal/web/features/common"
	"github.com/leapstack-labs/approuter/pkg/core"
)

// ContentType is the media type of the manifest response.
const ContentType = "application/manifest+json"

// Handlers serves /{id}/manifest.json.
type Handlers struct {
	accessor core.AppAccessor
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(accessor core.AppAccessor, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{accessor: accessor, logger: logger}
}

// ServeManifest writes the manifest of the app, or 404 when it does not exist.
func (h *Handlers) ServeManifest(w http.ResponseWriter, r *http.Request) {
	id, ok := common.AppID(r)
	if !ok {
		apperr.Write(w, r, h.logger, apperr.NewNotFound("App not found"))
		return
	}

	app, err := h.accessor.FetchApp(r.Context(), core.Query{ID: id, Projection: core.ProjectManifest})
	if err != nil {
		apperr.Write(w, r, h.logger, apperr.Wrap(err, "App not found"))
		return
	}

	body, err := json.Marshal(Build(id, app))
	if err != nil {
		apperr.Write(w, r, h.logger, fmt.Errorf("failed to encode manifest: %w", err))
		return
	}
	common.WriteBody(w, ContentType, body)
}

// Build assembles the manifest of app id from its manifest projection.
func Build(id int64, app *core.App) Manifest {
	def := app.Definition

	name := def.Name
	if name == "" {
		name = DefaultName
	}
	startURL := DefaultStartURL
	if slug := def.DefaultPageSlug(); slug != "" {
		startURL = fmt.Sprintf("/%d/%s", id, slug)
	}
	themeColor := orDefault(def.Theme.ThemeColor, DefaultColor)

	m := Manifest{
		Name:            name,
		ShortName:       name,
		Description:     def.Description,
		StartURL:        startURL,
		Scope:           fmt.Sprintf("/%d/", id),
		Display:         DefaultDisplay,
		Orientation:     "any",
		ThemeColor:      themeColor,
		BackgroundColor: orDefault(def.Theme.SplashColor, DefaultColor),
		Icons:           make([]Icon, 0, 2*len(iconimg.Sizes)),
	}

	for _, size := range iconimg.Sizes {
		m.Icons = append(m.Icons, icon(id, size, "", "any"))
	}
	if app.HasMaskableIcon {
		for _, size := range iconimg.Sizes {
			m.Icons = append(m.Icons, icon(id, size, "?maskable=true", "maskable"))
		}
	}
	return m
}

func icon(id int64, size int, query, purpose string) Icon {
	return Icon{
		Src:     fmt.Sprintf("/%d/icon-%d.png%s", id, size, query),
		Sizes:   fmt.Sprintf("%dx%d", size, size),
		Type:    "image/png",
		Purpose: purpose,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
