// Package shell serves the single-page app shell for the editor and for apps.
package shell

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/approuter/internal/web/apperr"
	"github.com/leapstack-labs/approuter/internal/web/features/common"
	"github.com/leapstack-labs/approuter/internal/web/resources"
	"github.com/leapstack-labs/approuter/pkg/core"
)

// Handlers renders the shell template.
type Handlers struct {
	accessor    core.AppAccessor
	bundle      *resources.Bundle
	editorTitle string
	logger      *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(accessor core.AppAccessor, bundle *resources.Bundle, editorTitle string, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		accessor:    accessor,
		bundle:      bundle,
		editorTitle: editorTitle,
		logger:      logger,
	}
}

// ServeEditor renders the editor shell. It does not touch the accessor.
func (h *Handlers) ServeEditor(w http.ResponseWriter, r *http.Request) {
	lang := negotiateLanguage(r.Header.Get("Accept-Language"), core.Definition{})
	h.render(w, r, Page{
		Lang:        lang,
		Title:       h.editorTitle,
		ThemeColor:  defaultThemeColor,
		FaviconURL:  "/favicon.ico",
		Stylesheets: []string{resources.StaticPath("app.css")},
		Settings:    Settings{Mode: ModeEditor, Language: lang},
		Script:      resources.StaticPath("editor.js"),
	})
}

// ServeApp renders the shell of the app in the route. Unknown apps still get
// the shell, with an error in the settings for the client to display.
func (h *Handlers) ServeApp(w http.ResponseWriter, r *http.Request) {
	id, ok := common.AppID(r)
	if !ok {
		h.render(w, r, notFoundPage(r))
		return
	}

	app, err := h.accessor.FetchApp(r.Context(), core.Query{ID: id, Projection: core.ProjectShell})
	switch {
	case errors.Is(err, core.ErrAppNotFound):
		page := notFoundPage(r)
		page.Settings.AppID = id
		h.render(w, r, page)
		return
	case err != nil:
		apperr.Write(w, r, h.logger, err)
		return
	}

	h.render(w, r, appPage(r, id, app))
}

func appPage(r *http.Request, id int64, app *core.App) Page {
	def := app.Definition
	lang := negotiateLanguage(r.Header.Get("Accept-Language"), def)

	title := def.Name
	if title == "" {
		title = defaultTitle
	}
	themeColor := def.Theme.ThemeColor
	if themeColor == "" {
		themeColor = defaultThemeColor
	}

	settings := Settings{
		Mode:        ModeApp,
		AppID:       id,
		Language:    lang,
		DefaultPage: def.DefaultPageSlug(),
		Visibility:  string(app.Visibility),
		Locked:      app.Locked,
	}
	if !app.UpdatedAt.IsZero() {
		settings.UpdatedAt = app.UpdatedAt.UTC().Format(time.RFC3339)
	}

	return Page{
		Lang:         lang,
		Title:        title,
		Description:  def.Description,
		ThemeColor:   themeColor,
		FaviconURL:   fmt.Sprintf("/%d/favicon.ico", id),
		ManifestURL:  fmt.Sprintf("/%d/manifest.json", id),
		TouchIconURL: fmt.Sprintf("/%d/icon-%d.png", id, touchIconSize),
		Stylesheets: []string{
			resources.StaticPath("app.css"),
			fmt.Sprintf("/api/apps/%d/style/core", id),
			fmt.Sprintf("/api/apps/%d/style/shared", id),
		},
		Settings: settings,
		Script:   resources.StaticPath("app.js"),
	}
}

func notFoundPage(r *http.Request) Page {
	lang := negotiateLanguage(r.Header.Get("Accept-Language"), core.Definition{})
	return Page{
		Lang:        lang,
		Title:       defaultTitle,
		ThemeColor:  defaultThemeColor,
		FaviconURL:  "/favicon.ico",
		Stylesheets: []string{resources.StaticPath("app.css")},
		Settings:    Settings{Mode: ModeApp, Error: ErrorAppNotFound, Language: lang},
		Script:      resources.StaticPath("app.js"),
	}
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, page Page) {
	page.Nonce = uuid.NewString()

	var buf bytes.Buffer
	if err := h.bundle.Template().Execute(&buf, page); err != nil {
		apperr.Write(w, r, h.logger, fmt.Errorf("failed to render shell: %w", err))
		return
	}

	w.Header().Set("Content-Security-Policy", fmt.Sprintf(
		"script-src 'self' 'nonce-%s'; object-src 'none'; base-uri 'self'", page.Nonce))
	w.Header().Set("Cache-Control", "no-cache")
	common.WriteBody(w, "text/html; charset=utf-8", buf.Bytes())
}
