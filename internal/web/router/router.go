// Package router binds URL patterns to the content resolvers.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/approuter/internal/web/apperr"
)

// Bindings holds the resolver for each route. A nil binding leaves its route
// unregistered.
type Bindings struct {
	Editor      http.HandlerFunc
	Favicon     http.HandlerFunc
	Manifest    http.HandlerFunc
	Icon        http.HandlerFunc
	Shell       http.HandlerFunc
	CoreStyle   http.HandlerFunc
	SharedStyle http.HandlerFunc
	Health      http.HandlerFunc
	Static      http.Handler
	Metrics     http.Handler
}

type options struct {
	logger      *slog.Logger
	middlewares []func(http.Handler) http.Handler
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger used for unmatched routes.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMiddleware appends middlewares applied to every route.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(o *options) { o.middlewares = append(o.middlewares, mw...) }
}

// appID matches numeric app ids only, so /{id}/... never captures /editor,
// /static or other named roots.
const appID = "/{id:[0-9]+}"

// New builds a mux for b. Every call returns an independent router.
//
// Reserved leaf names (favicon.ico, manifest.json, icon-<size>.png) take
// precedence over the app shell catch-all because chi matches static and
// parameter segments before wildcards.
func New(b Bindings, opts ...Option) chi.Router {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	r.Use(o.middlewares...)
	r.NotFound(apperr.NotFoundHandler(o.logger))
	r.MethodNotAllowed(apperr.MethodNotAllowedHandler())

	get(r, "/editor", b.Editor)
	get(r, "/editor/*", b.Editor)

	get(r, "/favicon.ico", b.Favicon)
	get(r, appID+"/favicon.ico", b.Favicon)
	get(r, appID+"/manifest.json", b.Manifest)
	// One regexp segment: a plain {size} param would stop at the first '.'.
	get(r, appID+"/{leaf:icon-.*\\.png}", b.Icon)

	get(r, "/api/apps"+appID+"/style/core", b.CoreStyle)
	get(r, "/api/apps"+appID+"/style/shared", b.SharedStyle)

	get(r, "/healthz", b.Health)
	if b.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", b.Metrics)
	}
	if b.Static != nil {
		r.Method(http.MethodGet, "/static/*", b.Static)
	}

	get(r, appID, b.Shell)
	get(r, appID+"/*", b.Shell)

	return r
}

func get(r chi.Router, pattern string, h http.HandlerFunc) {
	if h != nil {
		r.Get(pattern, h)
	}
}
