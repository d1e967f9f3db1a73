// Package web runs the app router HTTP server.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	iconimg "github.com/leapstack-labs/approuter/internal/icon"
	"github.com/leapstack-labs/approuter/internal/web/features/favicon"
	"github.com/leapstack-labs/approuter/internal/web/features/health"
	"github.com/leapstack-labs/approuter/internal/web/features/icon"
	"github.com/leapstack-labs/approuter/internal/web/features/manifest"
	"github.com/leapstack-labs/approuter/internal/web/features/shell"
	"github.com/leapstack-labs/approuter/internal/web/features/style"
	"github.com/leapstack-labs/approuter/internal/web/metrics"
	"github.com/leapstack-labs/approuter/internal/web/resources"
	"github.com/leapstack-labs/approuter/internal/web/router"
	"github.com/leapstack-labs/approuter/pkg/core"
)

// Config holds configuration for the server.
type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration

	Accessor core.AppAccessor
	DB       health.Pinger
	Bundle   *resources.Bundle
	// WatchShell reloads the shell template when it changes on disk.
	WatchShell  bool
	EditorTitle string
	// Metrics enables /metrics and request instrumentation when non-nil.
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Server is the app router HTTP server.
type Server struct {
	cfg     Config
	handler http.Handler
	logger  *slog.Logger
}

// NewServer wires every resolver into a router.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Accessor == nil {
		return nil, errors.New("server requires an app accessor")
	}
	if cfg.Bundle == nil {
		return nil, errors.New("server requires a shell bundle")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	handler, err := newHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return &Server{cfg: cfg, handler: handler, logger: cfg.Logger}, nil
}

func newHandler(cfg Config) (http.Handler, error) {
	logger := cfg.Logger
	renderer := iconimg.NewRenderer(logger)

	coreStyle, err := style.NewHandlers(cfg.Accessor, core.ProjectCoreStyle, logger)
	if err != nil {
		return nil, err
	}
	sharedStyle, err := style.NewHandlers(cfg.Accessor, core.ProjectSharedStyle, logger)
	if err != nil {
		return nil, err
	}
	shells := shell.NewHandlers(cfg.Accessor, cfg.Bundle, cfg.EditorTitle, logger)

	b := router.Bindings{
		Editor:      shells.ServeEditor,
		Favicon:     favicon.NewHandlers(cfg.Accessor, renderer, cfg.Metrics, logger).ServeFavicon,
		Manifest:    manifest.NewHandlers(cfg.Accessor, logger).ServeManifest,
		Icon:        icon.NewHandlers(cfg.Accessor, renderer, cfg.Metrics, logger).ServeIcon,
		Shell:       shells.ServeApp,
		CoreStyle:   coreStyle.ServeStyle,
		SharedStyle: sharedStyle.ServeStyle,
		Static:      cfg.Bundle.Handler(),
	}
	if cfg.DB != nil {
		b.Health = health.NewHandlers(cfg.DB, logger).ServeHealth
	}

	mw := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		RequestLogger(logger),
		middleware.Recoverer,
	}
	if cfg.Metrics != nil {
		b.Metrics = cfg.Metrics.Handler()
		mw = append(mw, cfg.Metrics.Middleware)
	}
	mw = append(mw, middleware.Compress(5, compressibleTypes...))

	return router.New(b, router.WithLogger(logger), router.WithMiddleware(mw...)), nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve listens on the configured address and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting app router", "addr", ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	if s.cfg.WatchShell {
		eg.Go(func() error {
			return s.cfg.Bundle.Watch(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down app router...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
