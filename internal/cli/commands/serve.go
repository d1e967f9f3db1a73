package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/approuter/internal/cli/config"
	"github.com/leapstack-labs/approuter/internal/web"
	"github.com/leapstack-labs/approuter/internal/web/metrics"
	"github.com/leapstack-labs/approuter/internal/web/resources"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	SkipMigrate bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the app router",
		Long: `Start the HTTP server that resolves app manifests, icons, favicons,
stylesheets and the app shell from the app store.`,
		Example: `  # Serve on the default address
  approuter serve

  # Serve on a custom address against PostgreSQL
  approuter serve --addr :3000 --database-driver pgx --database-dsn postgres://localhost/apps

  # Serve a shell bundle from disk and reload its template on change
  approuter serve --shell-dir ./dist --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().String("addr", "", "Address to listen on (default: :8080)")
	cmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
	cmd.Flags().String("shell-dir", "", "Serve the shell bundle from this directory instead of the embedded build")
	cmd.Flags().Bool("watch", false, "Reload the shell template when it changes (requires --shell-dir)")
	cmd.Flags().String("editor-title", "", "Document title of the editor shell")
	cmd.Flags().BoolVar(&opts.SkipMigrate, "skip-migrate", false, "Do not apply pending store migrations on startup")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if !opts.SkipMigrate {
		if err := s.Migrate(ctx); err != nil {
			return err
		}
	}

	bundle, err := resources.NewBundle(cfg.Shell.Dir, logger)
	if err != nil {
		return fmt.Errorf("failed to load shell bundle: %w", err)
	}
	if cfg.Shell.Watch && bundle.Embedded() {
		logger.Warn("shell.watch has no effect on the embedded bundle")
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	server, err := web.NewServer(web.Config{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		Accessor:          s,
		DB:                s,
		Bundle:            bundle,
		WatchShell:        cfg.Shell.Watch,
		EditorTitle:       cfg.Shell.EditorTitle,
		Metrics:           m,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	return server.Serve(ctx)
}
