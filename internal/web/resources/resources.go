// Package resources provides the pre-built shell bundle: static assets served
// under /static/ and the HTML template the shell handler renders.
package resources

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// TemplateName is the shell template file inside the bundle.
const TemplateName = "index.html"

//go:embed static/*
var staticFS embed.FS

// Bundle serves the shell bundle from the embedded build or from a directory.
type Bundle struct {
	fsys   fs.FS
	dir    string
	logger *slog.Logger
	tmpl   atomic.Pointer[template.Template]
}

// NewBundle loads the bundle from dir, or from the embedded build when dir is
// empty. A nil logger discards output.
func NewBundle(dir string, logger *slog.Logger) (*Bundle, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b := &Bundle{dir: dir, logger: logger}
	if dir == "" {
		sub, err := fs.Sub(staticFS, "static")
		if err != nil {
			return nil, err
		}
		b.fsys = sub
	} else {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("shell bundle directory: %w", err)
		}
		b.fsys = os.DirFS(dir)
		logger.Info("shell bundle served from filesystem", "path", dir)
	}

	if err := b.reload(); err != nil {
		return nil, err
	}
	return b, nil
}

// Template returns the current shell template.
func (b *Bundle) Template() *template.Template {
	return b.tmpl.Load()
}

// Embedded reports whether the bundle is the one compiled into the binary.
func (b *Bundle) Embedded() bool {
	return b.dir == ""
}

func (b *Bundle) reload() error {
	tmpl, err := template.ParseFS(b.fsys, TemplateName)
	if err != nil {
		return fmt.Errorf("failed to parse shell template: %w", err)
	}
	b.tmpl.Store(tmpl)
	return nil
}

// Handler serves bundle assets. It expects to be mounted at /static/*.
func (b *Bundle) Handler() http.Handler {
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(b.fsys)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path.Base(r.URL.Path) == TemplateName {
			http.NotFound(w, r)
			return
		}
		if b.Embedded() {
			// Embedded assets never change for the lifetime of the binary.
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		fileServer.ServeHTTP(w, r)
	})
}

// StaticPath returns the URL path for a bundle asset.
func StaticPath(name string) string {
	return "/static/" + name
}

// Watch reloads the shell template whenever it changes on disk. It returns
// when ctx is cancelled. Embedded bundles have nothing to watch.
func (b *Bundle) Watch(ctx context.Context) error {
	if b.Embedded() {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(b.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", b.dir, err)
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Base(event.Name) != TemplateName {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				if err := b.reload(); err != nil {
					b.logger.Error("keeping previous shell template", "error", err)
					return
				}
				b.logger.Info("shell template reloaded", "file", event.Name)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.logger.Error("watcher error", "error", err)
		}
	}
}
