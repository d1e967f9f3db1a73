// Package features provides shared test utilities for web feature tests.
package features

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/approuter/internal/store"
	"github.com/leapstack-labs/approuter/internal/store/storetest"
	"github.com/leapstack-labs/approuter/internal/testutil"
	"github.com/leapstack-labs/approuter/pkg/core"
)

// TestApp is a helper to create test apps with minimal boilerplate.
type TestApp struct {
	Name            string
	Description     string
	DefaultPage     string
	DefaultLanguage string
	Languages       []string
	ThemeColor      string
	SplashColor     string

	CoreStyle      string
	SharedStyle    string
	Icon           []byte
	MaskableIcon   []byte
	IconBackground string
	// Variants maps icon sizes to stored per-size images.
	Variants map[int][]byte
}

// TestFixture holds all dependencies needed for feature handler tests.
type TestFixture struct {
	Store  *store.Store
	Logger *slog.Logger
}

// SetupTestFixture creates an in-memory store and inserts apps in order, so
// the first app gets id 1.
func SetupTestFixture(t *testing.T, apps ...TestApp) *TestFixture {
	t.Helper()

	f := &TestFixture{
		Store:  storetest.New(t),
		Logger: testutil.NewTestLogger(t),
	}
	for _, app := range apps {
		f.CreateApp(t, app)
	}
	return f
}

// CreateApp inserts app and returns its id.
func (f *TestFixture) CreateApp(t *testing.T, app TestApp) int64 {
	t.Helper()

	name := app.Name
	if name == "" {
		name = "Test App"
	}
	id := storetest.CreateApp(t, f.Store, store.NewApp{
		Definition: core.Definition{
			Name:            name,
			Description:     app.Description,
			DefaultPage:     app.DefaultPage,
			DefaultLanguage: app.DefaultLanguage,
			Languages:       app.Languages,
			Theme: core.Theme{
				ThemeColor:  app.ThemeColor,
				SplashColor: app.SplashColor,
			},
		},
		CoreStyle:      app.CoreStyle,
		SharedStyle:    app.SharedStyle,
		Icon:           app.Icon,
		MaskableIcon:   app.MaskableIcon,
		IconBackground: app.IconBackground,
	})

	for size, data := range app.Variants {
		require.NoError(t, f.Store.SetIconVariant(context.Background(), id, size, data))
	}
	return id
}

// ErrStorageDown is returned by FailingAccessor.
var ErrStorageDown = errors.New("storage unavailable")

// FailingAccessor returns an accessor whose every lookup fails with ErrStorageDown.
func FailingAccessor() core.AppAccessor {
	return core.AppAccessorFunc(func(context.Context, core.Query) (*core.App, error) {
		return nil, ErrStorageDown
	})
}

// WithURLParams attaches chi URL parameters to r, as the router would.
// Pairs are given as key, value, key, value...
func WithURLParams(r *http.Request, pairs ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		rctx.URLParams.Add(pairs[i], pairs[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
