package manifest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/approuter/internal/store/storetest"
	"github.com/leapstack-labs/approuter/internal/web/features"
	"github.com/leapstack-labs/approuter/pkg/core"
)

func serveManifest(h *Handlers, id string) *httptest.ResponseRecorder {
	req := features.WithURLParams(httptest.NewRequest(http.MethodGet, "/"+id+"/manifest.json", nil), "id", id)
	rec := httptest.NewRecorder()
	h.ServeManifest(rec, req)
	return rec
}

func TestServeManifest(t *testing.T) {
	fixture := features.SetupTestFixture(t,
		features.TestApp{
			Name:        "Field Inspections",
			Description: "Inspect things in the field",
			DefaultPage: "Home Page",
			ThemeColor:  "#123456",
			SplashColor: "#abcdef",
		},
		features.TestApp{
			Name:         "Maskable",
			MaskableIcon: storetest.SolidPNG(t, 8, 8, storetest.Blue),
		},
	)
	h := NewHandlers(fixture.Store, fixture.Logger)

	t.Run("definition values", func(t *testing.T) {
		rec := serveManifest(h, "1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))

		var got Manifest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Field Inspections", got.Name)
		assert.Equal(t, "Field Inspections", got.ShortName)
		assert.Equal(t, "Inspect things in the field", got.Description)
		assert.Equal(t, "/1/home-page", got.StartURL)
		assert.Equal(t, "/1/", got.Scope)
		assert.Equal(t, "standalone", got.Display)
		assert.Equal(t, "#123456", got.ThemeColor)
		assert.Equal(t, "#abcdef", got.BackgroundColor)
		require.Len(t, got.Icons, 9)
		assert.Equal(t, Icon{Src: "/1/icon-16.png", Sizes: "16x16", Type: "image/png", Purpose: "any"}, got.Icons[0])
		assert.Equal(t, Icon{Src: "/1/icon-512.png", Sizes: "512x512", Type: "image/png", Purpose: "any"}, got.Icons[8])
	})

	t.Run("maskable entries", func(t *testing.T) {
		rec := serveManifest(h, "2")

		require.Equal(t, http.StatusOK, rec.Code)
		var got Manifest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got.Icons, 18)
		assert.Equal(t, "/2/icon-192.png?maskable=true", got.Icons[15].Src)
		assert.Equal(t, "maskable", got.Icons[15].Purpose)
		assert.Equal(t, "/", got.StartURL)
		assert.Equal(t, "#ffffff", got.ThemeColor)
		assert.Equal(t, "#ffffff", got.BackgroundColor)
	})

	t.Run("unknown app", func(t *testing.T) {
		rec := serveManifest(h, "3")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "App not found")
	})

	t.Run("idempotent", func(t *testing.T) {
		first := serveManifest(h, "1").Body.Bytes()
		second := serveManifest(h, "1").Body.Bytes()
		assert.Equal(t, first, second)
	})
}

func TestServeManifest_RequiredKeysInOrder(t *testing.T) {
	fixture := features.SetupTestFixture(t, features.TestApp{Name: "Ordered"})
	rec := serveManifest(NewHandlers(fixture.Store, fixture.Logger), "1")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))

	last := -1
	for _, key := range []string{"name", "short_name", "start_url", "display", "theme_color", "background_color", "icons"} {
		require.Contains(t, raw, key)
		idx := strings.Index(body, `"`+key+`":`)
		assert.Greater(t, idx, last, "key %q out of order", key)
		last = idx
	}
	assert.NotContains(t, raw, "description")
}

func TestBuild_Defaults(t *testing.T) {
	got := Build(12, &core.App{ID: 12})

	assert.Equal(t, DefaultName, got.Name)
	assert.Equal(t, DefaultName, got.ShortName)
	assert.Equal(t, DefaultStartURL, got.StartURL)
	assert.Equal(t, DefaultDisplay, got.Display)
	assert.Equal(t, "any", got.Orientation)
	assert.Equal(t, DefaultColor, got.ThemeColor)
	assert.Equal(t, DefaultColor, got.BackgroundColor)
	assert.Len(t, got.Icons, 9)
}

func TestServeManifest_AccessorFailure(t *testing.T) {
	rec := serveManifest(NewHandlers(features.FailingAccessor(), nil), "1")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), features.ErrStorageDown.Error())
}
