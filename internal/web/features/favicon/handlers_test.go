package favicon

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	iconimg "github.com/leapstack-labs/approuter/internal/icon"
	"github.com/leapstack-labs/approuter/internal/store/storetest"
	"github.com/leapstack-labs/approuter/internal/web/features"
)

func serveFavicon(h *Handlers, params ...string) *httptest.ResponseRecorder {
	req := features.WithURLParams(httptest.NewRequest(http.MethodGet, "/favicon.ico", nil), params...)
	rec := httptest.NewRecorder()
	h.ServeFavicon(rec, req)
	return rec
}

func TestServeFavicon(t *testing.T) {
	fixture := features.SetupTestFixture(t,
		features.TestApp{Name: "With icon", Icon: storetest.SolidPNG(t, 64, 64, storetest.Red)},
		features.TestApp{Name: "Without icon"},
	)
	h := NewHandlers(fixture.Store, nil, nil, fixture.Logger)

	tests := []struct {
		name            string
		params          []string
		wantContentType string
	}{
		{name: "no app id", wantContentType: "image/x-icon"},
		{name: "unknown app", params: []string{"id", "77"}, wantContentType: "image/x-icon"},
		{name: "stored icon", params: []string{"id", "1"}, wantContentType: "image/png"},
		{name: "app without icon", params: []string{"id", "2"}, wantContentType: "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveFavicon(h, tt.params...)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantContentType, rec.Header().Get("Content-Type"))

			if tt.wantContentType == "image/x-icon" {
				assert.Equal(t, iconimg.DefaultFavicon(), rec.Body.Bytes())
				return
			}
			img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, iconimg.FaviconSize, img.Bounds().Dx())
		})
	}
}

func TestServeFavicon_PrefersVariant(t *testing.T) {
	variant := storetest.SolidPNG(t, 32, 32, storetest.Green)
	fixture := features.SetupTestFixture(t, features.TestApp{
		Name:     "Variant",
		Icon:     storetest.SolidPNG(t, 64, 64, storetest.Red),
		Variants: map[int][]byte{iconimg.FaviconSize: variant},
	})
	h := NewHandlers(fixture.Store, nil, nil, fixture.Logger)

	rec := serveFavicon(h, "id", "1")

	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	r, g, _, _ := img.At(16, 16).RGBA()
	assert.Zero(t, r>>8)
	assert.Equal(t, uint32(0xff), g>>8)
}

func TestServeFavicon_AccessorFailureServesDefault(t *testing.T) {
	h := NewHandlers(features.FailingAccessor(), nil, nil, nil)

	rec := serveFavicon(h, "id", "1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/x-icon", rec.Header().Get("Content-Type"))
	assert.Equal(t, iconimg.DefaultFavicon(), rec.Body.Bytes())
}
