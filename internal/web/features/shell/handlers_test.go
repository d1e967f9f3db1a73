package shell

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/approuter/internal/web/features"
	"github.com/leapstack-labs/approuter/internal/web/resources"
	"github.com/leapstack-labs/approuter/pkg/core"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestHandlers(t *testing.T, apps ...features.TestApp) *Handlers {
	t.Helper()

	fixture := features.SetupTestFixture(t, apps...)
	bundle, err := resources.NewBundle("", fixture.Logger)
	require.NoError(t, err)

	return NewHandlers(fixture.Store, bundle, "App Studio", fixture.Logger)
}

func get(id, acceptLanguage string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/"+id+"/some/page", nil)
	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}
	return features.WithURLParams(req, "id", id)
}

var nonceAttr = regexp.MustCompile(`<script nonce="([^"]+)">`)

// =============================================================================
// Editor Tests
// =============================================================================

func TestServeEditor(t *testing.T) {
	h := setupTestHandlers(t)

	rec := httptest.NewRecorder()
	h.ServeEditor(rec, httptest.NewRequest(http.MethodGet, "/editor/apps/3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		`<html lang="en">`,
		"<title>App Studio</title>",
		`src="/static/editor.js"`,
		`"mode":"editor"`,
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, `rel="manifest"`)
}

// =============================================================================
// App Shell Tests
// =============================================================================

func TestServeApp(t *testing.T) {
	h := setupTestHandlers(t, features.TestApp{
		Name:            "Field Inspections",
		Description:     "Inspect things",
		DefaultPage:     "Start Here",
		DefaultLanguage: "en",
		Languages:       []string{"en", "de", "fr-CA"},
		ThemeColor:      "#123456",
	})

	rec := httptest.NewRecorder()
	h.ServeApp(rec, get("1", "de-DE,de;q=0.9,en;q=0.5"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		`<html lang="de">`,
		"<title>Field Inspections</title>",
		`<meta name="description" content="Inspect things">`,
		`<meta name="theme-color" content="#123456">`,
		`<link rel="icon" href="/1/favicon.ico">`,
		`<link rel="manifest" href="/1/manifest.json">`,
		`<link rel="apple-touch-icon" href="/1/icon-192.png">`,
		`<link rel="stylesheet" href="/static/app.css">`,
		`<link rel="stylesheet" href="/api/apps/1/style/core">`,
		`<link rel="stylesheet" href="/api/apps/1/style/shared">`,
		`"mode":"app"`,
		`"appId":1`,
		`"defaultPage":"start-here"`,
		`"visibility":"unlisted"`,
		`src="/static/app.js"`,
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, ErrorAppNotFound)
}

func TestServeApp_NotFoundStillServesShell(t *testing.T) {
	h := setupTestHandlers(t)

	rec := httptest.NewRecorder()
	h.ServeApp(rec, get("42", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"error":"app_not_found"`)
	assert.Contains(t, body, `"appId":42`)
	assert.NotContains(t, body, `rel="manifest"`)
}

func TestServeApp_AccessorFailure(t *testing.T) {
	bundle, err := resources.NewBundle("", nil)
	require.NoError(t, err)
	h := NewHandlers(features.FailingAccessor(), bundle, "App Studio", nil)

	rec := httptest.NewRecorder()
	h.ServeApp(rec, get("1", ""))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "An unexpected error occurred")
}

func TestServeApp_NoncePerResponse(t *testing.T) {
	h := setupTestHandlers(t, features.TestApp{Name: "Nonce"})

	nonces := map[string]bool{}
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeApp(rec, get("1", ""))
		require.Equal(t, http.StatusOK, rec.Code)

		m := nonceAttr.FindStringSubmatch(rec.Body.String())
		require.Len(t, m, 2)
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "'nonce-"+m[1]+"'")
		nonces[m[1]] = true
	}
	assert.Len(t, nonces, 3)
}

// =============================================================================
// Language Negotiation Tests
// =============================================================================

func TestNegotiateLanguage(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		def    core.Definition
		want   string
	}{
		{name: "no languages", accept: "de", def: core.Definition{}, want: "en"},
		{name: "default language only", accept: "de", def: core.Definition{DefaultLanguage: "nl"}, want: "nl"},
		{name: "exact match", accept: "fr", def: core.Definition{Languages: []string{"en", "fr"}}, want: "fr"},
		{name: "regional match", accept: "de-AT", def: core.Definition{Languages: []string{"en", "de"}}, want: "de"},
		{name: "quality order", accept: "fr;q=0.4, de;q=0.9", def: core.Definition{Languages: []string{"fr", "de"}}, want: "de"},
		{name: "no header", accept: "", def: core.Definition{DefaultLanguage: "de", Languages: []string{"en", "de"}}, want: "de"},
		{name: "no match uses default", accept: "ja", def: core.Definition{DefaultLanguage: "de", Languages: []string{"en", "de"}}, want: "de"},
		{name: "invalid header", accept: ";;;", def: core.Definition{Languages: []string{"fr"}}, want: "en"},
		{name: "invalid definition tags skipped", accept: "fr", def: core.Definition{Languages: []string{"not a tag", "fr"}}, want: "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, negotiateLanguage(tt.accept, tt.def))
		})
	}
}
