// Package common provides shared helpers for web features.
package common

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// AppIDParam is the URL parameter holding the numeric app id.
const AppIDParam = "id"

// AppID returns the app id from the route. ok is false when the route has no
// id or the id does not fit an int64.
func AppID(r *http.Request) (id int64, ok bool) {
	raw := chi.URLParam(r, AppIDParam)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// WriteBody writes a 200 response with the given content type.
func WriteBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// NoStore disables caching of the response.
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}
