// Package apperr maps router errors to HTTP responses.
//
// Every error leaving a resolver is classified into one of a small set of
// kinds, and each kind has exactly one HTTP status.
package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/leapstack-labs/approuter/pkg/core"
)

// Kind classifies an error.
type Kind int

// Error kinds.
const (
	Unexpected Kind = iota
	NotFound
	BadRequest
)

// statusByKind is the complete kind -> status table.
var statusByKind = map[Kind]int{
	Unexpected: http.StatusInternalServerError,
	NotFound:   http.StatusNotFound,
	BadRequest: http.StatusBadRequest,
}

// Status returns the HTTP status for kind.
func Status(kind Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case BadRequest:
		return "bad_request"
	default:
		return "unexpected"
	}
}

// unexpectedMessage is shown to clients instead of internal error details.
const unexpectedMessage = "An unexpected error occurred"

// Error is a classified error with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewNotFound returns a NotFound error with the given client message.
func NewNotFound(message string) *Error {
	return &Error{Kind: NotFound, Message: message}
}

// NewBadRequest returns a BadRequest error wrapping cause.
func NewBadRequest(message string, cause error) *Error {
	return &Error{Kind: BadRequest, Message: message, Err: cause}
}

// Wrap classifies err. Accessor misses become NotFound with message; any
// other unclassified error becomes Unexpected.
func Wrap(err error, message string) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, core.ErrAppNotFound) {
		return &Error{Kind: NotFound, Message: message, Err: err}
	}
	return &Error{Kind: Unexpected, Message: unexpectedMessage, Err: err}
}

// KindOf returns the kind of err. Unclassified errors are Unexpected, except
// accessor misses which are NotFound.
func KindOf(err error) Kind {
	return Wrap(err, "").Kind
}

// body is the JSON error document.
type body struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// Write renders err as a JSON error response. Unexpected errors are logged
// and their details are never sent to the client. Nothing is written when
// the client has already gone away.
func Write(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		logger.Debug("request canceled", slog.String("path", r.URL.Path))
		return
	}

	e := Wrap(err, "Not found")
	status := Status(e.Kind)
	message := e.Message
	if e.Kind == Unexpected {
		message = unexpectedMessage
		logger.Error("request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// NotFoundHandler renders the generic 404 for unmatched routes.
func NotFoundHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Write(w, r, logger, NewNotFound("Not found"))
	}
}

// MethodNotAllowedHandler renders 405 for routes matched with the wrong method.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(body{
			StatusCode: http.StatusMethodNotAllowed,
			Error:      http.StatusText(http.StatusMethodNotAllowed),
			Message:    "Method not allowed",
		})
	}
}
