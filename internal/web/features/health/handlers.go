// Package health serves the liveness endpoint.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the body of /healthz.
type Status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

const pingTimeout = 2 * time.Second

// Handlers serves /healthz.
type Handlers struct {
	db     Pinger
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db Pinger, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{db: db, logger: logger}
}

// ServeHealth responds 200 when the store answers a ping and 503 otherwise.
func (h *Handlers) ServeHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	status, code := Status{Status: "ok", Database: "ok"}, http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		status, code = Status{Status: "unavailable", Database: "unreachable"}, http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
