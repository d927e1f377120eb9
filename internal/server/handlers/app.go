package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/filedepot/filedepot/internal/server/storage"
	"github.com/filedepot/filedepot/pkg/api"
)

// Pinger reports liveness of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AppHandler serves the operational endpoints: store liveness and counts.
type AppHandler struct {
	logger   *slog.Logger
	users    storage.UserStore
	files    storage.FileStore
	db       Pinger
	sessions Pinger
}

// NewAppHandler creates a new handler for /status and /stats
func NewAppHandler(logger *slog.Logger, users storage.UserStore, files storage.FileStore, db, sessions Pinger) *AppHandler {
	return &AppHandler{
		logger:   logger,
		users:    users,
		files:    files,
		db:       db,
		sessions: sessions,
	}
}

// Status handles GET /status
func (h *AppHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := api.StatusResponse{
		DB:       h.db.Ping(ctx) == nil,
		Sessions: h.sessions.Ping(ctx) == nil,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Stats handles GET /stats
func (h *AppHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.users.CountUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count users", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	files, err := h.files.CountFiles(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count files", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.StatsResponse{Users: users, Files: files}, http.StatusOK)
}
