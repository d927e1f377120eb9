package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/filedepot/filedepot/internal/server/auth"
	"github.com/filedepot/filedepot/internal/server/queue"
	"github.com/filedepot/filedepot/pkg/api"
)

// UsersHandler serves registration and the current-identity endpoint.
type UsersHandler struct {
	logger *slog.Logger
	auth   *auth.Service
	tasks  queue.Producer
}

// NewUsersHandler creates a new handler for user endpoints
func NewUsersHandler(logger *slog.Logger, authSvc *auth.Service, tasks queue.Producer) *UsersHandler {
	return &UsersHandler{
		logger: logger,
		auth:   authSvc,
		tasks:  tasks,
	}
}

// Create handles POST /users
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingEmail):
			sendError(h.logger, w, "Missing email", http.StatusBadRequest)
		case errors.Is(err, auth.ErrMissingPassword):
			sendError(h.logger, w, "Missing password", http.StatusBadRequest)
		case errors.Is(err, auth.ErrInvalidEmail):
			sendError(h.logger, w, "Invalid email", http.StatusBadRequest)
		case errors.Is(err, auth.ErrEmailTaken):
			sendError(h.logger, w, "Already exist", http.StatusBadRequest)
		default:
			h.logger.ErrorContext(ctx, "failed to register user", slog.Any("error", err))
			sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	task := queue.Task{Type: queue.TaskWelcome, UserID: user.ID}
	if err := h.tasks.Enqueue(ctx, task); err != nil {
		// Registration stands; only the greeting is lost
		h.logger.WarnContext(ctx, "failed to enqueue welcome task",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
	}

	sendJSON(h.logger, w, api.UserResponse{ID: user.ID, Email: user.Email}, http.StatusCreated)
}

// Me handles GET /users/me
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.auth.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			sendError(h.logger, w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.UserResponse{ID: user.ID, Email: user.Email}, http.StatusOK)
}
