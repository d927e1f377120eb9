package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/filedepot/filedepot/internal/server/auth"
	"github.com/filedepot/filedepot/pkg/api"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-Token"

// AuthHandler serves login and logout.
type AuthHandler struct {
	logger *slog.Logger
	auth   *auth.Service
}

// NewAuthHandler creates a new handler for session endpoints
func NewAuthHandler(logger *slog.Logger, authSvc *auth.Service) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		auth:   authSvc,
	}
}

// Connect handles GET /connect
// Exchanges HTTP Basic credentials for a fresh session token.
func (h *AuthHandler) Connect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, err := h.auth.Authenticate(ctx, r.Header.Get("Authorization"))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			sendError(h.logger, w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to authenticate", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.TokenResponse{Token: token}, http.StatusOK)
}

// Disconnect handles GET /disconnect
// Revokes the presented token. A token that was never issued or has already
// expired yields 401.
func (h *AuthHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.auth.Revoke(ctx, r.Header.Get(TokenHeader)); err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			sendError(h.logger, w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to revoke token", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
