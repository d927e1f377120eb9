package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/filedepot/filedepot/internal/models"
	"github.com/filedepot/filedepot/pkg/api"
)

type contextKey string

// UserIDKey carries the authenticated user id through the request context.
const UserIDKey contextKey = "userID"

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// sendJSON writes a JSON response
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError writes a JSON error response. Every failure of a given status
// shares the same body shape, so indistinguishable cases stay that way.
func sendError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	sendJSON(logger, w, api.ErrorResponse{Error: message}, statusCode)
}

// fileResponse converts a record to its wire shape
func fileResponse(record *models.FileRecord) api.FileResponse {
	return api.FileResponse{
		ID:       record.ID,
		UserID:   record.UserID,
		Name:     record.Name,
		Type:     record.Type,
		IsPublic: record.IsPublic,
		ParentID: record.ParentID,
	}
}
