package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/filedepot/filedepot/internal/server/handlers"
	"github.com/filedepot/filedepot/pkg/api"
)

// TokenResolver maps a session token to a user id.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (string, error)
}

// TokenAuth builds middleware that resolves the X-Token header through the
// session store and injects the user id into the request context. Missing,
// unknown and expired tokens are all answered with the same 401 body.
func TokenAuth(logger *slog.Logger, resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(handlers.TokenHeader)

			userID, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				logger.Warn("request with invalid token",
					"method", r.Method,
					"path", r.URL.Path)
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), handlers.UserIDKey, userID)

			logger.Debug("user authenticated", "user_id", userID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "Unauthorized"})
}
