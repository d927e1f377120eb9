package server

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"github.com/filedepot/filedepot/internal/server/auth"
	"github.com/filedepot/filedepot/internal/server/handlers"
	"github.com/filedepot/filedepot/internal/server/middleware"
)

// Handlers bundles the route handlers wired by NewRouter.
type Handlers struct {
	App   *handlers.AppHandler
	Users *handlers.UsersHandler
	Auth  *handlers.AuthHandler
	Files *handlers.FilesHandler
}

// NewRouter assembles the HTTP surface. /files/{id}/data stays outside the
// auth middleware: it honors a token when present but serves anonymous reads
// of public files.
func NewRouter(logger *slog.Logger, h Handlers, authSvc *auth.Service, corsOptions cors.Options) http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /status", h.App.Status)
	mux.HandleFunc("GET /stats", h.App.Stats)
	mux.HandleFunc("POST /users", h.Users.Create)
	mux.HandleFunc("GET /connect", h.Auth.Connect)
	mux.HandleFunc("GET /disconnect", h.Auth.Disconnect)
	mux.HandleFunc("GET /files/{id}/data", h.Files.Data)

	// Token-protected routes
	requireAuth := middleware.TokenAuth(logger, authSvc)
	mux.Handle("GET /users/me", requireAuth(http.HandlerFunc(h.Users.Me)))
	mux.Handle("POST /files", requireAuth(http.HandlerFunc(h.Files.Create)))
	mux.Handle("GET /files", requireAuth(http.HandlerFunc(h.Files.Index)))
	mux.Handle("GET /files/{id}", requireAuth(http.HandlerFunc(h.Files.Show)))
	mux.Handle("PUT /files/{id}/publish", requireAuth(http.HandlerFunc(h.Files.Publish)))
	mux.Handle("PUT /files/{id}/unpublish", requireAuth(http.HandlerFunc(h.Files.Unpublish)))

	handler := cors.New(corsOptions).Handler(mux)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
