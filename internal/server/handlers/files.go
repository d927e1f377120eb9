package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/filedepot/filedepot/internal/server/auth"
	"github.com/filedepot/filedepot/internal/server/files"
	"github.com/filedepot/filedepot/pkg/api"
)

// FilesHandler serves file metadata and content endpoints.
type FilesHandler struct {
	logger *slog.Logger
	files  *files.Service
	auth   *auth.Service
}

// NewFilesHandler creates a new handler for file endpoints
func NewFilesHandler(logger *slog.Logger, filesSvc *files.Service, authSvc *auth.Service) *FilesHandler {
	return &FilesHandler{
		logger: logger,
		files:  filesSvc,
		auth:   authSvc,
	}
}

// Create handles POST /files
func (h *FilesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreateFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create request", slog.Any("error", err))
		sendError(h.logger, w, "Invalid request body", http.StatusBadRequest)
		return
	}

	record, err := h.files.Create(ctx, userID, files.CreateParams{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: req.ParentID,
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		switch {
		case errors.Is(err, files.ErrMissingName):
			sendError(h.logger, w, "Missing name", http.StatusBadRequest)
		case errors.Is(err, files.ErrMissingType):
			sendError(h.logger, w, "Missing type", http.StatusBadRequest)
		case errors.Is(err, files.ErrMissingData):
			sendError(h.logger, w, "Missing data", http.StatusBadRequest)
		case errors.Is(err, files.ErrInvalidData):
			sendError(h.logger, w, "Invalid data", http.StatusBadRequest)
		case errors.Is(err, files.ErrParentNotFound):
			sendError(h.logger, w, "Parent not found", http.StatusBadRequest)
		case errors.Is(err, files.ErrParentNotFolder):
			sendError(h.logger, w, "Parent is not a folder", http.StatusBadRequest)
		default:
			h.logger.ErrorContext(ctx, "failed to create file", slog.Any("error", err))
			sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	sendJSON(h.logger, w, fileResponse(record), http.StatusCreated)
}

// Show handles GET /files/{id}
func (h *FilesHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	record, err := h.files.Get(ctx, userID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			sendError(h.logger, w, "Not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get file", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, fileResponse(record), http.StatusOK)
}

// Index handles GET /files
// Query params: parentId (root when absent), page (zero-indexed).
func (h *FilesHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			page = parsed
		}
	}

	records, err := h.files.List(ctx, userID, r.URL.Query().Get("parentId"), page)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list files", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]api.FileResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, fileResponse(record))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Publish handles PUT /files/{id}/publish
func (h *FilesHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, true)
}

// Unpublish handles PUT /files/{id}/unpublish
func (h *FilesHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, false)
}

func (h *FilesHandler) setVisibility(w http.ResponseWriter, r *http.Request, isPublic bool) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	record, err := h.files.SetVisibility(ctx, userID, r.PathValue("id"), isPublic)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			sendError(h.logger, w, "Not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update visibility", slog.Any("error", err))
		sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, fileResponse(record), http.StatusOK)
}

// Data handles GET /files/{id}/data
// The route is open: a token is honored when present, but a missing or stale
// one just downgrades the caller to anonymous.
func (h *FilesHandler) Data(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	callerID := ""
	if token := r.Header.Get(TokenHeader); token != "" {
		if resolved, err := h.auth.ResolveToken(ctx, token); err == nil {
			callerID = resolved
		}
	}

	data, contentType, err := h.files.ReadContent(ctx, callerID, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, files.ErrNotFound):
			sendError(h.logger, w, "Not found", http.StatusNotFound)
		case errors.Is(err, files.ErrFolderContent):
			sendError(h.logger, w, "A folder doesn't have content", http.StatusBadRequest)
		default:
			h.logger.ErrorContext(ctx, "failed to read content", slog.Any("error", err))
			sendError(h.logger, w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(ctx, "failed to write content", slog.Any("error", err))
	}
}
