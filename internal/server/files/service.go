package files

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/filedepot/filedepot/internal/models"
	"github.com/filedepot/filedepot/internal/server/blob"
	"github.com/filedepot/filedepot/internal/server/queue"
	"github.com/filedepot/filedepot/internal/server/storage"
)

// File access errors surfaced to the HTTP layer
var (
	// ErrMissingName indicates a create request without a name
	ErrMissingName = errors.New("missing name")

	// ErrMissingType indicates a missing or unknown file kind
	ErrMissingType = errors.New("missing type")

	// ErrMissingData indicates a non-folder create without a payload
	ErrMissingData = errors.New("missing data")

	// ErrInvalidData indicates a payload that is not valid base64
	ErrInvalidData = errors.New("invalid data")

	// ErrParentNotFound indicates a parentId referencing no record
	ErrParentNotFound = errors.New("parent not found")

	// ErrParentNotFolder indicates a parentId referencing a non-folder record
	ErrParentNotFolder = errors.New("parent is not a folder")

	// ErrNotFound covers absent records, records owned by someone else and
	// private records read by non-owners. The conflation is deliberate: a
	// caller must not be able to confirm the existence of files it cannot see.
	ErrNotFound = errors.New("file not found")

	// ErrFolderContent indicates a content read on a folder
	ErrFolderContent = errors.New("a folder doesn't have content")
)

// PageSize is the fixed page size for listings.
const PageSize = 20

// DefaultContentType is served when the display name extension is unknown.
const DefaultContentType = "application/octet-stream"

// CreateParams carries the upload request. Data is the base64 encoded
// payload, required for non-folder kinds.
type CreateParams struct {
	Name     string
	Type     string
	ParentID string
	IsPublic bool
	Data     string
}

// Service enforces ownership and visibility rules over file records.
type Service struct {
	logger *slog.Logger
	files  storage.FileStore
	blobs  blob.Store
	tasks  queue.Producer
}

// NewService creates a new file access service
func NewService(logger *slog.Logger, files storage.FileStore, blobs blob.Store, tasks queue.Producer) *Service {
	return &Service{
		logger: logger,
		files:  files,
		blobs:  blobs,
		tasks:  tasks,
	}
}

// Create validates and stores a new file record. For non-folder kinds the
// decoded payload is written to the blob store under a fresh opaque path
// before the metadata insert, so a record never references a missing blob.
func (s *Service) Create(ctx context.Context, userID string, p CreateParams) (*models.FileRecord, error) {
	if p.Name == "" {
		return nil, ErrMissingName
	}
	if !models.ValidFileType(p.Type) {
		return nil, ErrMissingType
	}
	if p.Data == "" && p.Type != models.FileTypeFolder {
		return nil, ErrMissingData
	}

	parentID := p.ParentID
	if parentID == "" {
		parentID = models.RootParentID
	}
	if parentID != models.RootParentID {
		parent, err := s.files.GetFileByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, storage.ErrFileNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("failed to look up parent: %w", err)
		}
		if !parent.IsFolder() {
			return nil, ErrParentNotFolder
		}
	}

	record := &models.FileRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      p.Name,
		Type:      p.Type,
		IsPublic:  p.IsPublic,
		ParentID:  parentID,
		CreatedAt: time.Now(),
	}

	if p.Type != models.FileTypeFolder {
		payload, err := base64.StdEncoding.DecodeString(p.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidData, err)
		}

		record.LocalPath = uuid.New().String()
		if err := s.blobs.Write(ctx, record.LocalPath, payload); err != nil {
			return nil, fmt.Errorf("failed to write blob: %w", err)
		}
	}

	if err := s.files.CreateFile(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to insert file record: %w", err)
	}

	if p.Type == models.FileTypeImage {
		task := queue.Task{Type: queue.TaskThumbnail, FileID: record.ID, UserID: userID}
		if err := s.tasks.Enqueue(ctx, task); err != nil {
			// The upload itself succeeded; only the derivative generation is lost
			s.logger.WarnContext(ctx, "failed to enqueue thumbnail task",
				slog.String("file_id", record.ID),
				slog.Any("error", err))
		}
	}

	s.logger.InfoContext(ctx, "file created",
		slog.String("file_id", record.ID),
		slog.String("user_id", userID),
		slog.String("type", record.Type))

	return record, nil
}

// Get returns the record only if it is owned by the caller. An ownership
// mismatch reads as ErrNotFound, never as a permission error.
func (s *Service) Get(ctx context.Context, userID, fileID string) (*models.FileRecord, error) {
	record, err := s.files.GetUserFile(ctx, fileID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return record, nil
}

// List returns the caller's records under parentID (root when empty), newest
// first. Pages are zero-indexed and hold at most PageSize records; a page
// past the end yields an empty slice.
func (s *Service) List(ctx context.Context, userID, parentID string, page int) ([]*models.FileRecord, error) {
	if parentID == "" {
		parentID = models.RootParentID
	}
	if page < 0 {
		page = 0
	}

	records, err := s.files.ListFiles(ctx, userID, parentID, page*PageSize, PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return records, nil
}

// SetVisibility flips the public flag on a record owned by the caller and
// returns the post-update record.
func (s *Service) SetVisibility(ctx context.Context, userID, fileID string, isPublic bool) (*models.FileRecord, error) {
	record, err := s.files.SetFileVisibility(ctx, fileID, userID, isPublic)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update visibility: %w", err)
	}

	return record, nil
}

// ReadContent resolves a record by id regardless of owner and returns its
// bytes and MIME type. callerID is empty for anonymous reads. Private records
// read by non-owners, missing records and dangling blob references all yield
// ErrNotFound with nothing to tell them apart.
func (s *Service) ReadContent(ctx context.Context, callerID, fileID string) ([]byte, string, error) {
	record, err := s.files.GetFileByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to get file: %w", err)
	}

	if !record.IsPublic && (callerID == "" || callerID != record.UserID) {
		return nil, "", ErrNotFound
	}

	if record.IsFolder() {
		return nil, "", ErrFolderContent
	}

	data, err := s.blobs.Read(ctx, record.LocalPath)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to read blob: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(record.Name))
	if contentType == "" {
		contentType = DefaultContentType
	}

	return data, contentType, nil
}
