package storage

import (
	"context"

	"github.com/filedepot/filedepot/internal/models"
)

// FileStore defines interface for file metadata persistence
type FileStore interface {
	// CreateFile inserts a new file record
	CreateFile(ctx context.Context, file *models.FileRecord) error

	// GetFileByID retrieves a file record by id regardless of owner
	// Returns ErrFileNotFound if the record doesn't exist
	GetFileByID(ctx context.Context, fileID string) (*models.FileRecord, error)

	// GetUserFile retrieves a file record matching both id and owner
	// Returns ErrFileNotFound if no such record exists
	GetUserFile(ctx context.Context, fileID, userID string) (*models.FileRecord, error)

	// ListFiles returns the owner's records under parentID, newest first,
	// limited to limit rows starting at offset. A range past the end yields
	// an empty slice, not an error.
	ListFiles(ctx context.Context, userID, parentID string, offset, limit int) ([]*models.FileRecord, error)

	// SetFileVisibility atomically sets isPublic on the record matching both
	// id and owner and returns the updated record.
	// Returns ErrFileNotFound if no such record exists
	SetFileVisibility(ctx context.Context, fileID, userID string, isPublic bool) (*models.FileRecord, error)

	// CountFiles returns the total number of file records
	CountFiles(ctx context.Context) (int64, error)
}
