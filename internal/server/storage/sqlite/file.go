package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/filedepot/filedepot/internal/models"
	"github.com/filedepot/filedepot/internal/server/storage"
)

// CreateFile inserts a new file record
func (s *Storage) CreateFile(ctx context.Context, file *models.FileRecord) error {
	query := `
		INSERT INTO files (id, user_id, name, type, is_public, parent_id, local_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		file.ID,
		file.UserID,
		file.Name,
		file.Type,
		file.IsPublic,
		file.ParentID,
		file.LocalPath,
		file.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}

	return nil
}

// GetFileByID retrieves a file record by id regardless of owner
func (s *Storage) GetFileByID(ctx context.Context, fileID string) (*models.FileRecord, error) {
	query := `
		SELECT id, user_id, name, type, is_public, parent_id, local_path, created_at
		FROM files
		WHERE id = ?
	`

	return s.scanFile(s.db.QueryRowContext(ctx, query, fileID))
}

// GetUserFile retrieves a file record matching both id and owner
func (s *Storage) GetUserFile(ctx context.Context, fileID, userID string) (*models.FileRecord, error) {
	query := `
		SELECT id, user_id, name, type, is_public, parent_id, local_path, created_at
		FROM files
		WHERE id = ? AND user_id = ?
	`

	return s.scanFile(s.db.QueryRowContext(ctx, query, fileID, userID))
}

// ListFiles returns the owner's records under parentID, newest first
func (s *Storage) ListFiles(ctx context.Context, userID, parentID string, offset, limit int) ([]*models.FileRecord, error) {
	query := `
		SELECT id, user_id, name, type, is_public, parent_id, local_path, created_at
		FROM files
		WHERE user_id = ? AND parent_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, parentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	files := []*models.FileRecord{}

	for rows.Next() {
		file := &models.FileRecord{}
		if err := rows.Scan(
			&file.ID,
			&file.UserID,
			&file.Name,
			&file.Type,
			&file.IsPublic,
			&file.ParentID,
			&file.LocalPath,
			&file.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return files, nil
}

// SetFileVisibility atomically sets isPublic on the record matching both
// id and owner. The single UPDATE with the combined filter is the concurrency
// guard: concurrent toggles never see a half-applied state.
func (s *Storage) SetFileVisibility(ctx context.Context, fileID, userID string, isPublic bool) (*models.FileRecord, error) {
	query := `UPDATE files SET is_public = ? WHERE id = ? AND user_id = ?`

	result, err := s.db.ExecContext(ctx, query, isPublic, fileID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update file visibility: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return nil, storage.ErrFileNotFound
	}

	return s.GetUserFile(ctx, fileID, userID)
}

// CountFiles returns the total number of file records
func (s *Storage) CountFiles(ctx context.Context) (int64, error) {
	var count int64

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}

	return count, nil
}

// scanFile reads a single file row
func (s *Storage) scanFile(row *sql.Row) (*models.FileRecord, error) {
	file := &models.FileRecord{}

	err := row.Scan(
		&file.ID,
		&file.UserID,
		&file.Name,
		&file.Type,
		&file.IsPublic,
		&file.ParentID,
		&file.LocalPath,
		&file.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return file, nil
}
