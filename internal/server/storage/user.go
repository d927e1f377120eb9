package storage

import (
	"context"

	"github.com/filedepot/filedepot/internal/models"
)

// UserStore defines interface for user data persistence
type UserStore interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if the email is taken
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves user by email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// CountUsers returns the total number of registered users
	CountUsers(ctx context.Context) (int64, error)
}
