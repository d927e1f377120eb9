package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/filedepot/filedepot/internal/models"
	"github.com/filedepot/filedepot/internal/server/sessions"
	"github.com/filedepot/filedepot/internal/server/storage"
	"github.com/filedepot/filedepot/internal/validation"
)

// Auth errors surfaced to the HTTP layer
var (
	// ErrUnauthorized covers bad credentials and missing/expired/unknown tokens
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMissingEmail indicates registration without an email
	ErrMissingEmail = errors.New("missing email")

	// ErrMissingPassword indicates registration without a password
	ErrMissingPassword = errors.New("missing password")

	// ErrInvalidEmail indicates a malformed email on registration
	ErrInvalidEmail = errors.New("invalid email")

	// ErrEmailTaken indicates a duplicate registration
	ErrEmailTaken = errors.New("email already registered")
)

// TokenTTL is the fixed lifetime of a session token.
const TokenTTL = 86400 * time.Second

// sessionKeyPrefix namespaces token keys inside the session store.
const sessionKeyPrefix = "auth_"

// Service issues and validates session tokens and manages registration.
// A token's life is: absent -> active (Authenticate) -> absent (Revoke or
// TTL expiry). There is no refresh transition.
type Service struct {
	logger   *slog.Logger
	users    storage.UserStore
	sessions sessions.Store
	tokenTTL time.Duration
}

// NewService creates a new auth service
func NewService(logger *slog.Logger, users storage.UserStore, store sessions.Store) *Service {
	return &Service{
		logger:   logger,
		users:    users,
		sessions: store,
		tokenTTL: TokenTTL,
	}
}

// Register creates a new user with a bcrypt password hash and returns it.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" {
		return nil, ErrMissingEmail
	}
	if password == "" {
		return nil, ErrMissingPassword
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEmail, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email))

	return user, nil
}

// Authenticate decodes an HTTP Basic credential header, verifies the
// password and issues a fresh session token with the fixed TTL.
func (s *Service) Authenticate(ctx context.Context, basicHeader string) (string, error) {
	email, password, err := DecodeBasicCredentials(basicHeader)
	if err != nil {
		return "", ErrUnauthorized
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrUnauthorized
	}

	token, err := GenerateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.sessions.Set(ctx, sessionKeyPrefix+token, user.ID, s.tokenTTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return token, nil
}

// ResolveToken maps a token to the owning user id. Expiry is not extended on
// access; sliding sessions are not implemented.
func (s *Service) ResolveToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}

	userID, err := s.sessions.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed to look up session: %w", err)
	}

	return userID, nil
}

// Revoke deletes the token mapping. Revoking a token that was never issued
// (or already expired) yields ErrUnauthorized.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if _, err := s.ResolveToken(ctx, token); err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// GetUser returns the user for an already-resolved id. An id that resolves
// to no user (e.g. after a database reset) reads as unauthorized.
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GenerateToken returns a fresh cryptographically random token string.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeBasicCredentials extracts email and password from an
// "Authorization: Basic <base64(email:password)>" header value.
func DecodeBasicCredentials(header string) (email, password string, err error) {
	const prefix = "Basic "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", fmt.Errorf("not a basic credential")
	}

	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", fmt.Errorf("failed to decode credentials: %w", err)
	}

	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed credentials")
	}

	return parts[0], parts[1], nil
}
