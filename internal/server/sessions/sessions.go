package sessions

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates that the key is absent or its TTL has elapsed. The
// two cases are deliberately indistinguishable to callers.
var ErrNotFound = errors.New("session not found")

// Store is a key/value store with per-key expiry, used for the
// token -> user id mapping.
type Store interface {
	// Get returns the value for key
	// Returns ErrNotFound if the key is absent or expired
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key with the given time-to-live
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key unconditionally; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error

	// Ping reports whether the store is reachable
	Ping(ctx context.Context) error
}
