package blob

import (
	"context"
	"errors"
)

// ErrNotFound indicates that no blob exists under the given key.
var ErrNotFound = errors.New("blob not found")

// Store is content storage keyed by an opaque generated name, decoupled from
// any display name the metadata layer carries.
type Store interface {
	// Write persists data under key, overwriting any previous content
	Write(ctx context.Context, key string, data []byte) error

	// Read returns the content stored under key
	// Returns ErrNotFound if no such blob exists
	Read(ctx context.Context, key string) ([]byte, error)
}
