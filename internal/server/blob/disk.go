package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore stores blobs as flat files under a single root directory. Keys
// are server-generated, but separators are still rejected so a corrupted
// record can never escape the root.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed and returns a store
// backed by it.
func NewDiskStore(root string) (*DiskStore, error) {
	if root == "" {
		return nil, fmt.Errorf("blob root directory is required")
	}

	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}

	return &DiskStore{root: root}, nil
}

// Root returns the root directory of the store.
func (s *DiskStore) Root() string {
	return s.root
}

// Write persists data under key.
func (s *DiskStore) Write(ctx context.Context, key string, data []byte) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}

	return nil
}

// Read returns the content stored under key.
func (s *DiskStore) Read(ctx context.Context, key string) ([]byte, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	return data, nil
}

func (s *DiskStore) keyPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.root, key), nil
}
