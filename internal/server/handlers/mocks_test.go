package handlers

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/filedepot/filedepot/internal/models"
	"github.com/filedepot/filedepot/internal/server/blob"
	"github.com/filedepot/filedepot/internal/server/queue"
	"github.com/filedepot/filedepot/internal/server/sessions"
	"github.com/filedepot/filedepot/internal/server/storage"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockUserStore is an in-memory UserStore for handler tests
type mockUserStore struct {
	mu          sync.Mutex
	users       map[string]*models.User // email -> User
	createError error
	getError    error
	pingError   error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*models.User)}
}

func (m *mockUserStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.users[user.Email]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	user, ok := m.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStore) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	for _, user := range m.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStore) CountUsers(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return 0, m.getError
	}
	return int64(len(m.users)), nil
}

func (m *mockUserStore) Ping(ctx context.Context) error {
	return m.pingError
}

// mockFileStore is an in-memory FileStore for handler tests
type mockFileStore struct {
	mu          sync.Mutex
	files       map[string]*models.FileRecord // id -> record
	order       []string                      // insertion order, oldest first
	createError error
	getError    error
}

func newMockFileStore() *mockFileStore {
	return &mockFileStore{files: make(map[string]*models.FileRecord)}
}

func (m *mockFileStore) CreateFile(ctx context.Context, file *models.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	m.files[file.ID] = file
	m.order = append(m.order, file.ID)
	return nil
}

func (m *mockFileStore) GetFileByID(ctx context.Context, fileID string) (*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	file, ok := m.files[fileID]
	if !ok {
		return nil, storage.ErrFileNotFound
	}
	return file, nil
}

func (m *mockFileStore) GetUserFile(ctx context.Context, fileID, userID string) (*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	file, ok := m.files[fileID]
	if !ok || file.UserID != userID {
		return nil, storage.ErrFileNotFound
	}
	return file, nil
}

func (m *mockFileStore) ListFiles(ctx context.Context, userID, parentID string, offset, limit int) ([]*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	var matched []*models.FileRecord
	// newest first
	for i := len(m.order) - 1; i >= 0; i-- {
		file := m.files[m.order[i]]
		if file.UserID == userID && file.ParentID == parentID {
			matched = append(matched, file)
		}
	}
	if offset >= len(matched) {
		return []*models.FileRecord{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (m *mockFileStore) SetFileVisibility(ctx context.Context, fileID, userID string, isPublic bool) (*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	file, ok := m.files[fileID]
	if !ok || file.UserID != userID {
		return nil, storage.ErrFileNotFound
	}
	file.IsPublic = isPublic
	return file, nil
}

func (m *mockFileStore) CountFiles(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return 0, m.getError
	}
	return int64(len(m.files)), nil
}

// mockSessionStore is an in-memory session Store; TTLs are accepted but never
// enforced, expiry behavior is covered by the boltdb store tests
type mockSessionStore struct {
	mu        sync.Mutex
	values    map[string]string
	pingError error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{values: make(map[string]string)}
}

func (m *mockSessionStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return "", sessions.ErrNotFound
	}
	return value, nil
}

func (m *mockSessionStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mockSessionStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *mockSessionStore) Ping(ctx context.Context) error {
	return m.pingError
}

// mockBlobStore is an in-memory blob Store
type mockBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{blobs: make(map[string][]byte)}
}

func (m *mockBlobStore) Write(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return nil
}

func (m *mockBlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return data, nil
}

// mockProducer records enqueued tasks
type mockProducer struct {
	mu           sync.Mutex
	tasks        []queue.Task
	enqueueError error
}

func (m *mockProducer) Enqueue(ctx context.Context, task queue.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enqueueError != nil {
		return m.enqueueError
	}
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *mockProducer) taskTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.tasks))
	for _, task := range m.tasks {
		types = append(types, task.Type)
	}
	return types
}
