package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedepot/filedepot/internal/server/auth"
	"github.com/filedepot/filedepot/internal/server/queue"
	"github.com/filedepot/filedepot/pkg/api"
)

func TestUsersHandler_Create_Success(t *testing.T) {
	logger := setupTestLogger()
	users := newMockUserStore()
	producer := &mockProducer{}
	authSvc := auth.NewService(logger, users, newMockSessionStore())

	handler := NewUsersHandler(logger, authSvc, producer)

	body, err := json.Marshal(api.RegisterRequest{
		Email:    "bob@dylan.com",
		Password: "toto1234",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response api.UserResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.NotEmpty(t, response.ID)
	assert.Equal(t, "bob@dylan.com", response.Email)

	// Password material must never appear on the wire
	assert.NotContains(t, w.Body.String(), "toto1234")

	// A welcome task is queued for the new account
	assert.Equal(t, []string{queue.TaskWelcome}, producer.taskTypes())

	stored, err := users.GetUserByEmail(context.Background(), "bob@dylan.com")
	require.NoError(t, err)
	assert.Equal(t, response.ID, stored.ID)
	assert.NotEqual(t, "toto1234", stored.PasswordHash)
}

func TestUsersHandler_Create_Validation(t *testing.T) {
	logger := setupTestLogger()

	tests := []struct {
		name          string
		email         string
		password      string
		expectedError string
	}{
		{"missing email", "", "toto1234", "Missing email"},
		{"missing password", "bob@dylan.com", "", "Missing password"},
		{"malformed email", "not-an-email", "toto1234", "Invalid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authSvc := auth.NewService(logger, newMockUserStore(), newMockSessionStore())
			handler := NewUsersHandler(logger, authSvc, &mockProducer{})

			body, err := json.Marshal(api.RegisterRequest{Email: tt.email, Password: tt.password})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
			w := httptest.NewRecorder()
			handler.Create(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedError, response.Error)
		})
	}
}

func TestUsersHandler_Create_DuplicateEmail(t *testing.T) {
	logger := setupTestLogger()
	users := newMockUserStore()
	authSvc := auth.NewService(logger, users, newMockSessionStore())
	handler := NewUsersHandler(logger, authSvc, &mockProducer{})

	body, err := json.Marshal(api.RegisterRequest{Email: "bob@dylan.com", Password: "toto1234"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.Create(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	w = httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Already exist", response.Error)
}

func TestUsersHandler_Create_InvalidJSON(t *testing.T) {
	logger := setupTestLogger()
	authSvc := auth.NewService(logger, newMockUserStore(), newMockSessionStore())
	handler := NewUsersHandler(logger, authSvc, &mockProducer{})

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsersHandler_Create_EnqueueFailureStillCreates(t *testing.T) {
	logger := setupTestLogger()
	users := newMockUserStore()
	producer := &mockProducer{enqueueError: context.DeadlineExceeded}
	authSvc := auth.NewService(logger, users, newMockSessionStore())
	handler := NewUsersHandler(logger, authSvc, producer)

	body, err := json.Marshal(api.RegisterRequest{Email: "bob@dylan.com", Password: "toto1234"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUsersHandler_Me(t *testing.T) {
	logger := setupTestLogger()
	users := newMockUserStore()
	authSvc := auth.NewService(logger, users, newMockSessionStore())
	handler := NewUsersHandler(logger, authSvc, &mockProducer{})

	user, err := authSvc.Register(context.Background(), "bob@dylan.com", "toto1234")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, user.ID))

	w := httptest.NewRecorder()
	handler.Me(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response api.UserResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, user.ID, response.ID)
	assert.Equal(t, "bob@dylan.com", response.Email)
}

func TestUsersHandler_Me_UnknownUser(t *testing.T) {
	logger := setupTestLogger()
	authSvc := auth.NewService(logger, newMockUserStore(), newMockSessionStore())
	handler := NewUsersHandler(logger, authSvc, &mockProducer{})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, "gone"))

	w := httptest.NewRecorder()
	handler.Me(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Unauthorized", response.Error)
}

func TestUsersHandler_Me_NoContext(t *testing.T) {
	logger := setupTestLogger()
	authSvc := auth.NewService(logger, newMockUserStore(), newMockSessionStore())
	handler := NewUsersHandler(logger, authSvc, &mockProducer{})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	w := httptest.NewRecorder()
	handler.Me(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
