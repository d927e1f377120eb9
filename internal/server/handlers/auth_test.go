package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedepot/filedepot/internal/server/auth"
	"github.com/filedepot/filedepot/pkg/api"
)

func basicHeader(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func TestAuthHandler_Connect_Success(t *testing.T) {
	logger := setupTestLogger()
	users := newMockUserStore()
	authSvc := auth.NewService(logger, users, newMockSessionStore())
	handler := NewAuthHandler(logger, authSvc)

	_, err := authSvc.Register(context.Background(), "bob@dylan.com", "toto1234")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/connect", nil)
	req.Header.Set("Authorization", basicHeader("bob@dylan.com", "toto1234"))

	w := httptest.NewRecorder()
	handler.Connect(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.NotEmpty(t, response.Token)

	// The token must resolve back to the registered user
	userID, err := authSvc.ResolveToken(context.Background(), response.Token)
	require.NoError(t, err)

	user, err := users.GetUserByEmail(context.Background(), "bob@dylan.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestAuthHandler_Connect_FreshTokenPerLogin(t *testing.T) {
	logger := setupTestLogger()
	authSvc := auth.NewService(logger, newMockUserStore(), newMockSessionStore())
	handler := NewAuthHandler(logger, authSvc)

	_, err := authSvc.Register(context.Background(), "bob@dylan.com", "toto1234")
	require.NoError(t, err)

	tokens := make(map[string]bool)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/connect", nil)
		req.Header.Set("Authorization", basicHeader("bob@dylan.com", "toto1234"))

		w := httptest.NewRecorder()
		handler.Connect(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var response api.TokenResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		tokens[response.Token] = true
	}

	// Each login issues a distinct token and earlier ones stay valid
	assert.Len(t, tokens, 3)
	for token := range tokens {
		_, err := authSvc.ResolveToken(context.Background(), token)
		assert.NoError(t, err)
	}
}

func TestAuthHandler_Connect_Unauthorized(t *testing.T) {
	logger := setupTestLogger()
	authSvc := auth.NewService(logger, newMockUserStore(), newMockSessionStore())
	handler := NewAuthHandler(logger, authSvc)

	_, err := authSvc.Register(context.Background(), "bob@dylan.com", "toto1234")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not basic", "Bearer abc"},
		{"bad base64", "Basic %%%"},
		{"no colon", "Basic " + base64.StdEncoding.EncodeToString([]byte("bobdylan"))},
		{"unknown email", basicHeader("nobody@dylan.com", "toto1234")},
		{"wrong password", basicHeader("bob@dylan.com", "wrong")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/connect", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			handler.Connect(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var response api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, "Unauthorized", response.Error)
		})
	}
}

func TestAuthHandler_Disconnect(t *testing.T) {
	logger := setupTestLogger()
	authSvc := auth.NewService(logger, newMockUserStore(), newMockSessionStore())
	handler := NewAuthHandler(logger, authSvc)

	_, err := authSvc.Register(context.Background(), "bob@dylan.com", "toto1234")
	require.NoError(t, err)

	token, err := authSvc.Authenticate(context.Background(), basicHeader("bob@dylan.com", "toto1234"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/disconnect", nil)
	req.Header.Set(TokenHeader, token)

	w := httptest.NewRecorder()
	handler.Disconnect(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	// The token is gone; a second disconnect reads as unauthorized
	req = httptest.NewRequest(http.MethodGet, "/disconnect", nil)
	req.Header.Set(TokenHeader, token)

	w = httptest.NewRecorder()
	handler.Disconnect(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Disconnect_UnknownToken(t *testing.T) {
	logger := setupTestLogger()
	authSvc := auth.NewService(logger, newMockUserStore(), newMockSessionStore())
	handler := NewAuthHandler(logger, authSvc)

	req := httptest.NewRequest(http.MethodGet, "/disconnect", nil)
	req.Header.Set(TokenHeader, "never-issued")

	w := httptest.NewRecorder()
	handler.Disconnect(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Unauthorized", response.Error)
}
