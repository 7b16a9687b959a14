package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/draftkeeper/internal/models"
	"github.com/iudanet/draftkeeper/internal/server/storage"
	"github.com/iudanet/draftkeeper/pkg/api"
)

// mockUserStorage is a mock implementation of UserStorage for testing
type mockUserStorage struct {
	users        map[string]*models.User // username -> User
	createError  error
	getUserError error
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.users[user.Username]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	user, ok := m.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) UpdateLastLogin(ctx context.Context, userID string, loginTime time.Time) error {
	return nil
}

// mockTokenStorage is a mock implementation of TokenStorage for testing
type mockTokenStorage struct {
	tokens    map[string]*models.RefreshToken // token -> RefreshToken
	saveError error
}

func (m *mockTokenStorage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.saveError != nil {
		return m.saveError
	}
	if m.tokens == nil {
		m.tokens = map[string]*models.RefreshToken{}
	}
	m.tokens[token.Token] = token
	return nil
}

func (m *mockTokenStorage) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := m.tokens[token]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	return stored, nil
}

func (m *mockTokenStorage) DeleteRefreshToken(ctx context.Context, token string) error {
	if _, ok := m.tokens[token]; !ok {
		return storage.ErrTokenNotFound
	}
	delete(m.tokens, token)
	return nil
}

func (m *mockTokenStorage) DeleteUserTokens(ctx context.Context, userID string) (int, error) {
	n := 0
	for tok, stored := range m.tokens {
		if stored.UserID == userID {
			delete(m.tokens, tok)
			n++
		}
	}
	return n, nil
}

func (m *mockTokenStorage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:          []byte("test-secret"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func newAuthHandler(users *mockUserStorage, tokens *mockTokenStorage) *AuthHandler {
	return NewAuthHandler(testLogger(), users, tokens, testJWTConfig())
}

func TestAuthHandler_Register(t *testing.T) {
	users := &mockUserStorage{users: map[string]*models.User{}}
	h := newAuthHandler(users, &mockTokenStorage{})

	body, _ := json.Marshal(api.RegisterRequest{
		Username:    "writer1",
		AuthKeyHash: "deadbeef",
		PublicSalt:  "c2FsdA==",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Register(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp api.RegisterResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.UserID)
	assert.Contains(t, users.users, "writer1")
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  api.RegisterRequest
	}{
		{"invalid username", api.RegisterRequest{Username: "a!", AuthKeyHash: "h", PublicSalt: "s"}},
		{"missing hash", api.RegisterRequest{Username: "writer1", PublicSalt: "s"}},
		{"missing salt", api.RegisterRequest{Username: "writer1", AuthKeyHash: "h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAuthHandler(&mockUserStorage{users: map[string]*models.User{}}, &mockTokenStorage{})
			body, _ := json.Marshal(tt.req)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
			w := httptest.NewRecorder()
			h.Register(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthHandler_Register_DuplicateUsername(t *testing.T) {
	users := &mockUserStorage{users: map[string]*models.User{
		"taken": {ID: "u1", Username: "taken"},
	}}
	h := newAuthHandler(users, &mockTokenStorage{})

	body, _ := json.Marshal(api.RegisterRequest{Username: "taken", AuthKeyHash: "h", PublicSalt: "s"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Register(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	users := &mockUserStorage{users: map[string]*models.User{
		"writer1": {ID: "u1", Username: "writer1", AuthKeyHash: "goodhash"},
	}}
	tokens := &mockTokenStorage{}
	h := newAuthHandler(users, tokens)

	body, _ := json.Marshal(api.LoginRequest{Username: "writer1", AuthKeyHash: "goodhash"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Login(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), resp.ExpiresIn)

	// Refresh token сохранен
	assert.Len(t, tokens.tokens, 1)

	// Access token валидируется нашим же конфигом
	claims, err := ValidateAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "writer1", claims.Username)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	users := &mockUserStorage{users: map[string]*models.User{
		"writer1": {ID: "u1", Username: "writer1", AuthKeyHash: "goodhash"},
	}}
	h := newAuthHandler(users, &mockTokenStorage{})

	tests := []struct {
		name string
		req  api.LoginRequest
	}{
		{"wrong hash", api.LoginRequest{Username: "writer1", AuthKeyHash: "badhash"}},
		{"unknown user", api.LoginRequest{Username: "nosuch1", AuthKeyHash: "goodhash"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.req)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
			w := httptest.NewRecorder()
			h.Login(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthHandler_GetSalt(t *testing.T) {
	users := &mockUserStorage{users: map[string]*models.User{
		"writer1": {ID: "u1", Username: "writer1", PublicSalt: "c2FsdA=="},
	}}
	h := newAuthHandler(users, &mockTokenStorage{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/salt/writer1", nil)
	req.SetPathValue("username", "writer1")
	w := httptest.NewRecorder()
	h.GetSalt(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.SaltResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "c2FsdA==", resp.PublicSalt)
}

func TestAuthHandler_Refresh(t *testing.T) {
	users := &mockUserStorage{users: map[string]*models.User{
		"writer1": {ID: "u1", Username: "writer1"},
	}}
	tokens := &mockTokenStorage{tokens: map[string]*models.RefreshToken{
		"old-refresh": {Token: "old-refresh", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	h := newAuthHandler(users, tokens)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer old-refresh")
	w := httptest.NewRecorder()
	h.Refresh(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, "old-refresh", resp.RefreshToken)

	// Старый refresh token ротирован
	_, exists := tokens.tokens["old-refresh"]
	assert.False(t, exists)
	_, exists = tokens.tokens[resp.RefreshToken]
	assert.True(t, exists)
}

func TestAuthHandler_Refresh_Expired(t *testing.T) {
	users := &mockUserStorage{users: map[string]*models.User{
		"writer1": {ID: "u1", Username: "writer1"},
	}}
	tokens := &mockTokenStorage{tokens: map[string]*models.RefreshToken{
		"stale": {Token: "stale", UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)},
	}}
	h := newAuthHandler(users, tokens)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer stale")
	w := httptest.NewRecorder()
	h.Refresh(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	users := &mockUserStorage{users: map[string]*models.User{
		"writer1": {ID: "u1", Username: "writer1"},
	}}
	tokens := &mockTokenStorage{tokens: map[string]*models.RefreshToken{
		"r1": {Token: "r1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
		"r2": {Token: "r2", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
	}}
	h := newAuthHandler(users, tokens)

	accessToken, _, err := GenerateAccessToken(testJWTConfig(), "u1", "writer1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, tokens.tokens)
}

func TestAuthHandler_Logout_InvalidToken(t *testing.T) {
	h := newAuthHandler(&mockUserStorage{users: map[string]*models.User{}}, &mockTokenStorage{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	h.Logout(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
