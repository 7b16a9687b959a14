package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/draftkeeper/internal/client/storage"
	"github.com/iudanet/draftkeeper/internal/server/handlers"
	pkgapi "github.com/iudanet/draftkeeper/pkg/api"
)

// mockAuthStorage implements storage.AuthStorage for testing
type mockAuthStorage struct {
	data      *storage.AuthData
	saveErr   error
	getErr    error
	deleteErr error
}

func (m *mockAuthStorage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := *auth
	m.data = &copied
	return nil
}

func (m *mockAuthStorage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.data == nil {
		return nil, storage.ErrAuthNotFound
	}
	copied := *m.data
	return &copied, nil
}

func (m *mockAuthStorage) DeleteAuth(ctx context.Context) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if m.data == nil {
		return storage.ErrAuthNotFound
	}
	m.data = nil
	return nil
}

func (m *mockAuthStorage) IsAuthenticated(ctx context.Context) (bool, error) {
	if m.data == nil {
		return false, nil
	}
	return time.Now().Before(time.Unix(m.data.ExpiresAt, 0)), nil
}

// mockAPIClient implements APIClient for testing
type mockAPIClient struct {
	registerResp *pkgapi.RegisterResponse
	registerErr  error
	saltResp     *pkgapi.SaltResponse
	saltErr      error
	loginResp    *pkgapi.TokenResponse
	loginErr     error
	refreshResp  *pkgapi.TokenResponse
	refreshErr   error
	logoutErr    error

	loginReq    *pkgapi.LoginRequest
	registerReq *pkgapi.RegisterRequest
	accessToken string
	logoutCalls int
}

func (m *mockAPIClient) Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error) {
	m.registerReq = &req
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return m.registerResp, nil
}

func (m *mockAPIClient) GetSalt(ctx context.Context, username string) (*pkgapi.SaltResponse, error) {
	if m.saltErr != nil {
		return nil, m.saltErr
	}
	return m.saltResp, nil
}

func (m *mockAPIClient) Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error) {
	m.loginReq = &req
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.loginResp, nil
}

func (m *mockAPIClient) Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error) {
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return m.refreshResp, nil
}

func (m *mockAPIClient) Logout(ctx context.Context) error {
	m.logoutCalls++
	return m.logoutErr
}

func (m *mockAPIClient) SetAccessToken(token string) {
	m.accessToken = token
}

// testAccessToken выпускает настоящий JWT, чтобы проверить извлечение user_id
func testAccessToken(t *testing.T, userID, username string) string {
	t.Helper()
	cfg := handlers.JWTConfig{
		Secret:         []byte("test-secret"),
		AccessTokenTTL: 15 * time.Minute,
	}
	token, _, err := handlers.GenerateAccessToken(cfg, userID, username)
	require.NoError(t, err)
	return token
}

const testPassword = "correct-horse-battery"

func TestRegister(t *testing.T) {
	mockAPI := &mockAPIClient{
		registerResp: &pkgapi.RegisterResponse{UserID: "user-1", Message: "registered"},
	}
	svc := NewService(mockAPI, &mockAuthStorage{})

	result, err := svc.Register(context.Background(), "writer1", testPassword)
	require.NoError(t, err)

	assert.Equal(t, "user-1", result.UserID)
	assert.Equal(t, "writer1", result.Username)
	assert.NotEmpty(t, result.PublicSalt)

	// На сервер ушел хеш, а не пароль
	require.NotNil(t, mockAPI.registerReq)
	assert.NotContains(t, mockAPI.registerReq.AuthKeyHash, testPassword)
	assert.Len(t, mockAPI.registerReq.AuthKeyHash, 64)
	assert.Equal(t, result.PublicSalt, mockAPI.registerReq.PublicSalt)
}

func TestRegister_Validation(t *testing.T) {
	svc := NewService(&mockAPIClient{}, &mockAuthStorage{})
	ctx := context.Background()

	_, err := svc.Register(ctx, "x", testPassword)
	assert.Error(t, err, "short username")

	_, err = svc.Register(ctx, "writer1", "short")
	assert.Error(t, err, "short password")
}

func TestLogin(t *testing.T) {
	accessToken := testAccessToken(t, "user-1", "writer1")

	saltB64 := "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=" // 32 нулевых байта
	mockAPI := &mockAPIClient{
		saltResp: &pkgapi.SaltResponse{PublicSalt: saltB64},
		loginResp: &pkgapi.TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: "refresh-token",
			ExpiresIn:    900,
		},
	}
	mockStorage := &mockAuthStorage{}
	svc := NewService(mockAPI, mockStorage)

	auth, err := svc.Login(context.Background(), "writer1", testPassword)
	require.NoError(t, err)

	assert.Equal(t, "writer1", auth.Username)
	assert.Equal(t, "user-1", auth.UserID, "user_id extracted from JWT claims")
	assert.Equal(t, accessToken, auth.AccessToken)
	assert.Equal(t, "refresh-token", auth.RefreshToken)
	assert.Greater(t, auth.ExpiresAt, time.Now().Unix())

	// Сессия сохранена и токен установлен на клиенте
	assert.NotNil(t, mockStorage.data)
	assert.Equal(t, accessToken, mockAPI.accessToken)

	// На сервер ушел хеш, а не пароль
	require.NotNil(t, mockAPI.loginReq)
	assert.Len(t, mockAPI.loginReq.AuthKeyHash, 64)
}

func TestLogin_SaltFetchFails(t *testing.T) {
	mockAPI := &mockAPIClient{saltErr: fmt.Errorf("user not found")}
	svc := NewService(mockAPI, &mockAuthStorage{})

	_, err := svc.Login(context.Background(), "writer1", testPassword)
	assert.ErrorContains(t, err, "failed to get salt")
}

func TestRefreshToken(t *testing.T) {
	mockAPI := &mockAPIClient{
		refreshResp: &pkgapi.TokenResponse{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    900,
		},
	}
	mockStorage := &mockAuthStorage{
		data: &storage.AuthData{
			Username:     "writer1",
			UserID:       "user-1",
			AccessToken:  "old-access",
			RefreshToken: "old-refresh",
			PublicSalt:   "salt",
			ExpiresAt:    time.Now().Add(-10 * time.Minute).Unix(),
		},
	}
	svc := NewService(mockAPI, mockStorage)

	require.NoError(t, svc.RefreshToken(context.Background()))

	assert.Equal(t, "new-access", mockStorage.data.AccessToken)
	assert.Equal(t, "new-refresh", mockStorage.data.RefreshToken)
	assert.Greater(t, mockStorage.data.ExpiresAt, time.Now().Unix())

	// Остальные поля сессии не тронуты
	assert.Equal(t, "writer1", mockStorage.data.Username)
	assert.Equal(t, "user-1", mockStorage.data.UserID)
	assert.Equal(t, "new-access", mockAPI.accessToken)
}

func TestRefreshToken_NoSession(t *testing.T) {
	svc := NewService(&mockAPIClient{}, &mockAuthStorage{})

	err := svc.RefreshToken(context.Background())
	assert.ErrorContains(t, err, "failed to get auth data")
}

func TestRefreshToken_APIError(t *testing.T) {
	mockAPI := &mockAPIClient{refreshErr: fmt.Errorf("invalid refresh token")}
	mockStorage := &mockAuthStorage{
		data: &storage.AuthData{RefreshToken: "old-refresh"},
	}
	svc := NewService(mockAPI, mockStorage)

	err := svc.RefreshToken(context.Background())
	assert.ErrorContains(t, err, "failed to refresh token")
	assert.ErrorContains(t, err, "invalid refresh token")
}

func TestRestoreSession_Valid(t *testing.T) {
	mockAPI := &mockAPIClient{}
	mockStorage := &mockAuthStorage{
		data: &storage.AuthData{
			Username:    "writer1",
			AccessToken: "access-token",
			ExpiresAt:   time.Now().Add(10 * time.Minute).Unix(),
		},
	}
	svc := NewService(mockAPI, mockStorage)

	auth, err := svc.RestoreSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "writer1", auth.Username)
	assert.Equal(t, "access-token", mockAPI.accessToken)
}

func TestRestoreSession_ExpiredRefreshes(t *testing.T) {
	mockAPI := &mockAPIClient{
		refreshResp: &pkgapi.TokenResponse{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    900,
		},
	}
	mockStorage := &mockAuthStorage{
		data: &storage.AuthData{
			Username:     "writer1",
			AccessToken:  "stale-access",
			RefreshToken: "old-refresh",
			ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
		},
	}
	svc := NewService(mockAPI, mockStorage)

	auth, err := svc.RestoreSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-access", auth.AccessToken)
}

func TestRestoreSession_NoSession(t *testing.T) {
	svc := NewService(&mockAPIClient{}, &mockAuthStorage{})

	_, err := svc.RestoreSession(context.Background())
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)
}

func TestLogout(t *testing.T) {
	mockAPI := &mockAPIClient{}
	mockStorage := &mockAuthStorage{
		data: &storage.AuthData{AccessToken: "access-token"},
	}
	svc := NewService(mockAPI, mockStorage)

	require.NoError(t, svc.Logout(context.Background()))

	assert.Nil(t, mockStorage.data)
	assert.Equal(t, 1, mockAPI.logoutCalls)
	assert.Empty(t, mockAPI.accessToken)
}

func TestLogout_ServerUnavailable(t *testing.T) {
	// Недоступный сервер не мешает локальному logout
	mockAPI := &mockAPIClient{logoutErr: fmt.Errorf("connection refused")}
	mockStorage := &mockAuthStorage{
		data: &storage.AuthData{AccessToken: "access-token"},
	}
	svc := NewService(mockAPI, mockStorage)

	require.NoError(t, svc.Logout(context.Background()))
	assert.Nil(t, mockStorage.data)
}

func TestLogout_NoSession(t *testing.T) {
	mockAPI := &mockAPIClient{}
	svc := NewService(mockAPI, &mockAuthStorage{})

	require.NoError(t, svc.Logout(context.Background()))
	assert.Zero(t, mockAPI.logoutCalls)
}
