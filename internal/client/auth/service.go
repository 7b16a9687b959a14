package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/draftkeeper/internal/client/storage"
	"github.com/iudanet/draftkeeper/internal/crypto"
	"github.com/iudanet/draftkeeper/internal/validation"
	pkgapi "github.com/iudanet/draftkeeper/pkg/api"
)

// APIClient определяет операции API сервера, которые использует сервис авторизации
type APIClient interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.RegisterResponse, error)
	GetSalt(ctx context.Context, username string) (*pkgapi.SaltResponse, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)
	Logout(ctx context.Context) error
	SetAccessToken(token string)
}

// Service предоставляет функции авторизации и управления локальной сессией
type Service struct {
	apiClient APIClient
	storage   storage.AuthStorage
}

// NewService создает новый сервис авторизации
func NewService(apiClient APIClient, authStorage storage.AuthStorage) *Service {
	return &Service{
		apiClient: apiClient,
		storage:   authStorage,
	}
}

// RegisterResult содержит результат регистрации
type RegisterResult struct {
	UserID     string // UUID пользователя
	Username   string // username
	PublicSalt string // public salt (base64)
}

// Register регистрирует нового пользователя.
// Пароль не покидает клиента: на сервер уходит SHA256 хеш Argon2id-ключа
func (s *Service) Register(ctx context.Context, username, password string) (*RegisterResult, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	publicSaltBase64, err := crypto.GenerateSaltBase64()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	authKeyHash, err := hashPassword(password, username, publicSaltBase64)
	if err != nil {
		return nil, err
	}

	req := pkgapi.RegisterRequest{
		Username:    username,
		AuthKeyHash: authKeyHash,
		PublicSalt:  publicSaltBase64,
	}

	resp, err := s.apiClient.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return &RegisterResult{
		UserID:     resp.UserID,
		Username:   username,
		PublicSalt: publicSaltBase64,
	}, nil
}

// Login выполняет аутентификацию и сохраняет сессию в локальном хранилище
func (s *Service) Login(ctx context.Context, username, password string) (*storage.AuthData, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	saltResp, err := s.apiClient.GetSalt(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get salt: %w", err)
	}

	authKeyHash, err := hashPassword(password, username, saltResp.PublicSalt)
	if err != nil {
		return nil, err
	}

	req := pkgapi.LoginRequest{
		Username:    username,
		AuthKeyHash: authKeyHash,
	}

	resp, err := s.apiClient.Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	auth := &storage.AuthData{
		Username:     username,
		UserID:       userIDFromToken(resp.AccessToken),
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		PublicSalt:   saltResp.PublicSalt,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).Unix(),
	}

	if err := s.storage.SaveAuth(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.apiClient.SetAccessToken(auth.AccessToken)

	return auth, nil
}

// RefreshToken обновляет пару токенов по сохраненному refresh token
// и перезаписывает сессию в хранилище
func (s *Service) RefreshToken(ctx context.Context) error {
	auth, err := s.storage.GetAuth(ctx)
	if err != nil {
		return fmt.Errorf("failed to get auth data: %w", err)
	}

	resp, err := s.apiClient.Refresh(ctx, auth.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	auth.AccessToken = resp.AccessToken
	auth.RefreshToken = resp.RefreshToken
	auth.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).Unix()

	if err := s.storage.SaveAuth(ctx, auth); err != nil {
		return fmt.Errorf("failed to save refreshed session: %w", err)
	}

	s.apiClient.SetAccessToken(auth.AccessToken)

	return nil
}

// RestoreSession восстанавливает сессию из хранилища при старте клиента.
// Истекший access token прозрачно обновляется по refresh token
func (s *Service) RestoreSession(ctx context.Context) (*storage.AuthData, error) {
	auth, err := s.storage.GetAuth(ctx)
	if err != nil {
		return nil, err
	}

	if time.Now().After(time.Unix(auth.ExpiresAt, 0)) {
		if err := s.RefreshToken(ctx); err != nil {
			return nil, fmt.Errorf("session expired and refresh failed: %w", err)
		}
		return s.storage.GetAuth(ctx)
	}

	s.apiClient.SetAccessToken(auth.AccessToken)

	return auth, nil
}

// IsAuthenticated проверяет, есть ли действующая локальная сессия
func (s *Service) IsAuthenticated(ctx context.Context) (bool, error) {
	return s.storage.IsAuthenticated(ctx)
}

// Logout отзывает токены на сервере (best effort) и удаляет локальную сессию
func (s *Service) Logout(ctx context.Context) error {
	auth, err := s.storage.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get auth data: %w", err)
	}

	s.apiClient.SetAccessToken(auth.AccessToken)
	if logoutErr := s.apiClient.Logout(ctx); logoutErr != nil {
		// Сервер может быть недоступен; локальную сессию удаляем в любом случае
		slog.Warn("failed to logout on server", "error", logoutErr)
	}

	if err := s.storage.DeleteAuth(ctx); err != nil {
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}

	s.apiClient.SetAccessToken("")

	return nil
}

// hashPassword деривирует auth key и возвращает его SHA256 хеш
func hashPassword(password, username, saltBase64 string) (string, error) {
	authKey, err := crypto.DeriveAuthKeyFromBase64Salt(password, username, saltBase64)
	if err != nil {
		return "", fmt.Errorf("failed to derive auth key: %w", err)
	}

	authKeyHash, err := crypto.HashAuthKey(authKey)
	if err != nil {
		return "", fmt.Errorf("failed to hash auth key: %w", err)
	}

	return authKeyHash, nil
}

// userIDFromToken извлекает user_id из claims без проверки подписи.
// Подпись проверяет сервер; клиенту ID нужен только для отображения
func userIDFromToken(accessToken string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return ""
	}
	userID, _ := claims["user_id"].(string)
	return userID
}
