package storage

import (
	"context"
)

// AuthStorage определяет интерфейс хранения аутентификационных данных на клиенте
type AuthStorage interface {
	// SaveAuth сохраняет данные сессии, перезаписывая предыдущие
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth возвращает сохраненную сессию.
	// Возвращает ErrAuthNotFound если сессии нет
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth удаляет сохраненную сессию (logout)
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated проверяет, есть ли действующая (не истекшая) сессия
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData представляет сессию пользователя в локальном хранилище.
// Файл БД создается с правами 0600, токены хранятся как есть
type AuthData struct {
	Username     string `json:"username"`
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	PublicSalt   string `json:"public_salt"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds
}
