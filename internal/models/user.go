package models

import "time"

// User представляет пользователя в системе
type User struct {
	ID          string    `json:"id"`            // UUID пользователя
	Username    string    `json:"username"`      // уникальный username
	AuthKeyHash string    `json:"auth_key_hash"` // SHA256 хеш auth_key (hex-encoded)
	PublicSalt  string    `json:"public_salt"`   // base64 encoded salt (32 bytes)
	CreatedAt   time.Time `json:"created_at"`    // время создания
	UpdatedAt   time.Time `json:"updated_at"`    // время последнего обновления
	LastLoginAt time.Time `json:"last_login_at"` // время последнего входа
}

// RefreshToken представляет refresh token пользователя
type RefreshToken struct {
	Token     string    `json:"token"`      // значение токена (base64, 32 bytes)
	UserID    string    `json:"user_id"`    // ID пользователя
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
}
