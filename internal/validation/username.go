package validation

import (
	"fmt"
	"regexp"
)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 32

	// MinPasswordLen минимальная длина пароля аккаунта
	MinPasswordLen = 12
)

// usernamePattern латинские буквы, цифры и подчеркивание
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername проверяет имя аккаунта: 3-32 символа из [a-zA-Z0-9_].
// Username участвует в деривации auth key, поэтому формат фиксирован и
// одинаков на клиенте и сервере
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}

	return nil
}

// ValidatePassword проверяет пароль аккаунта. Проверяется только на клиенте:
// сервер видит лишь хеш производного ключа
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	return nil
}
