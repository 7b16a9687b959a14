package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTitleLen максимальная длина названия документа
	MaxTitleLen = 200
)

// ValidateTitle проверяет название документа.
// Название не может быть пустым (после обрезки пробелов) и длиннее MaxTitleLen рун
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fmt.Errorf("title cannot be empty")
	}

	if utf8.RuneCountInString(trimmed) > MaxTitleLen {
		return fmt.Errorf("title must not exceed %d characters", MaxTitleLen)
	}

	if strings.ContainsAny(title, "\n\r") {
		return fmt.Errorf("title cannot contain line breaks")
	}

	return nil
}

// ValidateCheckpointName проверяет имя снапшота: непустое, без пробелов, до 64 символов
func ValidateCheckpointName(name string) error {
	if name == "" {
		return fmt.Errorf("checkpoint name cannot be empty")
	}

	if len(name) > 64 {
		return fmt.Errorf("checkpoint name must not exceed 64 characters")
	}

	if strings.ContainsAny(name, " \t\n\r") {
		return fmt.Errorf("checkpoint name cannot contain whitespace")
	}

	return nil
}
