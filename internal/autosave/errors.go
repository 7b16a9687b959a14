package autosave

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind классифицирует ошибку сохранения и определяет ветку retry-политики
type Kind string

const (
	// KindTimeout попытка прервана по собственному таймауту; не повторяется generic-веткой
	KindTimeout Kind = "timeout"
	// KindNetwork транспортная ошибка; повторяется до networkRetryCeiling
	KindNetwork Kind = "network"
	// KindAuth отказ по учетным данным; не повторяется, эскалируется через OnAuthError
	KindAuth Kind = "auth"
	// KindConflict расхождение версий на сервере; не повторяется, эскалируется через OnConflict
	KindConflict Kind = "conflict"
	// KindUnknown все остальное; повторяется generic-политикой
	KindUnknown Kind = "unknown"
)

// Error типизированная ошибка сохранения. Коллаборатор персистентности сам
// помечает исход вместо того, чтобы ядро разбирало текст исключения
type Error struct {
	// Err исходная ошибка
	Err error
	// Conflict полезная нагрузка серверного расхождения (для KindConflict)
	Conflict any
	// Kind класс ошибки
	Kind Kind
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("save failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("save failed (%s)", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError создает типизированную ошибку сохранения
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Classify определяет класс ошибки. Типизированные *Error возвращают свой Kind;
// для неразмеченных ошибок используются только стандартные признаки
// (context deadline, net.Error), без анализа текста сообщений
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var saveErr *Error
	if errors.As(err, &saveErr) {
		return saveErr.Kind
	}

	// Таймаут собственного контекста попытки
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}

	// Транспортные ошибки
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	return KindUnknown
}

// ConflictPayload извлекает полезную нагрузку конфликта, если ошибка его несет
func ConflictPayload(err error) any {
	var saveErr *Error
	if errors.As(err, &saveErr) && saveErr.Kind == KindConflict {
		return saveErr.Conflict
	}
	return nil
}
