package storage

import "errors"

var (
	// ErrAuthNotFound означает, что сохраненной сессии нет
	ErrAuthNotFound = errors.New("authentication data not found")
)
