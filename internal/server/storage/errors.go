package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrDocumentNotFound indicates that document was not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrCheckpointNotFound indicates that checkpoint was not found
	ErrCheckpointNotFound = errors.New("checkpoint not found")

	// ErrVersionConflict indicates that draft write carried a stale version token
	ErrVersionConflict = errors.New("version conflict")
)
