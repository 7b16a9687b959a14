package storage

import (
	"context"

	"github.com/iudanet/draftkeeper/internal/models"
)

// DocumentStorage defines interface for document and draft persistence
type DocumentStorage interface {
	// CreateDocument creates a new document
	CreateDocument(ctx context.Context, doc *models.Document) error

	// GetDocument retrieves a document owned by userID
	// Returns ErrDocumentNotFound if it doesn't exist or belongs to another user
	GetDocument(ctx context.Context, userID, documentID string) (*models.Document, error)

	// ListDocuments returns all documents of a user, newest first
	ListDocuments(ctx context.Context, userID string) ([]*models.Document, error)

	// SaveDraft persists draft content under an optimistic concurrency check:
	// the write is accepted only if versionToken matches the stored one.
	// On success the stored token is replaced with newToken.
	// Returns ErrVersionConflict on token mismatch, ErrDocumentNotFound otherwise
	SaveDraft(ctx context.Context, userID, documentID, content, versionToken, newToken string) error

	// DeleteDocument removes a document and its checkpoints
	// Returns ErrDocumentNotFound if it doesn't exist or belongs to another user
	DeleteDocument(ctx context.Context, userID, documentID string) error
}

// CheckpointStorage defines interface for named draft snapshots
type CheckpointStorage interface {
	// CreateCheckpoint stores a named snapshot of a document draft
	CreateCheckpoint(ctx context.Context, cp *models.Checkpoint) error

	// ListCheckpoints returns all checkpoints of a document, newest first
	ListCheckpoints(ctx context.Context, documentID string) ([]*models.Checkpoint, error)

	// GetCheckpoint retrieves a checkpoint by ID
	// Returns ErrCheckpointNotFound if it doesn't exist
	GetCheckpoint(ctx context.Context, checkpointID string) (*models.Checkpoint, error)
}
