package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/draftkeeper/internal/models"
	"github.com/iudanet/draftkeeper/internal/server/storage"
)

// CreateCheckpoint stores a named snapshot of a document draft
func (s *Storage) CreateCheckpoint(ctx context.Context, cp *models.Checkpoint) error {
	query := `
		INSERT INTO checkpoints (id, document_id, name, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		cp.ID,
		cp.DocumentID,
		cp.Name,
		cp.Content,
		cp.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert checkpoint: %w", err)
	}

	return nil
}

// ListCheckpoints returns all checkpoints of a document, newest first
func (s *Storage) ListCheckpoints(ctx context.Context, documentID string) ([]*models.Checkpoint, error) {
	query := `
		SELECT id, document_id, name, content, created_at
		FROM checkpoints
		WHERE document_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query checkpoints: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var checkpoints []*models.Checkpoint

	for rows.Next() {
		cp := &models.Checkpoint{}
		if err := rows.Scan(
			&cp.ID,
			&cp.DocumentID,
			&cp.Name,
			&cp.Content,
			&cp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, cp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return checkpoints, nil
}

// GetCheckpoint retrieves a checkpoint by ID
func (s *Storage) GetCheckpoint(ctx context.Context, checkpointID string) (*models.Checkpoint, error) {
	query := `
		SELECT id, document_id, name, content, created_at
		FROM checkpoints
		WHERE id = ?
	`

	cp := &models.Checkpoint{}

	err := s.db.QueryRowContext(ctx, query, checkpointID).Scan(
		&cp.ID,
		&cp.DocumentID,
		&cp.Name,
		&cp.Content,
		&cp.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	return cp, nil
}
