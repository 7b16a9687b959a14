package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/draftkeeper/internal/models"
	"github.com/iudanet/draftkeeper/internal/server/storage"
)

// CreateDocument creates a new document
func (s *Storage) CreateDocument(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (id, user_id, title, content, version_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Title,
		doc.Content,
		doc.VersionToken,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}

// GetDocument retrieves a document owned by userID
func (s *Storage) GetDocument(ctx context.Context, userID, documentID string) (*models.Document, error) {
	query := `
		SELECT id, user_id, title, content, version_token, created_at, updated_at
		FROM documents
		WHERE id = ? AND user_id = ?
	`

	doc := &models.Document{}

	err := s.db.QueryRowContext(ctx, query, documentID, userID).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Title,
		&doc.Content,
		&doc.VersionToken,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// ListDocuments returns all documents of a user, newest first
func (s *Storage) ListDocuments(ctx context.Context, userID string) ([]*models.Document, error) {
	query := `
		SELECT id, user_id, title, content, version_token, created_at, updated_at
		FROM documents
		WHERE user_id = ?
		ORDER BY updated_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*models.Document

	for rows.Next() {
		doc := &models.Document{}
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.Title,
			&doc.Content,
			&doc.VersionToken,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return docs, nil
}

// SaveDraft persists draft content with an optimistic concurrency check.
// Запись принимается только если version_token в БД совпадает с присланным;
// проверка и замена токена выполняются одним UPDATE, поэтому гонка двух
// писателей разрешается на уровне единственного писателя SQLite
func (s *Storage) SaveDraft(ctx context.Context, userID, documentID, content, versionToken, newToken string) error {
	query := `
		UPDATE documents
		SET content = ?, version_token = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND version_token = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		content,
		newToken,
		time.Now().UTC(),
		documentID,
		userID,
		versionToken,
	)

	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		// Либо документа нет, либо токен устарел — различаем отдельным чтением
		if _, err := s.GetDocument(ctx, userID, documentID); err != nil {
			return err
		}
		return storage.ErrVersionConflict
	}

	return nil
}

// DeleteDocument removes a document and its checkpoints
func (s *Storage) DeleteDocument(ctx context.Context, userID, documentID string) error {
	query := `DELETE FROM documents WHERE id = ? AND user_id = ?`

	result, err := s.db.ExecContext(ctx, query, documentID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrDocumentNotFound
	}

	return nil
}
