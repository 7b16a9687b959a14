package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/draftkeeper/internal/server/storage"
)

func TestDocumentStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	doc := createTestDocument(t, ctx, s, userID)

	retrieved, err := s.GetDocument(ctx, userID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, retrieved.ID)
	assert.Equal(t, doc.Title, retrieved.Title)
	assert.Equal(t, doc.Content, retrieved.Content)
	assert.Equal(t, doc.VersionToken, retrieved.VersionToken)
}

func TestDocumentStorage_GetOwnerScoped(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	otherID := createTestUser(t, ctx, s)
	doc := createTestDocument(t, ctx, s, userID)

	// Чужой документ неотличим от несуществующего
	_, err := s.GetDocument(ctx, otherID, doc.ID)
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestDocumentStorage_ListDocuments(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	otherID := createTestUser(t, ctx, s)

	createTestDocument(t, ctx, s, userID)
	createTestDocument(t, ctx, s, userID)
	createTestDocument(t, ctx, s, otherID)

	docs, err := s.ListDocuments(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	empty, err := s.ListDocuments(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDocumentStorage_SaveDraft(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	doc := createTestDocument(t, ctx, s, userID)

	newToken := uuid.New().String()
	err := s.SaveDraft(ctx, userID, doc.ID, "second draft", doc.VersionToken, newToken)
	require.NoError(t, err)

	retrieved, err := s.GetDocument(ctx, userID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "second draft", retrieved.Content)
	assert.Equal(t, newToken, retrieved.VersionToken)
}

func TestDocumentStorage_SaveDraftStaleToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	doc := createTestDocument(t, ctx, s, userID)

	// Первая запись принимается и меняет токен
	tokenA := uuid.New().String()
	require.NoError(t, s.SaveDraft(ctx, userID, doc.ID, "from tab A", doc.VersionToken, tokenA))

	// Вторая запись с исходным (теперь устаревшим) токеном отклоняется
	err := s.SaveDraft(ctx, userID, doc.ID, "from tab B", doc.VersionToken, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrVersionConflict)

	// Контент первой записи не затерт
	retrieved, err := s.GetDocument(ctx, userID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "from tab A", retrieved.Content)
	assert.Equal(t, tokenA, retrieved.VersionToken)
}

func TestDocumentStorage_SaveDraftNotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)

	err := s.SaveDraft(ctx, userID, uuid.New().String(), "content", "token", "new-token")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestDocumentStorage_DeleteDocument(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	doc := createTestDocument(t, ctx, s, userID)

	require.NoError(t, s.DeleteDocument(ctx, userID, doc.ID))

	_, err := s.GetDocument(ctx, userID, doc.ID)
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)

	err = s.DeleteDocument(ctx, userID, doc.ID)
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}
