package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/draftkeeper/internal/models"
	"github.com/iudanet/draftkeeper/internal/server/storage"
	"github.com/iudanet/draftkeeper/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// mockDocumentStorage is a mock implementation of DocumentStorage for testing
type mockDocumentStorage struct {
	docs map[string]*models.Document // documentID -> Document
}

func (m *mockDocumentStorage) CreateDocument(ctx context.Context, doc *models.Document) error {
	if m.docs == nil {
		m.docs = map[string]*models.Document{}
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockDocumentStorage) GetDocument(ctx context.Context, userID, documentID string) (*models.Document, error) {
	doc, ok := m.docs[documentID]
	if !ok || doc.UserID != userID {
		return nil, storage.ErrDocumentNotFound
	}
	return doc, nil
}

func (m *mockDocumentStorage) ListDocuments(ctx context.Context, userID string) ([]*models.Document, error) {
	var docs []*models.Document
	for _, doc := range m.docs {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (m *mockDocumentStorage) SaveDraft(ctx context.Context, userID, documentID, content, versionToken, newToken string) error {
	doc, ok := m.docs[documentID]
	if !ok || doc.UserID != userID {
		return storage.ErrDocumentNotFound
	}
	if doc.VersionToken != versionToken {
		return storage.ErrVersionConflict
	}
	doc.Content = content
	doc.VersionToken = newToken
	doc.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *mockDocumentStorage) DeleteDocument(ctx context.Context, userID, documentID string) error {
	doc, ok := m.docs[documentID]
	if !ok || doc.UserID != userID {
		return storage.ErrDocumentNotFound
	}
	delete(m.docs, documentID)
	return nil
}

// mockCheckpointStorage is a mock implementation of CheckpointStorage for testing
type mockCheckpointStorage struct {
	checkpoints []*models.Checkpoint
}

func (m *mockCheckpointStorage) CreateCheckpoint(ctx context.Context, cp *models.Checkpoint) error {
	m.checkpoints = append(m.checkpoints, cp)
	return nil
}

func (m *mockCheckpointStorage) ListCheckpoints(ctx context.Context, documentID string) ([]*models.Checkpoint, error) {
	var out []*models.Checkpoint
	for _, cp := range m.checkpoints {
		if cp.DocumentID == documentID {
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *mockCheckpointStorage) GetCheckpoint(ctx context.Context, checkpointID string) (*models.Checkpoint, error) {
	for _, cp := range m.checkpoints {
		if cp.ID == checkpointID {
			return cp, nil
		}
	}
	return nil, storage.ErrCheckpointNotFound
}

func authedRequest(method, target string, body []byte, userID string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), UserIDKey, userID)
	ctx = context.WithValue(ctx, UsernameKey, "writer1")
	return req.WithContext(ctx)
}

func newDocumentsHandler() (*DocumentsHandler, *mockDocumentStorage, *mockCheckpointStorage) {
	docs := &mockDocumentStorage{docs: map[string]*models.Document{}}
	checkpoints := &mockCheckpointStorage{}
	return NewDocumentsHandler(testLogger(), docs, checkpoints), docs, checkpoints
}

func seedDocument(docs *mockDocumentStorage, userID string) *models.Document {
	doc := &models.Document{
		ID:           "doc-1",
		UserID:       userID,
		Title:        "My Essay",
		Content:      "server copy",
		VersionToken: "token-1",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	docs.docs[doc.ID] = doc
	return doc
}

func TestDocumentsHandler_Create(t *testing.T) {
	h, docs, _ := newDocumentsHandler()

	body, _ := json.Marshal(api.CreateDocumentRequest{Title: "My Essay"})
	req := authedRequest(http.MethodPost, "/api/v1/documents", body, "u1")
	w := httptest.NewRecorder()
	h.Create(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp api.DocumentResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "My Essay", resp.Title)
	assert.NotEmpty(t, resp.ID)
	assert.NotEmpty(t, resp.VersionToken)
	assert.Contains(t, docs.docs, resp.ID)
}

func TestDocumentsHandler_Create_InvalidTitle(t *testing.T) {
	h, _, _ := newDocumentsHandler()

	body, _ := json.Marshal(api.CreateDocumentRequest{Title: "   "})
	req := authedRequest(http.MethodPost, "/api/v1/documents", body, "u1")
	w := httptest.NewRecorder()
	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentsHandler_Create_Unauthenticated(t *testing.T) {
	h, _, _ := newDocumentsHandler()

	body, _ := json.Marshal(api.CreateDocumentRequest{Title: "My Essay"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDocumentsHandler_Get(t *testing.T) {
	h, docs, _ := newDocumentsHandler()
	seedDocument(docs, "u1")

	req := authedRequest(http.MethodGet, "/api/v1/documents/doc-1", nil, "u1")
	req.SetPathValue("id", "doc-1")
	w := httptest.NewRecorder()
	h.Get(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.DocumentResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "server copy", resp.Content)
	assert.Equal(t, "token-1", resp.VersionToken)
}

func TestDocumentsHandler_Get_OtherUser(t *testing.T) {
	h, docs, _ := newDocumentsHandler()
	seedDocument(docs, "u1")

	req := authedRequest(http.MethodGet, "/api/v1/documents/doc-1", nil, "u2")
	req.SetPathValue("id", "doc-1")
	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentsHandler_SaveDraft(t *testing.T) {
	h, docs, _ := newDocumentsHandler()
	seedDocument(docs, "u1")

	body, _ := json.Marshal(api.SaveDraftRequest{Content: "new draft", VersionToken: "token-1"})
	req := authedRequest(http.MethodPut, "/api/v1/documents/doc-1/draft", body, "u1")
	req.SetPathValue("id", "doc-1")
	w := httptest.NewRecorder()
	h.SaveDraft(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.SaveDraftResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.VersionToken)
	assert.NotEqual(t, "token-1", resp.VersionToken)

	assert.Equal(t, "new draft", docs.docs["doc-1"].Content)
	assert.Equal(t, resp.VersionToken, docs.docs["doc-1"].VersionToken)
}

func TestDocumentsHandler_SaveDraft_Conflict(t *testing.T) {
	h, docs, _ := newDocumentsHandler()
	doc := seedDocument(docs, "u1")

	body, _ := json.Marshal(api.SaveDraftRequest{Content: "stale write", VersionToken: "stale-token"})
	req := authedRequest(http.MethodPut, "/api/v1/documents/doc-1/draft", body, "u1")
	req.SetPathValue("id", "doc-1")
	w := httptest.NewRecorder()
	h.SaveDraft(w, req)

	require.Equal(t, http.StatusConflict, w.Code)

	// 409 несет серверную сторону конфликта
	var conflict api.ConflictResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&conflict))
	assert.Equal(t, "server copy", conflict.ServerContent)
	assert.Equal(t, "token-1", conflict.VersionToken)

	// Серверный контент не затерт
	assert.Equal(t, "server copy", doc.Content)
}

func TestDocumentsHandler_SaveDraft_MissingToken(t *testing.T) {
	h, docs, _ := newDocumentsHandler()
	seedDocument(docs, "u1")

	body, _ := json.Marshal(api.SaveDraftRequest{Content: "draft"})
	req := authedRequest(http.MethodPut, "/api/v1/documents/doc-1/draft", body, "u1")
	req.SetPathValue("id", "doc-1")
	w := httptest.NewRecorder()
	h.SaveDraft(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentsHandler_SaveDraft_NotFound(t *testing.T) {
	h, _, _ := newDocumentsHandler()

	body, _ := json.Marshal(api.SaveDraftRequest{Content: "draft", VersionToken: "t"})
	req := authedRequest(http.MethodPut, "/api/v1/documents/nosuch/draft", body, "u1")
	req.SetPathValue("id", "nosuch")
	w := httptest.NewRecorder()
	h.SaveDraft(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentsHandler_Delete(t *testing.T) {
	h, docs, _ := newDocumentsHandler()
	seedDocument(docs, "u1")

	req := authedRequest(http.MethodDelete, "/api/v1/documents/doc-1", nil, "u1")
	req.SetPathValue("id", "doc-1")
	w := httptest.NewRecorder()
	h.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, docs.docs)
}

func TestDocumentsHandler_Checkpoints(t *testing.T) {
	h, docs, checkpoints := newDocumentsHandler()
	seedDocument(docs, "u1")

	body, _ := json.Marshal(api.CreateCheckpointRequest{Name: "draft-1"})
	req := authedRequest(http.MethodPost, "/api/v1/documents/doc-1/checkpoints", body, "u1")
	req.SetPathValue("id", "doc-1")
	w := httptest.NewRecorder()
	h.CreateCheckpoint(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, checkpoints.checkpoints, 1)
	// Снапшот фиксирует текущий серверный контент
	assert.Equal(t, "server copy", checkpoints.checkpoints[0].Content)

	listReq := authedRequest(http.MethodGet, "/api/v1/documents/doc-1/checkpoints", nil, "u1")
	listReq.SetPathValue("id", "doc-1")
	listW := httptest.NewRecorder()
	h.ListCheckpoints(listW, listReq)

	require.Equal(t, http.StatusOK, listW.Code)

	var resp api.CheckpointListResponse
	require.NoError(t, json.NewDecoder(listW.Body).Decode(&resp))
	require.Len(t, resp.Checkpoints, 1)
	assert.Equal(t, "draft-1", resp.Checkpoints[0].Name)
}

func TestDocumentsHandler_CreateCheckpoint_InvalidName(t *testing.T) {
	h, docs, _ := newDocumentsHandler()
	seedDocument(docs, "u1")

	body, _ := json.Marshal(api.CreateCheckpointRequest{Name: "has space"})
	req := authedRequest(http.MethodPost, "/api/v1/documents/doc-1/checkpoints", body, "u1")
	req.SetPathValue("id", "doc-1")
	w := httptest.NewRecorder()
	h.CreateCheckpoint(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
