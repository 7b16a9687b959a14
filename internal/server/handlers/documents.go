package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/draftkeeper/internal/models"
	"github.com/iudanet/draftkeeper/internal/server/storage"
	"github.com/iudanet/draftkeeper/internal/validation"
	"github.com/iudanet/draftkeeper/pkg/api"
)

// DocumentsHandler обрабатывает запросы к документам и их черновикам
type DocumentsHandler struct {
	logger      *slog.Logger
	documents   storage.DocumentStorage
	checkpoints storage.CheckpointStorage
}

// NewDocumentsHandler создает новый handler для документов
func NewDocumentsHandler(logger *slog.Logger, documents storage.DocumentStorage, checkpoints storage.CheckpointStorage) *DocumentsHandler {
	return &DocumentsHandler{
		logger:      logger,
		documents:   documents,
		checkpoints: checkpoints,
	}
}

// Create обрабатывает POST /api/v1/documents
// Создание нового документа с пустым черновиком
func (h *DocumentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create document request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateTitle(req.Title); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        req.Title,
		Content:      "",
		VersionToken: uuid.New().String(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.documents.CreateDocument(ctx, doc); err != nil {
		h.logger.ErrorContext(ctx, "failed to create document", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "document created",
		slog.String("document_id", doc.ID),
		slog.String("user_id", userID))

	sendJSON(h.logger, w, documentResponse(doc), http.StatusCreated)
}

// List обрабатывает GET /api/v1/documents
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	docs, err := h.documents.ListDocuments(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list documents", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.DocumentListResponse{Documents: make([]api.DocumentResponse, 0, len(docs))}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, documentResponse(doc))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Get обрабатывает GET /api/v1/documents/{id}
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	doc, err := h.documents.GetDocument(ctx, userID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			sendError(h.logger, w, "document not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get document", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, documentResponse(doc), http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/documents/{id}
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	documentID := r.PathValue("id")
	if err := h.documents.DeleteDocument(ctx, userID, documentID); err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			sendError(h.logger, w, "document not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete document", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "document deleted",
		slog.String("document_id", documentID),
		slog.String("user_id", userID))

	w.WriteHeader(http.StatusNoContent)
}

// SaveDraft обрабатывает PUT /api/v1/documents/{id}/draft
// Запись черновика с precondition по version_token: совпадение — 200 с новым
// токеном, расхождение — 409 с серверной стороной конфликта
func (h *DocumentsHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	documentID := r.PathValue("id")

	var req api.SaveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode save draft request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.VersionToken == "" {
		sendError(h.logger, w, "version_token is required", http.StatusBadRequest)
		return
	}

	newToken := uuid.New().String()

	err := h.documents.SaveDraft(ctx, userID, documentID, req.Content, req.VersionToken, newToken)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrVersionConflict):
		doc, getErr := h.documents.GetDocument(ctx, userID, documentID)
		if getErr != nil {
			h.logger.ErrorContext(ctx, "failed to load conflicting document", slog.Any("error", getErr))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}

		h.logger.WarnContext(ctx, "draft version conflict",
			slog.String("document_id", documentID),
			slog.String("user_id", userID))

		conflict := api.ConflictResponse{
			ServerContent: doc.Content,
			VersionToken:  doc.VersionToken,
			UpdatedAt:     doc.UpdatedAt,
			Message:       "document was modified elsewhere",
		}
		sendJSON(h.logger, w, conflict, http.StatusConflict)
		return
	case errors.Is(err, storage.ErrDocumentNotFound):
		sendError(h.logger, w, "document not found", http.StatusNotFound)
		return
	default:
		h.logger.ErrorContext(ctx, "failed to save draft", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.DebugContext(ctx, "draft saved",
		slog.String("document_id", documentID),
		slog.String("user_id", userID))

	resp := api.SaveDraftResponse{
		VersionToken: newToken,
		SavedAt:      time.Now().UTC(),
	}
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// CreateCheckpoint обрабатывает POST /api/v1/documents/{id}/checkpoints
// Именованный снапшот текущего черновика
func (h *DocumentsHandler) CreateCheckpoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreateCheckpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create checkpoint request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateCheckpointName(req.Name); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := h.documents.GetDocument(ctx, userID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			sendError(h.logger, w, "document not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get document", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	cp := &models.Checkpoint{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Name:       req.Name,
		Content:    doc.Content,
		CreatedAt:  time.Now().UTC(),
	}

	if err := h.checkpoints.CreateCheckpoint(ctx, cp); err != nil {
		h.logger.ErrorContext(ctx, "failed to create checkpoint", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "checkpoint created",
		slog.String("document_id", doc.ID),
		slog.String("checkpoint", req.Name))

	sendJSON(h.logger, w, checkpointResponse(cp), http.StatusCreated)
}

// ListCheckpoints обрабатывает GET /api/v1/documents/{id}/checkpoints
func (h *DocumentsHandler) ListCheckpoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Владение проверяется чтением документа
	doc, err := h.documents.GetDocument(ctx, userID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			sendError(h.logger, w, "document not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get document", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	checkpoints, err := h.checkpoints.ListCheckpoints(ctx, doc.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list checkpoints", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.CheckpointListResponse{Checkpoints: make([]api.CheckpointResponse, 0, len(checkpoints))}
	for _, cp := range checkpoints {
		resp.Checkpoints = append(resp.Checkpoints, checkpointResponse(cp))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

func documentResponse(doc *models.Document) api.DocumentResponse {
	return api.DocumentResponse{
		ID:           doc.ID,
		Title:        doc.Title,
		Content:      doc.Content,
		VersionToken: doc.VersionToken,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func checkpointResponse(cp *models.Checkpoint) api.CheckpointResponse {
	return api.CheckpointResponse{
		ID:         cp.ID,
		DocumentID: cp.DocumentID,
		Name:       cp.Name,
		Content:    cp.Content,
		CreatedAt:  cp.CreatedAt,
	}
}
