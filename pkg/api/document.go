package api

import "time"

// CreateDocumentRequest представляет запрос на создание документа
type CreateDocumentRequest struct {
	Title string `json:"title"` // название документа
}

// DocumentResponse представляет документ в ответах сервера
type DocumentResponse struct {
	ID           string    `json:"id"`            // UUID документа
	Title        string    `json:"title"`         // название
	Content      string    `json:"content"`       // текущий черновик
	VersionToken string    `json:"version_token"` // токен версии черновика
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DocumentListResponse представляет список документов пользователя
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// CreateCheckpointRequest представляет запрос на именованный снапшот черновика
type CreateCheckpointRequest struct {
	Name string `json:"name"` // имя снапшота, например "draft-1"
}

// CheckpointResponse представляет снапшот документа
type CheckpointResponse struct {
	ID         string    `json:"id"`          // UUID снапшота
	DocumentID string    `json:"document_id"` // документ-владелец
	Name       string    `json:"name"`        // имя снапшота
	Content    string    `json:"content"`     // контент на момент снапшота
	CreatedAt  time.Time `json:"created_at"`
}

// CheckpointListResponse представляет список снапшотов документа
type CheckpointListResponse struct {
	Checkpoints []CheckpointResponse `json:"checkpoints"`
}
