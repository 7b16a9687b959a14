package models

import "time"

// Document представляет документ (эссе) пользователя.
// Content — текущий черновик; VersionToken меняется при каждой принятой записи
// и служит precondition'ом для optimistic concurrency при сохранении
type Document struct {
	ID           string    `json:"id"`            // UUID документа
	UserID       string    `json:"user_id"`       // владелец
	Title        string    `json:"title"`         // название
	Content      string    `json:"content"`       // текущий черновик
	VersionToken string    `json:"version_token"` // токен версии черновика
	CreatedAt    time.Time `json:"created_at"`    // время создания
	UpdatedAt    time.Time `json:"updated_at"`    // время последней принятой записи
}

// Checkpoint представляет именованный снапшот черновика документа
type Checkpoint struct {
	ID         string    `json:"id"`          // UUID снапшота
	DocumentID string    `json:"document_id"` // документ-владелец
	Name       string    `json:"name"`        // имя снапшота
	Content    string    `json:"content"`     // контент на момент снапшота
	CreatedAt  time.Time `json:"created_at"`  // время создания
}
