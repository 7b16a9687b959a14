package api

import "time"

// SaveDraftRequest представляет запрос на сохранение черновика документа.
// VersionToken — токен версии, полученный при загрузке документа или в ответе
// на предыдущее сохранение; сервер отклоняет запись с устаревшим токеном
type SaveDraftRequest struct {
	Content      string `json:"content"`       // сериализованный контент черновика
	VersionToken string `json:"version_token"` // precondition: ожидаемая версия на сервере
}

// SaveDraftResponse представляет ответ на успешное сохранение черновика
type SaveDraftResponse struct {
	VersionToken string    `json:"version_token"` // новый токен версии
	SavedAt      time.Time `json:"saved_at"`      // серверное время записи
}

// ConflictResponse представляет тело ответа 409 при расхождении версий.
// Несет серверную сторону конфликта, чтобы клиент мог показать расхождение
// и дать пользователю выбрать
type ConflictResponse struct {
	ServerContent string    `json:"server_content"` // контент, сохраненный на сервере
	VersionToken  string    `json:"version_token"`  // актуальный токен версии сервера
	UpdatedAt     time.Time `json:"updated_at"`     // когда сервер последний раз принимал запись
	Message       string    `json:"message"`        // человекочитаемое описание
}
