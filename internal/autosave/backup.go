package autosave

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

//go:generate moq -out blobstore_mock.go . BlobStore

// BlobStore определяет интерфейс локального durable-хранилища для бэкапа.
// Отсутствующий ключ возвращается как (nil, nil), а не ошибка
type BlobStore interface {
	// Get возвращает значение по ключу; (nil, nil) если ключ отсутствует
	Get(ctx context.Context, key string) ([]byte, error)

	// Put сохраняет значение по ключу, перезаписывая существующее
	Put(ctx context.Context, key string, value []byte) error

	// Delete удаляет ключ; отсутствие ключа не является ошибкой
	Delete(ctx context.Context, key string) error
}

// backupKey единственный слот бэкапа на клиента (не на документ).
// Переключение документа обрабатывается проверкой DocumentID, а не отдельными слотами
const backupKey = "draftkeeper_backup"

// BackupData снимок несохраненного контента для восстановления после сбоя
type BackupData struct {
	Content    string `json:"content"`     // сериализованный снимок черновика
	DocumentID string `json:"document_id"` // документ, которому принадлежит снимок
	VersionID  string `json:"version_id"`  // активная версия (checkpoint) на момент снимка
	Title      string `json:"title"`       // название документа
	Timestamp  int64  `json:"timestamp"`   // unix millis создания снимка
}

// LocalBackupManager хранит единственный best-effort снимок контента.
// Ошибки хранилища логируются и проглатываются: бэкап никогда не должен
// блокировать или ронять основной путь сохранения
type LocalBackupManager struct {
	store  BlobStore
	clock  Clock
	logger *slog.Logger
}

// NewLocalBackupManager creates a backup manager over the given blob store.
// clock может быть nil — тогда используются системные часы
func NewLocalBackupManager(store BlobStore, clock Clock, logger *slog.Logger) *LocalBackupManager {
	if clock == nil {
		clock = SystemClock()
	}
	return &LocalBackupManager{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Backup безусловно перезаписывает слот свежим снимком
func (b *LocalBackupManager) Backup(ctx context.Context, content, documentID, versionID, title string) {
	data := BackupData{
		Content:    content,
		Timestamp:  b.clock.Now().UnixMilli(),
		DocumentID: documentID,
		VersionID:  versionID,
		Title:      title,
	}

	raw, err := json.Marshal(data)
	if err != nil {
		b.logger.Warn("local backup failed", "error", err)
		return
	}

	if err := b.store.Put(ctx, backupKey, raw); err != nil {
		b.logger.Warn("local backup failed", "error", err)
	}
}

// CheckForBackup возвращает сохраненный снимок только если он существует,
// парсится, моложе 24 часов и помечен тем же documentID.
// Устаревшие и чужие снимки молча отбрасываются
func (b *LocalBackupManager) CheckForBackup(ctx context.Context, documentID string) *BackupData {
	raw, err := b.store.Get(ctx, backupKey)
	if err != nil {
		b.logger.Warn("backup recovery failed", "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}

	var data BackupData
	if err := json.Unmarshal(raw, &data); err != nil {
		b.logger.Warn("backup recovery failed", "error", err)
		return nil
	}

	age := b.clock.Now().Sub(time.UnixMilli(data.Timestamp))
	if age >= backupMaxAge || data.DocumentID != documentID {
		return nil
	}

	return &data
}

// Peek возвращает снимок слота без привязки к документу (для строки статуса).
// Фильтрует только по возрасту; владельца определяет вызывающий по DocumentID
func (b *LocalBackupManager) Peek(ctx context.Context) *BackupData {
	raw, err := b.store.Get(ctx, backupKey)
	if err != nil || raw == nil {
		return nil
	}

	var data BackupData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}

	if b.clock.Now().Sub(time.UnixMilli(data.Timestamp)) >= backupMaxAge {
		return nil
	}

	return &data
}

// ClearBackup удаляет слот; толерантен к отсутствию
func (b *LocalBackupManager) ClearBackup(ctx context.Context) {
	if err := b.store.Delete(ctx, backupKey); err != nil {
		b.logger.Warn("failed to clear backup", "error", err)
	}
}
