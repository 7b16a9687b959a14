package autosave

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"
)

//go:generate moq -out saver_mock.go . Saver
//go:generate moq -out notifier_mock.go . Notifier

// Saver выполняет фактическую сетевую персистентность черновика.
// Реализация обязана помечать исход типизированно: успех — SaveResult,
// конфликт версий — *Error с KindConflict и payload'ом расхождения,
// прочие сбои — *Error с соответствующим Kind
type Saver interface {
	Save(ctx context.Context, content, versionToken string) (*SaveResult, error)
}

// SaveResult результат успешного сохранения
type SaveResult struct {
	// VersionToken новый токен версии, выданный сервером
	VersionToken string
}

// Severity важность уведомления
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Action единственная интерактивная кнопка уведомления
type Action struct {
	Invoke func()
	Label  string
}

// NotifyOptions дополнительные параметры уведомления
type NotifyOptions struct {
	Action   *Action
	Duration time.Duration
}

// Notifier приемник пользовательских уведомлений
type Notifier interface {
	Notify(message string, severity Severity, opts *NotifyOptions)
}

// ContentSource поставляет сериализованный контент редактора.
// Ядро не знает модель документа — только ее сериализацию
type ContentSource interface {
	// Snapshot возвращает сериализованный снимок текущего контента
	Snapshot() string

	// PlainText возвращает текстовое содержимое (для проверки пустого документа)
	PlainText() string

	// Restore заменяет контент редактора (восстановление из бэкапа)
	Restore(content string) error
}

// Hooks колбэки эскалации, восстановление по которым вне полномочий ядра
type Hooks struct {
	// OnConflict вызывается когда сервер сообщил о расхождении версий
	OnConflict func(data any)

	// OnAuthError вызывается при отказе по учетным данным
	OnAuthError func()
}

// Manager оркестратор автосохранения: машина состояний, debounce,
// retry/backoff, offline-обработка, подавление конкурентных сохранений,
// circuit breaker и координация локального бэкапа
type Manager struct {
	clock    Clock
	saver    Saver
	notifier Notifier
	backup   *LocalBackupManager
	logger   *slog.Logger
	queue    *SaveQueue

	src  ContentSource
	subs map[int]func(State)

	saveTimer     Timer
	retryTimer    Timer
	cooldownTimer Timer
	pendingTimer  Timer

	randFloat func() float64

	documentID   string
	versionID    string
	title        string
	versionToken string
	savedContent string
	// pendingContent последний контент, зафиксированный во время in-flight
	// сохранения; single-slot, last-write-wins
	pendingContent string

	hooks Hooks
	cfg   Config
	state State

	mu        sync.Mutex
	nextSubID int

	initialized     bool
	autoSaveEnabled bool
	hasPending      bool
	closed          bool
}

// NewManager creates an autosave manager.
// Менеджер ничего не делает до вызова Initialize
func NewManager(cfg Config, saver Saver, notifier Notifier, backup *LocalBackupManager, hooks Hooks, logger *slog.Logger) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		cfg:      cfg,
		clock:    cfg.Clock,
		saver:    saver,
		notifier: notifier,
		backup:   backup,
		hooks:    hooks,
		logger:   logger,
		queue:    NewSaveQueue(logger),
		state: State{
			Status:        StatusSaved,
			LastSavedTime: cfg.Clock.Now(),
			IsOnline:      true,
		},
		autoSaveEnabled: true,
		randFloat:       rand.Float64,
	}
}

// Queue возвращает FIFO-сериализатор для вызывающих, которым нужна строгая
// сериализация сохранений сверх собственного in-flight guard'а менеджера
func (m *Manager) Queue() *SaveQueue {
	return m.queue
}

// Initialize привязывает менеджер к документу. initialContent считается уже
// сохраненным на сервере. Если найден свежий бэкап этого документа,
// пользователю предлагается восстановление через уведомление
func (m *Manager) Initialize(src ContentSource, initialContent, documentID, versionToken string) {
	m.mu.Lock()
	m.src = src
	m.savedContent = initialContent
	m.documentID = documentID
	m.versionToken = versionToken
	m.initialized = true
	m.mu.Unlock()

	backup := m.backup.CheckForBackup(context.Background(), documentID)
	if backup == nil {
		return
	}

	content := backup.Content
	m.notifier.Notify(
		"Found unsaved changes from previous session. Click to restore.",
		SeverityInfo,
		&NotifyOptions{
			Duration: 10 * time.Second,
			Action: &Action{
				Label: "Restore",
				Invoke: func() {
					if err := src.Restore(content); err != nil {
						m.logger.Warn("failed to restore backup", "error", err)
						return
					}
					m.backup.ClearBackup(context.Background())
					m.notifier.Notify("Previous session restored", SeveritySuccess, nil)
					// Восстановленный контент отличается от savedContent и должен
					// пройти обычный путь сохранения, иначе он живет только в редакторе
					m.OnContentChange()
				},
			},
		},
	)
}

// SetDraftMeta обновляет метаданные, попадающие в локальный бэкап
func (m *Manager) SetDraftMeta(versionID, title string) {
	m.mu.Lock()
	m.versionID = versionID
	m.title = title
	m.mu.Unlock()
}

// OnContentChange вызывается редактором на каждую правку: пересчитывает
// dirty-состояние, перевзводит debounce-таймер и с небольшой вероятностью
// делает фоновый бэкап (дешевая страховка, не привязанная к машине состояний)
func (m *Manager) OnContentChange() {
	m.mu.Lock()
	if !m.initialized || m.closed {
		m.mu.Unlock()
		return
	}
	m.state.HasUnsavedChanges = m.checkUnsavedChangesLocked()
	st, subs := m.snapshotLocked()
	m.mu.Unlock()
	publish(st, subs)

	m.debouncedAutoSave()

	if m.randFloat() < opportunisticBackupChance {
		m.CreateBackup()
	}
}

// ManualSave сохраняет немедленно, минуя debounce. Требует соединения и
// фактических отличий; при их отсутствии ограничивается уведомлением
func (m *Manager) ManualSave(fromKeyboard bool) {
	m.mu.Lock()
	if !m.initialized || m.closed {
		m.mu.Unlock()
		m.notifier.Notify("Editor not ready", SeverityError, nil)
		return
	}
	online := m.state.IsOnline
	hasChanges := m.checkUnsavedChangesLocked()
	if online && hasChanges {
		m.clearTimersLocked()
	}
	m.mu.Unlock()

	if !online {
		m.notifier.Notify("Cannot save while offline", SeverityError, nil)
		return
	}
	if !hasChanges {
		if !fromKeyboard {
			m.notifier.Notify("No changes to save", SeverityInfo, nil)
		}
		return
	}

	m.saveToServer(false, 0)
}

// SetOnlineStatus обновляет известное состояние соединения.
// Потеря соединения немедленно переводит в offline даже посреди retry;
// восстановление с несохраненными правками возобновляет путь сохранения.
// Повторные сигналы без смены состояния игнорируются
func (m *Manager) SetOnlineStatus(online bool) {
	m.mu.Lock()
	if m.closed || m.state.IsOnline == online {
		m.mu.Unlock()
		return
	}
	m.state.IsOnline = online
	resume := online && m.state.HasUnsavedChanges
	if !online {
		m.state.Status = StatusOffline
	}
	st, subs := m.snapshotLocked()
	m.mu.Unlock()
	publish(st, subs)

	if resume {
		m.notifier.Notify("Back online - resuming auto-save", SeverityInfo, nil)
		m.debouncedAutoSave()
	} else if !online {
		m.notifier.Notify("Offline - changes will be saved when reconnected", SeverityError, nil)
	}
}

// CreateBackup снимает локальный бэкап текущего контента
func (m *Manager) CreateBackup() {
	m.mu.Lock()
	if !m.initialized || m.closed {
		m.mu.Unlock()
		return
	}
	content := m.src.Snapshot()
	docID, verID, title := m.documentID, m.versionID, m.title
	m.mu.Unlock()

	m.backup.Backup(context.Background(), content, docID, verID, title)
}

// Cleanup останавливает все таймеры и отбрасывает не начатые операции очереди.
// Безопасен для повторных вызовов; in-flight сохранение после teardown
// не мутирует состояние
func (m *Manager) Cleanup() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.clearTimersLocked()
	if m.cooldownTimer != nil {
		m.cooldownTimer.Stop()
		m.cooldownTimer = nil
	}
	if m.pendingTimer != nil {
		m.pendingTimer.Stop()
		m.pendingTimer = nil
	}
	m.mu.Unlock()

	m.queue.Clear()
}

// checkUnsavedChangesLocked сверяет текущую сериализацию с последней
// сохраненной. Пустой живой документ против пустого сохраненного снимка
// не считается правкой (защита от false-dirty на свежем пустом документе)
func (m *Manager) checkUnsavedChangesLocked() bool {
	if !m.initialized {
		return false
	}
	current := m.src.Snapshot()
	if current == m.savedContent || current == "" {
		return false
	}
	if strings.TrimSpace(m.src.PlainText()) == "" && m.savedContent == "" {
		return false
	}
	return true
}

// debouncedAutoSave перевзводит debounce-таймер. Всегда жив не более одного
// таймера: предыдущий снимается перед взведением нового, так что сохранение
// вызывает только последнее срабатывание
func (m *Manager) debouncedAutoSave() {
	m.mu.Lock()
	if !m.autoSaveEnabled || !m.initialized || m.closed {
		m.mu.Unlock()
		return
	}

	hasChanges := m.checkUnsavedChangesLocked()
	m.state.HasUnsavedChanges = hasChanges

	if hasChanges {
		// Статус регрессирует только из saved: error/retrying/offline
		// держатся до исхода следующей попытки сохранения
		if m.state.Status == StatusSaved {
			m.state.Status = StatusUnsaved
		}
		m.clearTimersLocked()

		if !m.state.IsOnline {
			m.state.Status = StatusOffline
			st, subs := m.snapshotLocked()
			m.mu.Unlock()
			publish(st, subs)
			return
		}

		m.saveTimer = m.clock.AfterFunc(m.cfg.Debounce, func() {
			m.saveToServer(false, 0)
		})
	} else {
		if m.state.Status == StatusUnsaved {
			m.state.Status = StatusSaved
		}
		m.state.ConsecutiveFailures = 0
	}

	st, subs := m.snapshotLocked()
	m.mu.Unlock()
	publish(st, subs)
}

// saveToServer выполняет одну попытку сохранения. attempt нумерует повторы
// (0 — первичная попытка); isRetry взводится только retry-таймером
func (m *Manager) saveToServer(isRetry bool, attempt int) {
	m.mu.Lock()
	if !m.initialized || m.closed {
		m.mu.Unlock()
		return
	}

	// Guard от конкурентных сохранений: второй запрос во время in-flight
	// не порождает сетевой вызов, а фиксирует последний контент в pending-слот
	if m.state.IsSaveInProgress && !isRetry {
		m.pendingContent = m.src.Snapshot()
		m.hasPending = true
		m.mu.Unlock()
		return
	}

	if !m.checkUnsavedChangesLocked() {
		m.state.Status = StatusSaved
		st, subs := m.snapshotLocked()
		m.mu.Unlock()
		publish(st, subs)
		return
	}

	if !m.state.IsOnline {
		m.state.Status = StatusOffline
		st, subs := m.snapshotLocked()
		m.mu.Unlock()
		publish(st, subs)
		return
	}

	m.state.IsSaveInProgress = true
	if isRetry {
		m.state.Status = StatusRetrying
	} else {
		m.state.Status = StatusSaving
	}
	content := m.src.Snapshot()
	token := m.versionToken
	timeout := m.cfg.Timeout
	st, subs := m.snapshotLocked()
	m.mu.Unlock()
	publish(st, subs)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	res, err := m.saver.Save(ctx, content, token)
	cancel()

	m.mu.Lock()
	if m.closed {
		// Teardown произошел во время сетевого вызова
		m.mu.Unlock()
		return
	}
	m.state.IsSaveInProgress = false

	if err != nil {
		m.finishFailure(err, isRetry, attempt)
		return
	}
	m.finishSuccess(res, content, isRetry, attempt)
}

// finishSuccess завершает успешную попытку. Вызывается под m.mu и освобождает его
func (m *Manager) finishSuccess(res *SaveResult, content string, isRetry bool, attempt int) {
	m.savedContent = content
	if res != nil && res.VersionToken != "" {
		m.versionToken = res.VersionToken
	}
	m.state.Status = StatusSaved
	m.state.LastSavedTime = m.clock.Now()
	m.state.ConsecutiveFailures = 0
	m.state.HasUnsavedChanges = false
	m.clearTimersLocked()
	m.handlePendingLocked(content)
	docID := m.documentID
	st, subs := m.snapshotLocked()
	m.mu.Unlock()
	publish(st, subs)

	m.backup.ClearBackup(context.Background())
	m.logger.Debug("content saved", "document_id", docID, "attempt", attempt)

	if isRetry || attempt > 0 {
		m.notifier.Notify("Content saved successfully", SeveritySuccess, nil)
	}
}

// handlePendingLocked сверяет pending-контент с только что сохраненным.
// Слот одиночный: при наложении нескольких правок на одно in-flight
// сохранение выигрывает последняя (last-write-wins)
func (m *Manager) handlePendingLocked(saved string) {
	if !m.hasPending {
		return
	}
	m.hasPending = false
	pending := m.pendingContent
	m.pendingContent = ""
	if pending == saved {
		return
	}
	m.pendingTimer = m.clock.AfterFunc(pendingFollowUpDelay, func() {
		m.saveToServer(false, 0)
	})
}

// finishFailure разбирает ошибку попытки. Вызывается под m.mu и освобождает его
func (m *Manager) finishFailure(err error, isRetry bool, attempt int) {
	kind := Classify(err)

	if kind == KindConflict {
		// Конфликт не повторяется и не считается сбоем транспорта:
		// разрешение делегируется приложению
		m.state.Status = StatusConflict
		payload := ConflictPayload(err)
		docID := m.documentID
		st, subs := m.snapshotLocked()
		m.mu.Unlock()
		publish(st, subs)

		m.logger.Warn("version conflict reported by server", "document_id", docID)
		if m.hooks.OnConflict != nil {
			m.hooks.OnConflict(payload)
		}
		return
	}

	m.state.ConsecutiveFailures++
	m.logger.Warn("save attempt failed",
		"error", err,
		"kind", string(kind),
		"attempt", attempt,
		"consecutive_failures", m.state.ConsecutiveFailures)

	var post []func()
	switch kind {
	case KindNetwork:
		if attempt < networkRetryCeiling {
			post = m.scheduleRetryLocked(attempt)
		} else {
			m.state.Status = StatusError
		}
	case KindAuth:
		m.state.Status = StatusError
		post = append(post, func() {
			m.notifier.Notify("Authentication expired. Please log in again.", SeverityError, nil)
			if m.hooks.OnAuthError != nil {
				m.hooks.OnAuthError()
			}
		})
	default:
		// Generic-политика: timeout попытки не повторяется, остальное —
		// в пределах лимита и только при живом соединении
		shouldRetry := attempt < m.cfg.MaxRetryAttempts &&
			m.state.ConsecutiveFailures <= m.cfg.MaxRetryAttempts &&
			m.state.IsOnline &&
			kind != KindTimeout
		if shouldRetry {
			post = m.scheduleRetryLocked(attempt)
		} else {
			post = m.maxRetriesReachedLocked(err)
		}
	}

	st, subs := m.snapshotLocked()
	m.mu.Unlock()
	publish(st, subs)
	for _, fn := range post {
		fn()
	}
}

// scheduleRetryLocked планирует повтор по расписанию RetryDelays.
// Уведомление показывается только на первом повторе
func (m *Manager) scheduleRetryLocked(attempt int) []func() {
	m.state.Status = StatusRetrying
	delay := m.cfg.retryDelay(attempt)
	next := attempt + 1
	m.retryTimer = m.clock.AfterFunc(delay, func() {
		m.saveToServer(true, next)
	})

	if attempt == 0 {
		return []func(){func() {
			m.notifier.Notify("Save failed, retrying...", SeverityError, nil)
		}}
	}
	return nil
}

// maxRetriesReachedLocked фиксирует окончательный сбой и при превышении
// лимита подряд идущих сбоев отключает автосохранение на период cooldown
func (m *Manager) maxRetriesReachedLocked(err error) []func() {
	m.state.Status = StatusError
	msg := fmt.Sprintf("Failed to save: %v", err)
	post := []func(){func() {
		m.notifier.Notify(msg, SeverityError, nil)
	}}

	if m.state.ConsecutiveFailures >= m.cfg.MaxRetryAttempts {
		m.autoSaveEnabled = false
		m.cooldownTimer = m.clock.AfterFunc(autoSaveCooldown, m.reenableAutoSave)
		post = append(post, func() {
			m.notifier.Notify("Auto-save disabled due to repeated failures. Use manual save.", SeverityError, nil)
		})
	}
	return post
}

// reenableAutoSave снимает circuit breaker по истечении cooldown
func (m *Manager) reenableAutoSave() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.autoSaveEnabled = true
	m.state.ConsecutiveFailures = 0
	st, subs := m.snapshotLocked()
	m.mu.Unlock()
	publish(st, subs)

	m.notifier.Notify("Auto-save re-enabled", SeverityInfo, nil)
}

// clearTimersLocked снимает debounce и retry таймеры
func (m *Manager) clearTimersLocked() {
	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}
	if m.retryTimer != nil {
		m.retryTimer.Stop()
		m.retryTimer = nil
	}
}
