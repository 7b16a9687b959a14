// Package navigation управляет фоновыми задачами сеанса редактирования:
// периодической пробой соединения, периодическим локальным бэкапом и
// финальным бэкапом при выходе. Аналог обработчиков beforeunload/online/offline
// браузерного редактора
package navigation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/draftkeeper/internal/autosave"
)

const (
	defaultConnectivityInterval = 5 * time.Second
	defaultBackupInterval       = 30 * time.Second
	probeTimeout                = 3 * time.Second
)

// Callbacks связывают фоновые задачи с движком автосохранения
type Callbacks struct {
	// HasUnsavedChanges сообщает, есть ли несохраненные правки
	HasUnsavedChanges func() bool

	// Backup снимает локальный бэкап текущего контента
	Backup func()

	// Save запускает сохранение; fromKeyboard true для явной команды пользователя
	Save func(fromKeyboard bool)

	// NetworkChange сообщает движку текущий статус соединения
	NetworkChange func(online bool)
}

// Probe проверяет доступность сервера; nil означает "онлайн"
type Probe func(ctx context.Context) error

// Config параметры менеджера; нулевые значения заменяются дефолтами
type Config struct {
	Clock                autosave.Clock
	ConnectivityInterval time.Duration
	BackupInterval       time.Duration
}

// Manager запускает и останавливает фоновые задачи сеанса
type Manager struct {
	callbacks Callbacks
	probe     Probe
	clock     autosave.Clock
	logger    *slog.Logger

	connectivityInterval time.Duration
	backupInterval       time.Duration

	mu          sync.Mutex
	running     bool
	connTimer   autosave.Timer
	backupTimer autosave.Timer
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewManager создает менеджер фоновых задач
func NewManager(cfg Config, callbacks Callbacks, probe Probe, logger *slog.Logger) *Manager {
	clock := cfg.Clock
	if clock == nil {
		clock = autosave.SystemClock()
	}
	connectivityInterval := cfg.ConnectivityInterval
	if connectivityInterval == 0 {
		connectivityInterval = defaultConnectivityInterval
	}
	backupInterval := cfg.BackupInterval
	if backupInterval == 0 {
		backupInterval = defaultBackupInterval
	}

	return &Manager{
		callbacks:            callbacks,
		probe:                probe,
		clock:                clock,
		logger:               logger,
		connectivityInterval: connectivityInterval,
		backupInterval:       backupInterval,
	}
}

// Setup запускает периодические задачи. Повторный вызов без Cleanup — no-op
func (m *Manager) Setup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.connTimer = m.clock.AfterFunc(m.connectivityInterval, m.connectivityTick)
	m.backupTimer = m.clock.AfterFunc(m.backupInterval, m.backupTick)
}

// Cleanup останавливает задачи. Несохраненные правки бэкапятся напоследок —
// аналог beforeunload. Повторный вызов безопасен
func (m *Manager) Cleanup() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	if m.connTimer != nil {
		m.connTimer.Stop()
	}
	if m.backupTimer != nil {
		m.backupTimer.Stop()
	}
	m.cancel()
	m.mu.Unlock()

	if m.callbacks.HasUnsavedChanges != nil && m.callbacks.HasUnsavedChanges() {
		m.logger.Debug("unsaved changes at shutdown, taking final backup")
		if m.callbacks.Backup != nil {
			m.callbacks.Backup()
		}
	}
}

// RequestSave передает явную команду сохранения (аналог Ctrl+S)
func (m *Manager) RequestSave() {
	if m.callbacks.Save != nil {
		m.callbacks.Save(true)
	}
}

// connectivityTick пробует сервер и сообщает движку результат
func (m *Manager) connectivityTick() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	ctx := m.ctx
	m.mu.Unlock()

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := m.probe(probeCtx)
	cancel()

	if ctx.Err() == nil && m.callbacks.NetworkChange != nil {
		m.callbacks.NetworkChange(err == nil)
	}

	m.reschedule(&m.connTimer, m.connectivityInterval, m.connectivityTick)
}

// backupTick снимает бэкап, если есть несохраненные правки
func (m *Manager) backupTick() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if m.callbacks.HasUnsavedChanges != nil && m.callbacks.HasUnsavedChanges() {
		if m.callbacks.Backup != nil {
			m.callbacks.Backup()
		}
	}

	m.reschedule(&m.backupTimer, m.backupInterval, m.backupTick)
}

func (m *Manager) reschedule(timer *autosave.Timer, d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	*timer = m.clock.AfterFunc(d, f)
}
