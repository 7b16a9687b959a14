package autosave

import "time"

// Дефолтные значения конфигурации автосохранения
const (
	// DefaultDebounce задержка перед автосохранением после последней правки
	DefaultDebounce = 2 * time.Second
	// DefaultMaxRetryAttempts лимит повторов для generic-ошибок
	DefaultMaxRetryAttempts = 3
	// DefaultTimeout таймаут одной попытки сохранения
	DefaultTimeout = 30 * time.Second
	// DefaultBackupInterval интервал принудительного локального бэкапа
	DefaultBackupInterval = 30 * time.Second
)

const (
	// networkRetryCeiling жесткий потолок повторов для network-ошибок
	networkRetryCeiling = 5

	// autoSaveCooldown период отключения автосохранения после серии сбоев (circuit breaker)
	autoSaveCooldown = 5 * time.Minute

	// pendingFollowUpDelay задержка follow-up сохранения после coalesced-записи
	pendingFollowUpDelay = time.Second

	// backupMaxAge максимальный возраст бэкапа, пригодного для восстановления
	backupMaxAge = 24 * time.Hour

	// opportunisticBackupChance вероятность фонового бэкапа на событие правки
	opportunisticBackupChance = 0.1
)

// Config содержит настройки менеджера автосохранения.
// Нулевые поля заменяются дефолтами в NewManager
type Config struct {
	// Clock источник времени и таймеров; nil означает системные часы
	Clock Clock

	// RetryDelays расписание задержек повторов; последний элемент повторяется
	// когда номер попытки выходит за границы таблицы
	RetryDelays []time.Duration

	// Debounce задержка автосохранения после последней правки
	Debounce time.Duration

	// Timeout таймаут одной попытки сохранения
	Timeout time.Duration

	// BackupInterval интервал принудительного бэкапа
	BackupInterval time.Duration

	// MaxRetryAttempts лимит повторов для generic-ошибок
	MaxRetryAttempts int
}

// withDefaults возвращает копию конфига с заполненными дефолтами
func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.MaxRetryAttempts <= 0 {
		c.MaxRetryAttempts = DefaultMaxRetryAttempts
	}
	if len(c.RetryDelays) == 0 {
		c.RetryDelays = []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second}
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.BackupInterval <= 0 {
		c.BackupInterval = DefaultBackupInterval
	}
	if c.Clock == nil {
		c.Clock = SystemClock()
	}
	return c
}

// retryDelay возвращает задержку для попытки attempt.
// Попытки за пределами таблицы используют последний элемент
func (c Config) retryDelay(attempt int) time.Duration {
	if attempt >= len(c.RetryDelays) {
		return c.RetryDelays[len(c.RetryDelays)-1]
	}
	return c.RetryDelays[attempt]
}
