package autosave

import "time"

// Status состояние машины сохранения
type Status string

const (
	// StatusSaved контент совпадает с последней подтвержденной записью
	StatusSaved Status = "saved"
	// StatusUnsaved есть несохраненные правки, debounce-таймер взведен
	StatusUnsaved Status = "unsaved"
	// StatusSaving попытка сохранения выполняется
	StatusSaving Status = "saving"
	// StatusRetrying запланирован или выполняется повтор после сбоя
	StatusRetrying Status = "retrying"
	// StatusError попытки исчерпаны, требуется ручное сохранение
	StatusError Status = "error"
	// StatusOffline соединение отсутствует, сохранение не выполняется
	StatusOffline Status = "offline"
	// StatusConflict сервер сообщил о расхождении версий
	StatusConflict Status = "conflict"
)

// State снимок состояния менеджера автосохранения.
// Владеет им исключительно Manager; наблюдатели получают копии через Subscribe
type State struct {
	// LastSavedTime время последнего подтвержденного сохранения
	LastSavedTime time.Time

	// Status текущее состояние машины
	Status Status

	// ConsecutiveFailures счетчик подряд идущих сбоев; сбрасывается только успехом
	ConsecutiveFailures int

	// HasUnsavedChanges есть ли отличия от последнего сохраненного снимка
	HasUnsavedChanges bool

	// IsOnline последнее известное состояние соединения
	IsOnline bool

	// IsSaveInProgress выполняется ли попытка сохранения прямо сейчас
	IsSaveInProgress bool
}

// Subscribe регистрирует наблюдателя изменений состояния.
// Наблюдатель немедленно получает текущий снимок, затем каждый переход.
// Возвращенная функция снимает подписку; повторный вызов безопасен
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	if m.subs == nil {
		m.subs = make(map[int]func(State))
	}
	m.subs[id] = fn
	st := m.state
	m.mu.Unlock()

	fn(st)

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// State возвращает текущий снимок состояния
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// snapshotLocked собирает снимок состояния и список подписчиков для публикации.
// Вызывается под m.mu; сами колбэки вызываются после освобождения мьютекса
func (m *Manager) snapshotLocked() (State, []func(State)) {
	subs := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	return m.state, subs
}

func publish(st State, subs []func(State)) {
	for _, fn := range subs {
		fn(st)
	}
}
