// Package notify реализует терминальные уведомления для движка автосохранения.
// Веб-редактор показывает toast с кнопкой; в терминале уведомление печатается
// строкой, а действие кнопки становится доступным через InvokeAction
package notify

import (
	"sync"

	"github.com/iudanet/draftkeeper/internal/autosave"
	"github.com/iudanet/draftkeeper/internal/client/iocli"
)

// Notifier печатает уведомления движка в терминал
type Notifier struct {
	io iocli.IO

	mu     sync.Mutex
	action *autosave.Action
}

// New создает терминальный Notifier поверх iocli.IO
func New(io iocli.IO) *Notifier {
	return &Notifier{io: io}
}

// Notify реализует autosave.Notifier
func (n *Notifier) Notify(message string, severity autosave.Severity, opts *autosave.NotifyOptions) {
	prefix := "[info]"
	switch severity {
	case autosave.SeveritySuccess:
		prefix = "[ok]"
	case autosave.SeverityError:
		prefix = "[error]"
	}

	if opts != nil && opts.Action != nil {
		n.mu.Lock()
		n.action = opts.Action
		n.mu.Unlock()
		n.io.Printf("%s %s (type :%s to %s)\n", prefix, message, actionCommand, opts.Action.Label)
		return
	}

	n.io.Printf("%s %s\n", prefix, message)
}

// actionCommand команда сеанса редактирования, вызывающая действие уведомления
const actionCommand = "apply"

// HasAction сообщает, есть ли ожидающее действие
func (n *Notifier) HasAction() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.action != nil
}

// ActionLabel возвращает подпись ожидающего действия или пустую строку
func (n *Notifier) ActionLabel() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.action == nil {
		return ""
	}
	return n.action.Label
}

// InvokeAction выполняет ожидающее действие (например, восстановление бэкапа).
// Возвращает false если действия нет. Действие одноразовое
func (n *Notifier) InvokeAction() bool {
	n.mu.Lock()
	action := n.action
	n.action = nil
	n.mu.Unlock()

	if action == nil || action.Invoke == nil {
		return false
	}

	action.Invoke()
	return true
}

// ClearAction сбрасывает ожидающее действие без выполнения
func (n *Notifier) ClearAction() {
	n.mu.Lock()
	n.action = nil
	n.mu.Unlock()
}
