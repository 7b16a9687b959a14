package session

import (
	"strings"
	"sync"
)

// Buffer построчный буфер черновика. Реализует autosave.ContentSource:
// движок автосохранения видит только сериализацию, не модель документа
type Buffer struct {
	mu    sync.RWMutex
	lines []string
}

// NewBuffer создает буфер с начальным контентом
func NewBuffer(content string) *Buffer {
	b := &Buffer{}
	b.setContent(content)
	return b
}

// AppendLine добавляет строку в конец буфера
func (b *Buffer) AppendLine(line string) {
	b.mu.Lock()
	b.lines = append(b.lines, line)
	b.mu.Unlock()
}

// Snapshot возвращает сериализованный снимок контента
func (b *Buffer) Snapshot() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

// PlainText возвращает текстовое содержимое; для построчного буфера
// совпадает с сериализацией
func (b *Buffer) PlainText() string {
	return b.Snapshot()
}

// Restore заменяет контент буфера (восстановление из бэкапа или с сервера)
func (b *Buffer) Restore(content string) error {
	b.mu.Lock()
	b.setContent(content)
	b.mu.Unlock()
	return nil
}

// LineCount возвращает число строк в буфере
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

func (b *Buffer) setContent(content string) {
	if content == "" {
		b.lines = nil
		return
	}
	b.lines = strings.Split(content, "\n")
}
