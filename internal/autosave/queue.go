package autosave

import (
	"log/slog"
	"sync"
)

// SaveQueue строгий FIFO-сериализатор операций сохранения.
// Гарантирует, что в любой момент выполняется не более одной операции;
// ошибка операции изолируется и не влияет на последующие.
// Без приоритетов и отмены отдельных элементов — единственная задача очереди
// не дать двум независимым вызывающим наложить друг на друга записи
type SaveQueue struct {
	logger   *slog.Logger
	ops      []func() error
	mu       sync.Mutex
	draining bool
}

// NewSaveQueue создает пустую очередь сохранений
func NewSaveQueue(logger *slog.Logger) *SaveQueue {
	return &SaveQueue{logger: logger}
}

// Add добавляет операцию в конец очереди и запускает drain-цикл,
// если он еще не активен
func (q *SaveQueue) Add(op func() error) {
	q.mu.Lock()
	q.ops = append(q.ops, op)
	if q.draining {
		q.mu.Unlock()
		return
	}
	q.draining = true
	q.mu.Unlock()

	go q.drain()
}

// drain обрабатывает операции строго в порядке поступления,
// дожидаясь завершения каждой перед запуском следующей
func (q *SaveQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.ops) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		op := q.ops[0]
		// Зануляем слот, чтобы не удерживать замыкание до реаллокации
		q.ops[0] = nil
		q.ops = q.ops[1:]
		q.mu.Unlock()

		if err := op(); err != nil {
			q.logger.Error("queued save failed", "error", err)
		}
	}
}

// Clear отбрасывает все еще не начатые операции.
// Уже выполняющаяся операция не прерывается
func (q *SaveQueue) Clear() {
	q.mu.Lock()
	q.ops = nil
	q.mu.Unlock()
}

// Len возвращает количество операций, ожидающих выполнения
func (q *SaveQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}
