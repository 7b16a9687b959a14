package autosave

import (
	"sort"
	"sync"
	"time"
)

// fakeClock детерминированные часы для тестов: таймеры срабатывают только
// при явном продвижении времени через Advance
type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
	mu     sync.Mutex
}

type fakeTimer struct {
	clock   *fakeClock
	f       func()
	fireAt  time.Time
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{
		clock:  c,
		f:      f,
		fireAt: c.now.Add(d),
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance продвигает время и синхронно выполняет созревшие таймеры в порядке
// срабатывания. Колбэк может планировать новые таймеры (retry-цепочки)
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		t := c.nextDue(target)
		if t == nil {
			break
		}
		t.f()
	}

	c.mu.Lock()
	c.now = target
	c.mu.Unlock()
}

// nextDue выбирает самый ранний несработавший таймер в пределах target,
// помечает его сработавшим и устанавливает now на момент срабатывания
func (c *fakeClock) nextDue(target time.Time) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.fired && !t.stopped && !t.fireAt.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].fireAt.Before(due[j].fireAt) })

	t := due[0]
	t.fired = true
	if t.fireAt.After(c.now) {
		c.now = t.fireAt
	}
	return t
}
