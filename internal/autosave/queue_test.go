package autosave

import (
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveQueueFIFO(t *testing.T) {
	q := NewSaveQueue(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})

	for i := 1; i <= 5; i++ {
		i := i
		q.Add(func() error {
			mu.Lock()
			order = append(order, i)
			finished := len(order) == 5
			mu.Unlock()
			if finished {
				close(done)
			}
			return nil
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("queue did not drain")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, order)
}

func TestSaveQueueNoOverlap(t *testing.T) {
	q := NewSaveQueue(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	var mu sync.Mutex
	active := 0
	maxActive := 0
	done := make(chan struct{})

	const total = 10
	finished := 0
	for i := 0; i < total; i++ {
		q.Add(func() error {
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			finished++
			if finished == total {
				close(done)
			}
			mu.Unlock()
			return nil
		})
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("queue did not drain")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxActive)
}

func TestSaveQueueErrorDoesNotStopDrain(t *testing.T) {
	q := NewSaveQueue(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	done := make(chan struct{})
	q.Add(func() error { return errors.New("first op failed") })
	q.Add(func() error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("queue stalled after failing operation")
	}
}

func TestSaveQueueClear(t *testing.T) {
	q := NewSaveQueue(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	started := make(chan struct{})
	release := make(chan struct{})
	var executed sync.Map

	q.Add(func() error {
		close(started)
		<-release
		executed.Store("first", true)
		return nil
	})
	<-started

	q.Add(func() error {
		executed.Store("second", true)
		return nil
	})
	require.Equal(t, 1, q.Len())

	// Clear отбрасывает ожидающие операции, но не прерывает текущую
	q.Clear()
	assert.Equal(t, 0, q.Len())

	close(release)
	require.Eventually(t, func() bool {
		_, ok := executed.Load("first")
		return ok
	}, time.Second, time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	_, ok := executed.Load("second")
	assert.False(t, ok)
}
