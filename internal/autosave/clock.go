package autosave

import "time"

// Timer представляет отложенную задачу, которую можно отменить до срабатывания
type Timer interface {
	// Stop отменяет таймер. Возвращает false если таймер уже сработал или остановлен
	Stop() bool
}

// Clock абстрагирует время для детерминированных тестов.
// Контракт: запланировать отложенный вызов и иметь возможность отменить его до срабатывания
type Clock interface {
	// Now возвращает текущее время
	Now() time.Time

	// AfterFunc планирует вызов f через d; f выполняется в отдельной горутине
	AfterFunc(d time.Duration, f func()) Timer
}

// systemClock реализует Clock поверх пакета time
type systemClock struct{}

// SystemClock returns the wall-clock implementation used by default.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return systemTimer{t: time.AfterFunc(d, f)}
}

type systemTimer struct {
	t *time.Timer
}

func (st systemTimer) Stop() bool {
	return st.t.Stop()
}
