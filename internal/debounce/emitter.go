package debounce

import (
	"sync"
	"time"
)

// Emitter forwards a value only after it has stayed unchanged for the full delay. It is a
// trailing-edge debounce with no leading edge and no max wait.
type Emitter[T comparable] struct {
	delay time.Duration
	emit  func(T)

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	pending    T
	value      T
	closed     bool
}

// New returns an emitter that calls emit (which may be nil) with each settled value.
func New[T comparable](delay time.Duration, emit func(T)) *Emitter[T] {
	return &Emitter[T]{delay: delay, emit: emit}
}

// NewWithValue seeds the emitted value, as when a page opens with a search already in the URL.
func NewWithValue[T comparable](delay time.Duration, initial T, emit func(T)) *Emitter[T] {
	e := New(delay, emit)
	e.value = initial
	e.pending = initial
	return e
}

// Set records v and restarts the quiet period. Setting the settled value while no timer is
// running is a no-op.
func (e *Emitter[T]) Set(v T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.timer == nil && v == e.value {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.generation++
	e.pending = v
	gen := e.generation
	e.timer = time.AfterFunc(e.delay, func() { e.fire(gen) })
}

// fire drops a timer that fired concurrently with a newer Set or with Close.
func (e *Emitter[T]) fire(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.generation {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	if e.pending == e.value {
		e.mu.Unlock()
		return
	}
	e.value = e.pending
	v, emit := e.value, e.emit
	e.mu.Unlock()

	if emit != nil {
		emit(v)
	}
}

// Value returns the last settled value.
func (e *Emitter[T]) Value() T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

// Pending reports whether a value is waiting for its quiet period to end.
func (e *Emitter[T]) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timer != nil
}

// Close cancels a pending emission and ignores every later Set.
func (e *Emitter[T]) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
