package toast

import (
	"sync"
	"time"
)

// DefaultTTL is how long a toast stays visible without user dismissal.
const DefaultTTL = 1800 * time.Millisecond

type Toast struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store keeps short-lived notifications, each removed by its own timer or by Dismiss.
type Store struct {
	ttl time.Duration

	mu     sync.Mutex
	lastID int64
	toasts []Toast
	timers map[int64]*time.Timer
	subs   map[int]func([]Toast)
	nextID int
	closed bool
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:    ttl,
		timers: map[int64]*time.Timer{},
		subs:   map[int]func([]Toast){},
	}
}

// Push shows message and schedules its expiry. Pushing to a closed store returns the toast
// without keeping it.
func (s *Store) Push(message string) Toast {
	s.mu.Lock()
	s.lastID++
	now := time.Now()
	t := Toast{ID: s.lastID, Message: message, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}
	if s.closed {
		s.mu.Unlock()
		return t
	}
	s.toasts = append(s.toasts, t)
	id := t.ID
	s.timers[id] = time.AfterFunc(s.ttl, func() { s.expire(id) })
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
	return t
}

// Dismiss removes the toast early and stops its timer. It reports whether the toast was visible.
func (s *Store) Dismiss(id int64) bool {
	return s.remove(id)
}

func (s *Store) expire(id int64) {
	s.remove(id)
}

func (s *Store) remove(id int64) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.toasts {
		if s.toasts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.toasts = append(s.toasts[:idx], s.toasts[idx+1:]...)
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	snapshot, subs := s.snapshotLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
	return true
}

// List returns the visible toasts, oldest first.
func (s *Store) List() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}

// Subscribe registers fn for every change and returns an unsubscribe func.
func (s *Store) Subscribe(fn func([]Toast)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close stops every expiry timer and drops the visible toasts.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.toasts = nil
}

func (s *Store) snapshotLocked() ([]Toast, []func([]Toast)) {
	snapshot := make([]Toast, len(s.toasts))
	copy(snapshot, s.toasts)
	subs := make([]func([]Toast), 0, len(s.subs))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	return snapshot, subs
}

func notify(subs []func([]Toast), snapshot []Toast) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
