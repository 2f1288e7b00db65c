package viewstate

import (
	"net/url"
	"sync"
)

// Synchronizer keeps a ViewState in step with a History and notifies listeners on every change.
type Synchronizer struct {
	history *History

	// mu serializes read-modify-write cycles so concurrent updates never interleave.
	mu        sync.Mutex
	listeners map[int]func(ViewState)
	nextID    int
}

// New returns a synchronizer over history.
func New(history *History) *Synchronizer {
	if history == nil {
		history = NewHistory(nil)
	}
	return &Synchronizer{history: history, listeners: map[int]func(ViewState){}}
}

func (s *Synchronizer) History() *History {
	return s.history
}

// State parses the active history entry.
func (s *Synchronizer) State() ViewState {
	return Parse(s.history.Current())
}

// Query returns the active entry encoded as a query string.
func (s *Synchronizer) Query() string {
	return s.history.Current().Encode()
}

// Update applies every change as one history replacement. A nil, empty or "default" value deletes
// the key; keys not named in changes are left untouched.
func (s *Synchronizer) Update(changes map[string]*string) ViewState {
	s.mu.Lock()
	next := applyChanges(s.history.Current(), changes)
	s.history.Replace(next)
	state := Parse(next)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, state)
	return state
}

// Reset replaces the active entry with an empty query, returning the storefront to its home view
// without adding history.
func (s *Synchronizer) Reset() ViewState {
	s.mu.Lock()
	s.history.Replace(url.Values{})
	state := Parse(url.Values{})
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, state)
	return state
}

// Navigate pushes values as a new history entry.
func (s *Synchronizer) Navigate(values url.Values) ViewState {
	s.mu.Lock()
	s.history.Push(values)
	state := Parse(values)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, state)
	return state
}

// Back returns to the previous entry, as the browser back button would.
func (s *Synchronizer) Back() (ViewState, bool) {
	s.mu.Lock()
	if !s.history.Back() {
		s.mu.Unlock()
		return s.State(), false
	}
	state := Parse(s.history.Current())
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, state)
	return state, true
}

// OnChange registers fn and returns a function that removes it.
func (s *Synchronizer) OnChange(fn func(ViewState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Synchronizer) snapshotListeners() []func(ViewState) {
	out := make([]func(ViewState), 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(listeners []func(ViewState), state ViewState) {
	for _, fn := range listeners {
		fn(state)
	}
}
