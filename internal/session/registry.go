package session

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
)

// Registry provides the per-visitor sessions. It is created at startup and lives for the process.
type Registry struct {
	opts    Options
	idleTTL time.Duration
	logg    *logger.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	hooks    []func(*Session)
}

// RegistryParams configure a Registry.
type RegistryParams struct {
	Options Options
	IdleTTL time.Duration
	Logger  *logger.Logger
	Now     func() time.Time
}

func NewRegistry(params RegistryParams) *Registry {
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		opts:     params.Options,
		idleTTL:  params.IdleTTL,
		logg:     logg,
		now:      now,
		sessions: map[string]*Session{},
	}
}

// OnCreate registers fn to run for every new session, before it is returned to callers.
func (r *Registry) OnCreate(fn func(*Session)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

// Get returns an open session and marks it active.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok || !s.Active() {
		return nil, false
	}
	s.Touch(r.now())
	return s, true
}

// Create opens a session with a fresh id whose address bar starts at query.
func (r *Registry) Create(query url.Values) *Session {
	s := New(uuid.NewString(), query, r.opts)
	s.Touch(r.now())

	r.mu.Lock()
	r.sessions[s.ID()] = s
	hooks := append([]func(*Session){}, r.hooks...)
	r.mu.Unlock()

	for _, fn := range hooks {
		fn(s)
	}
	return s
}

// GetOrCreate returns the session for id, creating a new one when id is unknown or closed.
func (r *Registry) GetOrCreate(id string, query url.Values) (*Session, bool) {
	if id != "" {
		if s, ok := r.Get(id); ok {
			return s, false
		}
	}
	return r.Create(query), true
}

// Len is the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the idle TTL and returns how many it removed.
func (r *Registry) Sweep(ctx context.Context) (int, error) {
	if r.idleTTL <= 0 {
		return 0, nil
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	var err error
	for _, s := range idle {
		err = multierr.Append(err, s.Close())
	}
	if len(idle) > 0 {
		r.logg.Info(r.logg.WithField(ctx, "swept", len(idle)), "idle sessions closed")
	}
	return len(idle), err
}

// Close closes every session.
func (r *Registry) Close() error {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = map[string]*Session{}
	r.mu.Unlock()

	var err error
	for _, s := range sessions {
		err = multierr.Append(err, s.Close())
	}
	return err
}
