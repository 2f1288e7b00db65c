package middleware

import (
	"context"

	"github.com/yassinehussein4-cyber/storefront/internal/session"
)

type contextKey string

const ctxSession contextKey = "session"

// SessionFromContext returns the visitor session attached by Session, or nil.
func SessionFromContext(ctx context.Context) *session.Session {
	if ctx == nil {
		return nil
	}
	if s, ok := ctx.Value(ctxSession).(*session.Session); ok {
		return s
	}
	return nil
}

// WithSession injects the visitor session into the context for downstream handlers.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSession, s)
}

// SessionIDFromContext is the attached session's id, or "".
func SessionIDFromContext(ctx context.Context) string {
	if s := SessionFromContext(ctx); s != nil {
		return s.ID()
	}
	return ""
}
