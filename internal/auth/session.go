package auth

import (
	"context"

	"github.com/courtside/platform/internal/domain"
)

// Session is the per-request resolved auth state: the provider's user record,
// the raw bearer token, and the derived admin flag. IsAdmin is recomputed on
// every request and never persisted.
type Session struct {
	User    *domain.User
	Token   string
	IsAdmin bool
}

type contextKey string

const sessionKey contextKey = "auth_session"

// WithSession returns a context carrying the resolved session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext extracts the resolved session; nil for anonymous requests.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// UserFromContext extracts the authenticated user; nil for anonymous requests.
func UserFromContext(ctx context.Context) *domain.User {
	if s := SessionFromContext(ctx); s != nil {
		return s.User
	}
	return nil
}
