package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/courtside/platform/internal/provider"
)

// Recognized session cookie names, owned by the auth provider SDK.
const (
	CookieAccessToken  = "sb-access-token"
	CookieLegacyToken  = "sb:token"
	CookieRefreshToken = "sb-refresh-token"
)

// ResolveSession returns middleware that resolves the request's bearer token
// or session cookie into an auth Session. Provider failures degrade to an
// anonymous request; they are never fatal here.
func ResolveSession(sb *provider.SupabaseClient, resolver *Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := sb.GetUser(r.Context(), token)
			if err != nil || user == nil {
				if err != nil {
					logger.Warn("session resolution failed", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			if user.Role == "" {
				user.Role = RoleFromToken(token)
			}

			session := &Session{
				User:    user,
				Token:   token,
				IsAdmin: resolver.ResolveIsAdmin(user),
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == nil {
			http.Error(w, `{"code":"UNAUTHENTICATED","message":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose session did not resolve as admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		if s == nil {
			http.Error(w, `{"code":"UNAUTHENTICATED","message":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		if !s.IsAdmin {
			http.Error(w, `{"code":"FORBIDDEN","message":"admin access required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	for _, name := range []string{CookieAccessToken, CookieLegacyToken} {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ""
}
