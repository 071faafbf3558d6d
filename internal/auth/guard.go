package auth

import (
	"net/http"
	"net/url"
	"strings"
)

// GuardAdmin gates /admin paths on the presence of a recognized session
// cookie. Presence only: the token is not validated here, the upstream API
// rejects it if it is stale. Absent cookies redirect to the login page with
// the original path preserved.
func GuardAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hasSessionCookie(r) {
			target := "/login?redirect=" + url.QueryEscape(r.URL.Path)
			http.Redirect(w, r, target, http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hasSessionCookie(r *http.Request) bool {
	if c, err := r.Cookie(CookieAccessToken); err == nil && c.Value != "" {
		return true
	}
	// The legacy name contains a colon, which net/http refuses to parse as a
	// cookie name, so scan the raw header for it.
	for _, line := range r.Header.Values("Cookie") {
		for _, part := range strings.Split(line, ";") {
			name, _, ok := strings.Cut(strings.TrimSpace(part), "=")
			if ok && name == CookieLegacyToken {
				return true
			}
		}
	}
	return false
}
