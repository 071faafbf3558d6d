package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/courtside/platform/internal/domain"
)

// Roles the auth provider stamps on privileged users.
const (
	RoleAdmin       = "admin"
	RoleServiceRole = "service_role"
)

// Resolver decides admin status for a user. The allow-list is configuration
// loaded at startup, not a remote lookup; resolution is a pure function of
// the user record.
type Resolver struct {
	allowlist map[string]bool
}

// NewResolver builds a Resolver from the configured admin email allow-list.
func NewResolver(allowedEmails []string) *Resolver {
	set := make(map[string]bool, len(allowedEmails))
	for _, e := range allowedEmails {
		if e != "" {
			set[e] = true
		}
	}
	return &Resolver{allowlist: set}
}

// ResolveIsAdmin reports whether the user is an admin: allow-listed email or
// a privileged role. A nil user is never an admin.
func (r *Resolver) ResolveIsAdmin(user *domain.User) bool {
	if user == nil {
		return false
	}
	if r.allowlist[user.Email] {
		return true
	}
	return user.Role == RoleAdmin || user.Role == RoleServiceRole
}

// tokenClaims is the subset of the provider's access-token claims we read.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// RoleFromToken extracts the role claim from an access token without
// verifying the signature. The provider validates tokens on its side; this
// mirrors the client-side trust boundary where the token is only a hint.
func RoleFromToken(accessToken string) string {
	if accessToken == "" {
		return ""
	}
	claims := &tokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return ""
	}
	return claims.Role
}
