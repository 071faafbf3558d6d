package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/provider"
)

// AuthHandler drives the redirect-based OAuth flow against the auth provider.
type AuthHandler struct {
	sb            *provider.SupabaseClient
	oauthProvider string
	redirectURL   string
	dashboardURL  string
	logger        *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sb *provider.SupabaseClient, oauthProvider, redirectURL, dashboardURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sb:            sb,
		oauthProvider: oauthProvider,
		redirectURL:   redirectURL,
		dashboardURL:  dashboardURL,
		logger:        logger,
	}
}

// Login handles GET /auth/login: redirect into the provider's OAuth flow.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.sb.AuthorizeURL(h.oauthProvider, h.redirectURL), http.StatusFound)
}

// Callback handles GET /auth/callback: exchange the OAuth code for a session,
// persist it as cookies, and land on the dashboard.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error="+url.QueryEscape("missing authorization code"), http.StatusFound)
		return
	}

	session, err := h.sb.ExchangeCode(r.Context(), code)
	if err != nil {
		h.logger.Warn("oauth code exchange failed", "error", err)
		http.Redirect(w, r, "/login?error="+url.QueryEscape("sign-in failed"), http.StatusFound)
		return
	}

	maxAge := session.ExpiresIn
	if maxAge <= 0 {
		maxAge = int((time.Hour).Seconds())
	}
	setSessionCookie(w, auth.CookieAccessToken, session.AccessToken, maxAge)
	if session.RefreshToken != "" {
		setSessionCookie(w, auth.CookieRefreshToken, session.RefreshToken, 30*24*3600)
	}
	http.Redirect(w, r, h.dashboardURL, http.StatusFound)
}

// Refresh handles POST /auth/refresh: trade the refresh-token cookie for a
// fresh session and re-issue the cookies.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(auth.CookieRefreshToken)
	if err != nil || c.Value == "" {
		RespondError(w, domain.ErrNotAuthenticated("no refresh token"))
		return
	}

	session, err := h.sb.RefreshSession(r.Context(), c.Value)
	if err != nil {
		h.logger.Warn("session refresh failed", "error", err)
		clearSessionCookie(w, auth.CookieAccessToken)
		clearSessionCookie(w, auth.CookieRefreshToken)
		RespondError(w, domain.ErrNotAuthenticated("session expired"))
		return
	}

	maxAge := session.ExpiresIn
	if maxAge <= 0 {
		maxAge = int((time.Hour).Seconds())
	}
	setSessionCookie(w, auth.CookieAccessToken, session.AccessToken, maxAge)
	if session.RefreshToken != "" {
		setSessionCookie(w, auth.CookieRefreshToken, session.RefreshToken, 30*24*3600)
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// Logout handles POST /auth/logout. The local session is cleared even when
// the provider-side revocation fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if s := auth.SessionFromContext(r.Context()); s != nil {
		if err := h.sb.SignOut(r.Context(), s.Token); err != nil {
			h.logger.Warn("provider sign-out failed", "error", err)
		}
	}
	clearSessionCookie(w, auth.CookieAccessToken)
	clearSessionCookie(w, auth.CookieRefreshToken)
	RespondJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// Me handles GET /auth/me: the resolved session for the current request.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s := auth.SessionFromContext(r.Context())
	if s == nil {
		RespondJSON(w, http.StatusOK, map[string]any{"user": nil, "isAdmin": false})
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"user": s.User, "isAdmin": s.IsAdmin})
}

func setSessionCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
