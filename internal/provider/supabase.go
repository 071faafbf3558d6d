package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/courtside/platform/internal/domain"
)

// SupabaseClient wraps the Supabase GoTrue REST API. It owns nothing: users
// and sessions live with the provider, this client only exchanges tokens and
// reads the current user.
type SupabaseClient struct {
	baseURL string
	anonKey string
	logger  *slog.Logger
	client  *http.Client
}

// NewSupabaseClient creates a GoTrue client for the given project URL.
func NewSupabaseClient(baseURL, anonKey string, logger *slog.Logger) *SupabaseClient {
	return &SupabaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		logger:  logger,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetUser fetches the user behind an access token. Provider failures are
// logged and reported as a nil user so callers degrade to anonymous instead
// of failing the request.
func (c *SupabaseClient) GetUser(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("auth provider unreachable, treating session as anonymous", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("auth provider returned unexpected status", "status", resp.StatusCode)
		return nil, nil
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		c.logger.Warn("decode user response", "error", err)
		return nil, nil
	}
	return &user, nil
}

// ExchangeCode swaps an OAuth callback code for a session.
func (c *SupabaseClient) ExchangeCode(ctx context.Context, code string) (*domain.Session, error) {
	return c.tokenRequest(ctx, "authorization_code", map[string]string{"auth_code": code})
}

// RefreshSession trades a refresh token for a fresh session.
func (c *SupabaseClient) RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error) {
	return c.tokenRequest(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

func (c *SupabaseClient) tokenRequest(ctx context.Context, grantType string, body map[string]string) (*domain.Session, error) {
	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/auth/v1/token?grant_type=%s", c.baseURL, grantType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, raw)
	}

	var session domain.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// SignOut revokes the provider-held credentials. Callers must treat local
// session state as cleared even when the revocation call fails.
func (c *SupabaseClient) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sign out failed with status %d", resp.StatusCode)
	}
	return nil
}

// AuthorizeURL builds the redirect target for the provider's OAuth flow.
func (c *SupabaseClient) AuthorizeURL(oauthProvider, redirectTo string) string {
	q := url.Values{}
	q.Set("provider", oauthProvider)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/auth/v1/authorize?" + q.Encode()
}

func (c *SupabaseClient) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("apikey", c.anonKey)
	if accessToken == "" {
		accessToken = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
}
