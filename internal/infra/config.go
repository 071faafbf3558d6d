package infra

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Supabase
	SupabaseURL     string `env:"SUPABASE_URL"`
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY"`

	// Upstream GraphQL API
	GraphQLURL string `env:"GRAPHQL_URL"`

	// Redis (optional; empty selects the in-process cache)
	RedisURL string `env:"REDIS_URL"`

	// Admin access
	AdminAllowlist []string `env:"ADMIN_ALLOWLIST" envSeparator:","`

	// Content
	ContentDir string `env:"CONTENT_DIR" envDefault:"src/content/posts"`

	// Server
	APIPort            int    `env:"API_PORT" envDefault:"3200"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Auth flow
	OAuthProvider    string `env:"OAUTH_PROVIDER" envDefault:"discord"`
	OAuthRedirectURL string `env:"OAUTH_REDIRECT_URL" envDefault:"http://localhost:3200/auth/callback"`
	DashboardURL     string `env:"DASHBOARD_URL" envDefault:"/dashboard"`

	// Background refresh
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"5m"`
	RefreshToken    string        `env:"REFRESH_SERVICE_TOKEN"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects missing or malformed required settings. The process must
// fail fast at startup rather than surface broken upstreams per request.
func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if _, err := url.ParseRequestURI(c.SupabaseURL); err != nil {
		return fmt.Errorf("SUPABASE_URL is not a valid URL: %w", err)
	}
	if c.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	if c.GraphQLURL == "" {
		return fmt.Errorf("GRAPHQL_URL is required")
	}
	if _, err := url.ParseRequestURI(c.GraphQLURL); err != nil {
		return fmt.Errorf("GRAPHQL_URL is not a valid URL: %w", err)
	}
	if c.RefreshInterval < time.Minute {
		return fmt.Errorf("REFRESH_INTERVAL must be at least 1m, got %s", c.RefreshInterval)
	}
	return nil
}
