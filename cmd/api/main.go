package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/content"
	"github.com/courtside/platform/internal/graphql"
	"github.com/courtside/platform/internal/guard"
	"github.com/courtside/platform/internal/handler"
	adminhandler "github.com/courtside/platform/internal/handler/admin"
	"github.com/courtside/platform/internal/infra"
	"github.com/courtside/platform/internal/jobs"
	"github.com/courtside/platform/internal/provider"
	"github.com/courtside/platform/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	// Load config; the process fails fast on missing upstreams.
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	// Cache backend: Redis when configured, in-process otherwise.
	var store graphql.Store
	if cfg.RedisURL != "" {
		redisStore, err := graphql.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		store = redisStore
		logger.Info("using redis cache", "url", cfg.RedisURL)
	} else {
		store = graphql.NewMemoryStore()
	}

	// Auth provider and GraphQL pipeline
	sb := provider.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, logger)
	resolver := auth.NewResolver(cfg.AdminAllowlist)
	gql := graphql.NewClient(cfg.GraphQLURL, graphql.NewPipeline(cfg.SupabaseAnonKey, logger), store, logger)

	// Services
	playerSvc := service.NewPlayerService(gql)
	teamSvc := service.NewTeamService(gql)
	matchSvc := service.NewMatchService(gql)
	eventSvc := service.NewEventService(gql)
	rankingsSvc := service.NewRankingsService(gql)
	searchSvc := service.NewSearchService(playerSvc, teamSvc)
	adminSvc := service.NewAdminService(gql)

	// Content pipeline
	loader := content.NewLoader(cfg.ContentDir, logger)
	compiler := content.NewCompiler()

	// Handlers
	authHandler := handler.NewAuthHandler(sb, cfg.OAuthProvider, cfg.OAuthRedirectURL, cfg.DashboardURL, logger)
	playerHandler := handler.NewPlayerHandler(playerSvc)
	teamHandler := handler.NewTeamHandler(teamSvc)
	matchHandler := handler.NewMatchHandler(matchSvc)
	rankingsHandler := handler.NewRankingsHandler(rankingsSvc, eventSvc)
	searchHandler := handler.NewSearchHandler(searchSvc)
	mediaHandler := handler.NewMediaHandler(loader, compiler)
	entityAdmin := adminhandler.NewEntityHandler(adminSvc)

	// Background cache refresher
	refresher, err := jobs.NewRefresher(rankingsSvc, eventSvc, playerSvc, cfg.RefreshToken, cfg.RefreshInterval, logger)
	if err != nil {
		return fmt.Errorf("create refresher: %w", err)
	}
	if err := refresher.Start(); err != nil {
		return fmt.Errorf("start refresher: %w", err)
	}
	defer func() {
		if err := refresher.Stop(); err != nil {
			logger.Warn("refresher shutdown", "error", err)
		}
	}()

	authLimiter := guard.NewRateLimiter(30, time.Minute)

	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSAllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(c.Handler)
	r.Use(handler.JSONContentType)
	r.Use(auth.ResolveSession(sb, resolver, logger))

	// Health (no auth)
	r.Get("/health", handler.HealthHandler())

	// Auth flow (rate limited, no session required)
	r.Route("/auth", func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Get("/login", authHandler.Login)
		r.Get("/callback", authHandler.Callback)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// Media (public, file-backed)
	r.Route("/media", func(r chi.Router) {
		r.Get("/", mediaHandler.List)
		r.Get("/{slug}", mediaHandler.Get)
	})

	// Data reads; the services themselves skip anonymous callers
	r.Get("/players", playerHandler.List)
	r.Get("/players/{id}", playerHandler.Get)
	r.Get("/teams", teamHandler.List)
	r.Get("/teams/{id}", teamHandler.Get)
	r.Get("/matches", matchHandler.List)
	r.Get("/matches/{id}/stats", matchHandler.BoxScore)
	r.Get("/rankings", rankingsHandler.Leaderboard)
	r.Get("/rankings/events", rankingsHandler.Events)
	r.Get("/search", searchHandler.Search)

	// Admin surface: cookie-presence guard at the edge, then the resolved
	// session must carry the admin flag.
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.GuardAdmin)
		r.Use(auth.RequireAdmin)

		r.Post("/{entity}", entityAdmin.Create)
		r.Patch("/{entity}/{id}", entityAdmin.Update)
		r.Delete("/{entity}/{id}", entityAdmin.Delete)
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
