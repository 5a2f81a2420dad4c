// Package server is the composition root: it builds the storage backend,
// services, and handlers, wires them to routes, and runs the HTTP server
// with graceful shutdown. Nothing else in the codebase knows about more
// than its immediate dependencies; this package knows about everything.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/wilson400hong/slop-museum/internal/auth"
	"github.com/wilson400hong/slop-museum/internal/config"
	"github.com/wilson400hong/slop-museum/internal/handler"
	"github.com/wilson400hong/slop-museum/internal/middleware"
	"github.com/wilson400hong/slop-museum/internal/preview"
	"github.com/wilson400hong/slop-museum/internal/repository"
	"github.com/wilson400hong/slop-museum/internal/repository/filestore"
	sqliteRepo "github.com/wilson400hong/slop-museum/internal/repository/sqlite"
	"github.com/wilson400hong/slop-museum/internal/sandbox"
	"github.com/wilson400hong/slop-museum/internal/service"
)

// Server owns the router and the storage backend. The store is closed
// during graceful shutdown; everything else is stateless.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.Store
}

// New assembles the full dependency graph.
//
// Optional integrations degrade instead of failing: without GitHub
// credentials the OAuth routes answer 501, without MinIO embedded-code
// works simply never get a sandbox URL. Both absences are logged loudly at
// startup so a misconfigured production deploy is noticed.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		store.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// openStore selects the persistence backend. Both implement
// repository.Store, so everything above this line is backend-agnostic.
func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.StorageBackend {
	case "file":
		return filestore.New(cfg.StorePath)
	default:
		return sqliteRepo.New(cfg.DBPath)
	}
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	if len(s.config.CORSAllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true, // the session cookie must survive CORS
			MaxAge:           300,
		}))
	}

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	var github *auth.GitHubProvider
	if s.config.GitHubConfigured() {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	} else {
		s.logger.Warn("GitHub OAuth not configured; /auth/github routes disabled")
	}

	var publisher sandbox.Publisher
	if s.config.SandboxConfigured() {
		store, err := sandbox.NewStore(
			s.config.MinioEndpoint,
			s.config.MinioAccessKey,
			s.config.MinioSecretKey,
			s.config.MinioBucket,
			s.config.MinioBaseURL,
			s.config.MinioUseSSL,
		)
		if err != nil {
			return fmt.Errorf("creating sandbox store: %w", err)
		}
		publisher = store
	} else {
		s.logger.Warn("MinIO not configured; embedded-code works will not get sandbox URLs")
	}

	fetcher := preview.NewFetcher(s.logger)

	workService := service.NewWorkService(
		s.store, s.store, s.store, s.store, publisher, fetcher, s.logger,
	)
	toggleService := service.NewToggleService(s.store, s.store, s.store, s.logger)
	moderationService := service.NewModerationService(s.store, s.store, s.store, s.logger)
	authService := service.NewAuthService(
		s.store, tokens, auth.NewPasswordService(), s.config.DevPasswordHash, s.logger,
	)

	workHandler := handler.NewWorkHandler(workService, s.logger)
	toggleHandler := handler.NewToggleHandler(toggleService, s.logger)
	moderationHandler := handler.NewModerationHandler(moderationService, s.logger)
	authHandler := handler.NewAuthHandler(github, authService, s.logger)
	userHandler := handler.NewUserHandler(workService, s.logger)
	previewHandler := handler.NewPreviewHandler(fetcher, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
		r.Post("/dev-login", authHandler.HandleDevLogin)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public reads. OptionalAuth lets logged-in viewers get their
		// personalised fields without blocking anonymous ones.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/works", workHandler.HandleFeed)
			r.Get("/works/{id}", workHandler.HandleGet)
			r.Get("/works/{id}/reactions", toggleHandler.HandleReactionStats)
			r.Get("/tags", workHandler.HandleTags)
			r.Get("/users/{id}/works", userHandler.HandleUserWorks)
			r.Get("/users/{id}/reaction-stats", userHandler.HandleUserReactionStats)
			r.Get("/preview", previewHandler.HandlePreview)
		})

		// Everything that writes, or reads private state, needs a session.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.HandleMe)
			r.Post("/works", workHandler.HandleSubmit)
			r.Post("/reactions", toggleHandler.HandleToggleReaction)
			r.Post("/bookmarks", toggleHandler.HandleToggleBookmark)
			r.Get("/bookmarks", workHandler.HandleBookmarkedWorks)
			r.Get("/works/{id}/bookmark", toggleHandler.HandleBookmarkState)
			r.Post("/reports", moderationHandler.HandleReport)
			r.Get("/admin/reports", moderationHandler.HandlePendingReports)
			r.Post("/admin/action", moderationHandler.HandleModerate)
		})
	})

	return nil
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests for up to 30
// seconds, close the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("backend", s.config.StorageBackend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
