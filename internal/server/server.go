// Package server wires the application together: router, middleware, routes,
// and graceful shutdown.
//
// This is the composition root — the one place the dependency chain is
// assembled:
//
//	sqlite.DB → identity.Resolver → CommentService / SessionService → handlers
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, and nothing below the handlers knows
// HTTP exists.
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

	"github.com/omarh/college-reviews/internal/auth"
	"github.com/omarh/college-reviews/internal/handler"
	"github.com/omarh/college-reviews/internal/identity"
	"github.com/omarh/college-reviews/internal/middleware"
	sqliteRepo "github.com/omarh/college-reviews/internal/repository/sqlite"
	"github.com/omarh/college-reviews/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
//
// When SessionSecret is empty the server still runs, but every caller is
// anonymous: the auth routes are not registered and GET /user always reports
// logged-out. The GitHub fields are only consulted when sessions are enabled.
type Config struct {
	Port               int
	DBPath             string
	SessionSecret      string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the full dependency graph wired.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and route handlers.
//
// ROUTES:
//
//	GET  /data          → comment list for a school (JSON)
//	POST /data          → create a comment (redirect back to the reviews page)
//	GET  /user          → login status (JSON)
//	POST /user          → set nickname (redirect; requires session)
//	GET  /auth/login    → start the OAuth flow        [sessions enabled only]
//	GET  /auth/callback → finish the OAuth flow       [sessions enabled only]
//	GET  /auth/logout   → clear the session cookie    [sessions enabled only]
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	resolver := identity.NewResolver(s.db, s.logger)
	commentService := service.NewCommentService(s.db, resolver, s.logger)
	sessionService := service.NewSessionService(s.db, s.logger)

	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	sessionHandler := handler.NewSessionHandler(sessionService, s.logger)

	var tokens *auth.TokenService
	if s.config.SessionSecret != "" {
		var err error
		tokens, err = auth.NewTokenService(s.config.SessionSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
		// Identity is observed, never required, on the board routes; the
		// handlers decide what anonymous callers may do.
		s.router.Use(auth.OptionalAuth(tokens))
	} else {
		s.logger.Warn("SESSION_SECRET not set — all callers are anonymous")
	}

	s.router.Get("/data", commentHandler.HandleList)
	s.router.Post("/data", commentHandler.HandleCreate)
	s.router.Get("/user", sessionHandler.HandleStatus)
	s.router.Post("/user", sessionHandler.HandleSetNickname)

	if tokens != nil {
		provider := auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
		authHandler := handler.NewAuthHandler(provider, tokens, sessionService, s.logger)

		s.router.Route("/auth", func(r chi.Router) {
			r.Get("/login", authHandler.HandleLogin)
			r.Get("/callback", authHandler.HandleCallback)
			r.Get("/logout", authHandler.HandleLogout)
		})
	}

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30 seconds
// to finish, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

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
			slog.String("database", s.config.DBPath),
			slog.Bool("sessions", s.config.SessionSecret != ""),
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
