// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/embershelf/embershelf/internal/core/author"
	"github.com/embershelf/embershelf/internal/core/book"
	"github.com/embershelf/embershelf/internal/core/evidence"
	"github.com/embershelf/embershelf/internal/core/intake"
	"github.com/embershelf/embershelf/internal/core/publication"
	"github.com/embershelf/embershelf/internal/core/taxonomy"
	"github.com/embershelf/embershelf/internal/platform/config"
	"github.com/embershelf/embershelf/internal/platform/constants"
	"github.com/embershelf/embershelf/internal/platform/middleware"
	"github.com/embershelf/embershelf/internal/users/account"
	"github.com/embershelf/embershelf/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles authentication routes (login, register).
	Auth *auth.Handler

	// Account handles profile, preference, and session management.
	Account *account.Handler

	// Taxonomy serves the tag catalog and axis categories.
	Taxonomy *taxonomy.Handler

	// Book handles the catalog, tagging, axes, covers, and quotes.
	Book *book.Handler

	// Evidence manages the per-book evidence ledger.
	Evidence *evidence.Handler

	// Publication handles publish, preview, and history.
	Publication *publication.Handler

	// Intake handles author submissions and curator decisions.
	Intake *intake.Handler

	// Author manages the pen-name registry.
	Author *author.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/taxonomy", h.Taxonomy.Routes())
		api.Mount("/books", h.Book.Routes())
		api.Mount("/books/{bookID}/evidence", h.Evidence.Routes())
		api.Mount("/books/{bookID}/publications", h.Publication.BookRoutes())
		api.Mount("/publications", h.Publication.Routes())
		api.Mount("/intakes", h.Intake.Routes())
		api.Mount("/authors", h.Author.Routes())
		api.Mount("/", h.Account.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
