// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

// Command api is the entry point for the Embershelf HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/embershelf/embershelf/internal/api"
	"github.com/embershelf/embershelf/internal/core/audit"
	"github.com/embershelf/embershelf/internal/core/author"
	"github.com/embershelf/embershelf/internal/core/book"
	"github.com/embershelf/embershelf/internal/core/curation"
	"github.com/embershelf/embershelf/internal/core/evidence"
	"github.com/embershelf/embershelf/internal/core/intake"
	"github.com/embershelf/embershelf/internal/core/publication"
	"github.com/embershelf/embershelf/internal/core/taxonomy"
	"github.com/embershelf/embershelf/internal/platform/config"
	"github.com/embershelf/embershelf/internal/platform/constants"
	"github.com/embershelf/embershelf/internal/platform/migration"
	pgstore "github.com/embershelf/embershelf/internal/platform/postgres"
	redisstore "github.com/embershelf/embershelf/internal/platform/redis"
	"github.com/embershelf/embershelf/internal/platform/sec"
	"github.com/embershelf/embershelf/internal/users/account"
	"github.com/embershelf/embershelf/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "embershelf"))
	slog.SetDefault(log)

	log.Info("[Embershelf] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "embershelf"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Auth Service ───────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")
	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	// Identity. The account service doubles as the enrollment provisioner
	// (default reading preferences) and the catalog's preference source.
	accountService := account.NewService(
		account.NewAccountRepository(pool),
		account.NewPreferencesRepository(pool),
		account.NewSessionRepository(pool),
		log,
	)
	accountHandler := account.NewHandler(accountService)

	memberRepository := auth.NewMemberRepository(pool)
	authSessionRepository := auth.NewSessionRepository(pool)
	authService := auth.NewService(memberRepository, authSessionRepository, accountService, jwtSvc, log)
	authHandler := auth.NewHandler(authService)

	// Cross-cutting catalog services
	recorder := audit.NewPostgresRecorder(pool, log)
	engine := curation.DefaultEngine()

	taxonomyService := taxonomy.NewService(taxonomy.NewPostgresRepository(pool), taxonomy.NewRedisCache(rdb), log)
	taxonomyHandler := taxonomy.NewHandler(taxonomyService, accountService)

	// Catalog
	bookRepository := book.NewRepository(pool)
	bookService := book.NewService(bookRepository, taxonomyService, engine, recorder, log)
	bookHandler := book.NewHandler(bookService)

	evidenceService := evidence.NewService(evidence.NewPostgresRepository(pool), taxonomyService, recorder, log)
	evidenceHandler := evidence.NewHandler(evidenceService)

	publicationService := publication.NewService(publication.NewRepository(pool), bookRepository, evidenceService, taxonomyService, engine, recorder, log)
	publicationHandler := publication.NewHandler(publicationService)

	intakeService := intake.NewService(intake.NewRepository(pool), bookService, bookRepository, taxonomyService, recorder, log)
	intakeHandler := intake.NewHandler(intakeService)

	authorService := author.NewService(author.NewPostgresRepository(pool), log)
	authorHandler := author.NewHandler(authorService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Auth:        authHandler,
		Account:     accountHandler,
		Taxonomy:    taxonomyHandler,
		Book:        bookHandler,
		Evidence:    evidenceHandler,
		Publication: publicationHandler,
		Intake:      intakeHandler,
		Author:      authorHandler,
	}

	// The server context outlives startup; it backs long-running middleware
	// routines such as the rate limiter cleanup loop.
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
