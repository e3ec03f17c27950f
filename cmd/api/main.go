// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Passport HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open account storage (PostgreSQL with migrations, or in-memory).
//  4. Connect to Redis when the identity cache is enabled.
//  5. Build the credential primitives and the mail driver.
//  6. Wire HTTP handlers.
//  7. Start the internal metrics listener when METRICS_ADDR is set.
//  8. Start HTTP server with graceful shutdown.
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

	"github.com/jonboulle/clockwork"

	"github.com/taibuivan/passport/internal/api"
	"github.com/taibuivan/passport/internal/platform/config"
	"github.com/taibuivan/passport/internal/platform/constants"
	"github.com/taibuivan/passport/internal/platform/mailer"
	"github.com/taibuivan/passport/internal/platform/metrics"
	"github.com/taibuivan/passport/internal/platform/middleware"
	"github.com/taibuivan/passport/internal/platform/migration"
	pgstore "github.com/taibuivan/passport/internal/platform/postgres"
	redisstore "github.com/taibuivan/passport/internal/platform/redis"
	"github.com/taibuivan/passport/internal/platform/sec"
	"github.com/taibuivan/passport/internal/users/account"
	"github.com/taibuivan/passport/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage", cfg.StorageDriver),
		slog.String("mail", cfg.Mail.Driver),
		slog.Bool("identity_cache", cfg.CacheEnabled()),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), constants.StartupTimeout)
	defer startupCancel()

	clock := clockwork.NewRealClock()
	healthDeps := api.HealthDependencies{}

	// ── 3. Account Storage ────────────────────────────────────────────────
	var accounts auth.AccountRepository
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("postgres_pool_closing")
			pool.Close()
		}()

		accounts = auth.NewAccountRepository(pool)
		healthDeps.CheckDatabase = func(context context.Context) error {
			return pgstore.Ping(context, pool)
		}
	default:
		log.Warn("memory_storage_enabled", slog.String("reason", "accounts are lost on restart"))
		accounts = auth.NewMemoryAccountRepository(clock)
	}

	// ── 4. Identity Cache (optional) ──────────────────────────────────────
	var identityCache auth.IdentityCache
	if cfg.CacheEnabled() {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("redis_client_closing")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		identityCache = auth.NewIdentityCache(rdb, cfg.IdentityCacheTTL)
		healthDeps.CheckCache = func(context context.Context) error {
			return redisstore.Ping(context, rdb)
		}
	}

	// ── 5. Credential Primitives ──────────────────────────────────────────
	hasher, err := sec.NewPasswordHasher(cfg.Credentials.HashCost)
	must(log, err, "initialize password hasher")

	codec, err := sec.NewTokenCodec([]byte(cfg.Credentials.SigningKey), cfg.Credentials.SessionTTL, constants.AuthIssuer, clock)
	must(log, err, "initialize token codec")

	var delivery mailer.Mailer
	switch cfg.Mail.Driver {
	case config.MailSMTP:
		delivery = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	default:
		delivery = mailer.NewLogMailer(log)
	}

	counters := metrics.NewAuth()

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(auth.Dependencies{
		Accounts: accounts,
		Hasher:   hasher,
		Tokens:   codec,
		Mailer:   delivery,
		Clock:    clock,
		Cache:    identityCache,
		Metrics:  counters,
	}, auth.Settings{
		ResetTTL:    cfg.Credentials.ResetTTL,
		FrontendURL: cfg.FrontendURL,
	})
	accountService := account.NewService(accounts, identityCache, clock)

	guard := middleware.RequireSession(codec, authService)
	liveness, readiness := api.NewHealthHandlers(healthDeps, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, guard),
		Account:   account.NewHandler(accountService, guard),
	})

	// ── 8. Internal Metrics Listener (optional) ──────────────────────────
	var metricsServer *api.MetricsServer
	var metricsErr <-chan error
	if cfg.MetricsEnabled() {
		metricsServer = api.NewMetricsServer(cfg.MetricsAddr, counters.Handler(), log)
		metricsErr, err = metricsServer.Start()
		must(log, err, "start metrics listener")
	}

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	case err, ok := <-metricsErr:
		if ok {
			log.Error("metrics_server_error", slog.Any("error", err))
		}
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if metricsServer != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		if err := metricsServer.Stop(stopCtx); err != nil {
			log.Error("metrics_shutdown_error", slog.Any("error", err))
		}
		stopCancel()
	}

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the process-wide JSON logger and installs it as default.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", "passport"))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
