// Command server runs the debate-analysis HTTP API.
//
// Startup order:
//  1. Load .env (best effort) and parse configuration
//  2. Configure zerolog (level, optional pretty console)
//  3. Initialize OpenTelemetry tracing (no-op unless enabled)
//  4. Open the SQLite profile cache and migrate its schema
//  5. Wire fetcher → reasoning client → pipeline → handlers → router
//  6. Serve until SIGINT/SIGTERM, then drain connections gracefully
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/erislabs/go-debate-backend/internal/cache"
	"github.com/erislabs/go-debate-backend/internal/config"
	"github.com/erislabs/go-debate-backend/internal/fetcher"
	httpapi "github.com/erislabs/go-debate-backend/internal/http"
	"github.com/erislabs/go-debate-backend/internal/http/handlers"
	"github.com/erislabs/go-debate-backend/internal/jobs"
	"github.com/erislabs/go-debate-backend/internal/observability"
	"github.com/erislabs/go-debate-backend/internal/pipeline"
	"github.com/erislabs/go-debate-backend/internal/reasoning"
	"github.com/erislabs/go-debate-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := cache.OpenSQLite(cfg.CachePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CachePath).Msg("open profile cache")
	}
	if err := cache.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate profile cache")
	}

	client, err := reasoning.New(cfg.Reasoning)
	if err != nil {
		log.Fatal().Err(err).Msg("reasoning client init failed")
	}

	pipe := pipeline.New(fetcher.NewRedditFetcher(cfg.Fetch), client, db, cfg.Analysis, cfg.CacheTTL)
	h := handlers.New(pipe, jobs.NewStore(), db, cfg.CacheTTL)

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, h, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}

	// Give in-flight requests a window to finish. Background analyses keep
	// running until their own timeout; their results land in the cache.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
