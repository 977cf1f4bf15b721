package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-calendar/internal/api"
	"github.com/hackgods/clinic-calendar/internal/app"
	"github.com/hackgods/clinic-calendar/internal/clinic"
	"github.com/hackgods/clinic-calendar/internal/config"
	"github.com/hackgods/clinic-calendar/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger level depends on config; fall back to defaults to report this
		l := app.NewLogger(config.Config{Env: os.Getenv("APP_ENV")}, os.Stdout)
		l.Fatal().Err(err).Msg("config load error")
	}

	logger := app.NewLogger(cfg, os.Stdout)
	logger.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("backend", cfg.StoreBackend).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(rootCtx, "clinic-calendar", cfg.ServiceVersion, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("tracer init error")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown error")
		}
	}()

	clinicApp, err := app.Open(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open profile error")
	}
	defer clinicApp.Close()

	srv := newServer(cfg, clinicApp.Service, logger)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("shutting down api-server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newServer(cfg config.Config, svc *clinic.Service, logger zerolog.Logger) *http.Server {
	return &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterConfig{
			Service: svc,
			Logger:  logger,
			Env:     cfg.Env,
			Version: cfg.ServiceVersion,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
