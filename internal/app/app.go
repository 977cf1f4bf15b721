package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-calendar/internal/clinic"
	"github.com/hackgods/clinic-calendar/internal/config"
	"github.com/hackgods/clinic-calendar/internal/db"
	"github.com/hackgods/clinic-calendar/internal/notify"
	redisclient "github.com/hackgods/clinic-calendar/internal/redis"
	"github.com/hackgods/clinic-calendar/internal/seed"
	"github.com/hackgods/clinic-calendar/internal/storage"
)

// App is a loaded clinic profile with the connections backing it.
type App struct {
	Service *clinic.Service
	Repo    *storage.Repository

	log     zerolog.Logger
	closers []func() error
}

// NewLogger builds the process logger: JSON lines, or a console writer in dev.
func NewLogger(cfg config.Config, out io.Writer) zerolog.Logger {
	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// Open connects the configured backend, wires notifiers and loads the
// profile into a Service.
func Open(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &App{log: logger}

	kv, locker, err := a.openStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Repo = storage.NewRepository(kv, storage.Options{
		Location:     loc,
		SeedPatients: seedPatients(cfg, loc),
		Logger:       logger,
	})

	notifiers := notify.Multi{notify.NewLog(logger)}
	if cfg.AMQPURL != "" {
		pub, err := notify.NewAMQP(cfg.AMQPURL, cfg.AMQPExchange, cfg.Profile)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		a.closers = append(a.closers, pub.Close)
		notifiers = append(notifiers, pub)
		logger.Info().Str("exchange", cfg.AMQPExchange).Msg("publishing notifications to rabbitmq")
	}

	a.Service = clinic.NewService(a.Repo, notifiers, clinic.Options{
		Location:      loc,
		Duration:      cfg.DurationMinutes(),
		Locker:        locker,
		ReloadOnWrite: locker != nil,
		Logger:        logger,
	})
	if err := a.Service.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}

	logger.Info().
		Str("backend", cfg.StoreBackend).
		Str("profile", cfg.Profile).
		Str("timezone", loc.String()).
		Msg("profile loaded")
	return a, nil
}

// openStore returns the KV backend and, for shared backends, a cross-process
// locker. The in-process default is used when the locker is nil.
func (a *App) openStore(ctx context.Context, cfg config.Config) (storage.KV, clinic.Locker, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return storage.NewMemory(), nil, nil

	case config.BackendFile:
		f, err := storage.NewFile(cfg.DataDir, cfg.Profile)
		if err != nil {
			return nil, nil, err
		}
		a.log.Info().Str("path", f.Path()).Msg("using file store")
		return f, nil, nil

	case config.BackendRedis:
		rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("redis connection error: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		a.log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")
		locker := redisclient.NewProfileLocker(rdb, cfg.Profile, cfg.LockTTL, cfg.LockWait)
		return storage.NewRedis(rdb, cfg.Profile), locker, nil

	case config.BackendPostgres:
		pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connection error: %w", err)
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		if err := db.EnsureSchema(pgCtx, pool); err != nil {
			return nil, nil, err
		}
		a.log.Info().Msg("connected to Postgres")
		return storage.NewPostgres(pool, cfg.Profile), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func seedPatients(cfg config.Config, loc *time.Location) func() []clinic.Patient {
	if cfg.SeedPatients == 0 {
		return nil
	}
	return func() []clinic.Patient {
		return seed.New(cfg.Seed, loc, time.Now()).Patients(cfg.SeedPatients)
	}
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("error closing connection")
		}
	}
	a.closers = nil
}
