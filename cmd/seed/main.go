package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-calendar/internal/app"
	"github.com/hackgods/clinic-calendar/internal/clinic"
	"github.com/hackgods/clinic-calendar/internal/config"
	"github.com/hackgods/clinic-calendar/internal/seed"
)

func main() {
	patients := flag.Int("patients", 25, "number of fake patients")
	weeks := flag.Int("weeks", 4, "weeks of appointments before and after today")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		l := app.NewLogger(config.Config{Env: os.Getenv("APP_ENV")}, os.Stdout)
		l.Fatal().Err(err).Msg("config load error")
	}
	logger := app.NewLogger(cfg, os.Stdout)
	logger.Info().Str("backend", cfg.StoreBackend).Str("profile", cfg.Profile).Msg("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, err := run(ctx, cfg, logger, *patients, *weeks)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed failed")
	}

	logger.Info().
		Int("patients", len(data.Patients)).
		Int("slots", len(data.AvailableSlots)).
		Int("appointments", len(data.Appointments)).
		Int("payments", len(data.Payments)).
		Msg("seed complete")
}

// run replaces the profile's stored collections with a generated dataset.
func run(ctx context.Context, cfg config.Config, logger zerolog.Logger, patients, weeks int) (*clinic.Dataset, error) {
	clinicApp, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open profile: %w", err)
	}
	defer clinicApp.Close()

	data := seed.New(cfg.Seed, clinicApp.Service.Location(), time.Now()).Dataset(patients, weeks)
	if err := clinicApp.Repo.Replace(ctx, data); err != nil {
		return nil, fmt.Errorf("write dataset: %w", err)
	}
	return data, nil
}
