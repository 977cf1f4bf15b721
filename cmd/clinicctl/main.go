package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-calendar/internal/app"
	"github.com/hackgods/clinic-calendar/internal/clinic"
	"github.com/hackgods/clinic-calendar/internal/config"
)

// clinicApp is opened before every subcommand runs.
var clinicApp *app.App

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if clinicApp != nil {
			clinicApp.Close()
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "clinicctl",
		Short:         "Manage a clinic profile: availability, appointments, patients and payments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// stdout carries command output
			logger := app.NewLogger(cfg, cmd.ErrOrStderr())
			clinicApp, err = app.Open(cmd.Context(), cfg, logger)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if clinicApp != nil {
				clinicApp.Close()
				clinicApp = nil
			}
		},
	}

	rootCmd.AddCommand(weekCmd())
	rootCmd.AddCommand(slotsCmd())
	rootCmd.AddCommand(bookCmd())
	rootCmd.AddCommand(reserveCmd())
	rootCmd.AddCommand(appointmentsCmd())
	rootCmd.AddCommand(patientsCmd())
	rootCmd.AddCommand(paymentsCmd())
	rootCmd.AddCommand(dashboardCmd())
	return rootCmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDay reads a YYYY-MM-DD flag in the clinic time zone. Empty means today.
func parseDay(raw string) (time.Time, error) {
	svc := clinicApp.Service
	if raw == "" {
		return svc.Now(), nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, svc.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must use the YYYY-MM-DD format", raw)
	}
	return day, nil
}

func newCalendar() *clinic.Calendar {
	return clinic.NewCalendar(clinicApp.Service)
}
