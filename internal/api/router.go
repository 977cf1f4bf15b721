package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

type RouterConfig struct {
	Service *clinic.Service
	Logger  zerolog.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(TracingMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.Service, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	svc := cfg.Service

	r.Get("/calendar/week", weekHandler(svc))
	r.Get("/dashboard", dashboardHandler(svc))

	r.Route("/slots", func(r chi.Router) {
		r.Get("/", listSlotsHandler(svc))
		r.Post("/", addSlotHandler(svc))
		r.Delete("/", removeSlotHandler(svc))
		r.Get("/check", checkSlotHandler(svc))
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", listAppointmentsHandler(svc))
		r.Post("/", scheduleAppointmentHandler(svc))
		r.Post("/reserve", reserveSlotHandler(svc))
		r.Get("/{id}", getAppointmentHandler(svc))
		r.Put("/{id}", updateAppointmentHandler(svc))
		r.Post("/{id}/cancel", transitionHandler(svc.CancelAppointment))
		r.Post("/{id}/complete", transitionHandler(svc.CompleteAppointment))
		r.Post("/{id}/no-show", transitionHandler(svc.MarkNoShow))
	})

	r.Route("/patients", func(r chi.Router) {
		r.Get("/", listPatientsHandler(svc))
		r.Post("/", createPatientHandler(svc))
		r.Get("/{id}", getPatientHandler(svc))
		r.Put("/{id}", updatePatientHandler(svc))
		r.Put("/{id}/notes", updateNotesHandler(svc))
		r.Put("/{id}/status", setPatientStatusHandler(svc))
		r.Get("/{id}/appointments", patientAppointmentsHandler(svc))
	})

	r.Route("/payments", func(r chi.Router) {
		r.Get("/", listPaymentsHandler(svc))
		r.Post("/", recordPaymentHandler(svc))
		r.Put("/{id}/status", setPaymentStatusHandler(svc))
	})

	return r
}
