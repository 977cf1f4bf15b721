package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

const dashboardNextLimit = 4

func weekHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := svc.Now()
		if raw := r.URL.Query().Get("date"); raw != "" {
			day, err := parseDay(svc, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
				return
			}
			date = day
		}
		writeJSON(w, http.StatusOK, toWeekResponse(svc.Week(date)))
	}
}

func dashboardHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := svc.Now()
		fin := svc.FinancialSummary(now)
		appts := svc.AppointmentSummary(now)

		writeJSON(w, http.StatusOK, DashboardResponse{
			Financial: FinancialSummaryResponse{
				ThisMonth: fin.ThisMonth.StringFixed(2),
				LastMonth: fin.LastMonth.StringFixed(2),
				Pending:   fin.Pending.StringFixed(2),
				Growth:    fin.Growth,
			},
			Appointments: AppointmentSummaryResponse{
				Today:     appts.Today,
				Upcoming:  appts.Upcoming,
				Completed: appts.Completed,
				Canceled:  appts.Canceled,
			},
			Next: toAppointmentResponses(svc.NextAppointments(now, dashboardNextLimit)),
		})
	}
}

func listSlotsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots := svc.AvailableSlots()
		resp := make([]SlotResponse, 0, len(slots))
		for _, s := range slots {
			resp = append(resp, toSlotResponse(s))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func checkSlotHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		day, err := parseDay(svc, q.Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, SlotCheckResponse{
			Date:      q.Get("date"),
			Time:      q.Get("time"),
			Available: svc.IsSlotAvailable(day, q.Get("time")),
		})
	}
}

func addSlotHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SlotRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		day, err := parseDay(svc, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}

		if err := svc.AddSlotAvailability(r.Context(), day, req.Time); err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSlotResponse(clinic.AvailableSlot{
			Day:  int(day.Weekday()),
			Time: req.Time,
		}))
	}
}

func removeSlotHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		day, err := parseDay(svc, q.Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			return
		}

		if err := svc.RemoveSlotAvailability(r.Context(), day, q.Get("time")); err != nil {
			handleServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var appts []clinic.Appointment
		if patientID := r.URL.Query().Get("patient_id"); patientID != "" {
			appts = svc.PatientAppointments(patientID)
		} else {
			appts = svc.Appointments()
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

func scheduleAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScheduleAppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		in := clinic.BookingInput{PatientID: req.PatientID, Notes: req.Notes, Recurring: req.Recurring}
		if req.Date != "" || req.Time != "" {
			day, err := parseDay(svc, req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
				return
			}
			in.Slot = &clinic.SlotSelection{Day: day, Time: req.Time}
		}

		created, err := svc.ScheduleNewAppointment(r.Context(), in)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAppointmentResponses(created))
	}
}

func reserveSlotHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReserveSlotRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		in := clinic.ReservationInput{Notes: req.Notes}
		if req.Date != "" || req.Time != "" {
			day, err := parseDay(svc, req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
				return
			}
			in.Slot = &clinic.SlotSelection{Day: day, Time: req.Time}
		}

		created, err := svc.ReserveTimeSlot(r.Context(), in)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAppointmentResponse(created))
	}
}

func getAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, err := svc.GetAppointment(chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func updateAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateAppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		appt, err := svc.UpdateAppointment(r.Context(), chi.URLParam(r, "id"), clinic.AppointmentUpdate{
			PatientID: req.PatientID,
			Notes:     req.Notes,
			Recurring: req.Recurring,
		})
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

// transitionHandler serves the cancel, complete and no-show endpoints.
func transitionHandler(fn func(context.Context, string) (clinic.Appointment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, err := fn(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}
