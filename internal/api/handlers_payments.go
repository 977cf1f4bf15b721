package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

func listPaymentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := clinic.PaymentFilter{
			Query:  q.Get("q"),
			Status: clinic.PaymentStatus(q.Get("status")),
		}
		if raw := q.Get("date"); raw != "" {
			day, err := parseDay(svc, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
				return
			}
			filter.Date = &day
		}

		payments, total := svc.ListPayments(filter)
		resp := PaymentListResponse{
			Payments:  make([]PaymentResponse, 0, len(payments)),
			TotalPaid: total.StringFixed(2),
		}
		for _, p := range payments {
			resp.Payments = append(resp.Payments, toPaymentResponse(p))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func recordPaymentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecordPaymentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		in := clinic.NewPaymentInput{
			PatientID:     req.PatientID,
			Amount:        req.Amount,
			Status:        clinic.PaymentStatus(req.Status),
			AppointmentID: req.AppointmentID,
			Method:        req.Method,
			Notes:         req.Notes,
		}
		if req.Date != "" {
			day, err := parseDay(svc, req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
				return
			}
			in.Date = day
		}

		p, err := svc.RecordPayment(r.Context(), in)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPaymentResponse(p))
	}
}

func setPaymentStatusHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := svc.SetPaymentStatus(r.Context(), chi.URLParam(r, "id"), clinic.PaymentStatus(req.Status))
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPaymentResponse(p))
	}
}
