package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

const dayLayout = "2006-01-02"

type SlotRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type ScheduleAppointmentRequest struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	PatientID string `json:"patient_id"`
	Notes     string `json:"notes"`
	Recurring bool   `json:"recurring"`
}

type ReserveSlotRequest struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Notes string `json:"notes"`
}

type UpdateAppointmentRequest struct {
	PatientID string `json:"patient_id"`
	Notes     string `json:"notes"`
	Recurring bool   `json:"recurring"`
}

type CreatePatientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

// UpdatePatientRequest carries only the fields being edited.
type UpdatePatientRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Phone  *string `json:"phone"`
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type RecordPaymentRequest struct {
	PatientID     string          `json:"patient_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date,omitempty"`
	Status        string          `json:"status,omitempty"`
	AppointmentID *string         `json:"appointment_id,omitempty"`
	Method        string          `json:"method"`
	Notes         string          `json:"notes"`
}

type AppointmentResponse struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	Date        time.Time `json:"date"`
	Duration    int       `json:"duration"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	Paid        bool      `json:"paid"`
	IsRecurring bool      `json:"is_recurring"`
}

type SlotResponse struct {
	Day     int    `json:"day"`
	Weekday string `json:"weekday"`
	Time    string `json:"time"`
}

type SlotCheckResponse struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type PatientResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Status          string     `json:"status"`
	StartDate       time.Time  `json:"start_date"`
	TotalSessions   int        `json:"total_sessions"`
	NextAppointment *time.Time `json:"next_appointment,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

type PaymentResponse struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patient_id"`
	PatientName   string    `json:"patient_name"`
	Amount        string    `json:"amount"`
	Date          time.Time `json:"date"`
	Status        string    `json:"status"`
	AppointmentID *string   `json:"appointment_id,omitempty"`
	Method        string    `json:"method,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

type PaymentListResponse struct {
	Payments  []PaymentResponse `json:"payments"`
	TotalPaid string            `json:"total_paid"`
}

type CellResponse struct {
	Time        string               `json:"time"`
	State       string               `json:"state"`
	Appointment *AppointmentResponse `json:"appointment,omitempty"`
}

type DayResponse struct {
	Date    string         `json:"date"`
	Weekday string         `json:"weekday"`
	Cells   []CellResponse `json:"cells"`
}

type WeekResponse struct {
	Start string        `json:"start"`
	Days  []DayResponse `json:"days"`
}

type FinancialSummaryResponse struct {
	ThisMonth string  `json:"this_month"`
	LastMonth string  `json:"last_month"`
	Pending   string  `json:"pending"`
	Growth    float64 `json:"growth"`
}

type AppointmentSummaryResponse struct {
	Today     int `json:"today"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
	Canceled  int `json:"canceled"`
}

type DashboardResponse struct {
	Financial    FinancialSummaryResponse   `json:"financial"`
	Appointments AppointmentSummaryResponse `json:"appointments"`
	Next         []AppointmentResponse      `json:"next"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(a clinic.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		PatientID:   a.PatientID,
		PatientName: a.PatientName,
		Date:        a.Date,
		Duration:    a.Duration,
		Status:      string(a.Status),
		Notes:       a.Notes,
		Paid:        a.Paid,
		IsRecurring: a.IsRecurring,
	}
}

func toAppointmentResponses(in []clinic.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(in))
	for _, a := range in {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

func toSlotResponse(s clinic.AvailableSlot) SlotResponse {
	return SlotResponse{Day: s.Day, Weekday: time.Weekday(s.Day).String(), Time: s.Time}
}

func toPatientResponse(p clinic.Patient) PatientResponse {
	return PatientResponse{
		ID:              p.ID,
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		Status:          string(p.Status),
		StartDate:       p.StartDate,
		TotalSessions:   p.TotalSessions,
		NextAppointment: p.NextAppointment,
		Notes:           p.Notes,
	}
}

func toPaymentResponse(p clinic.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		PatientID:     p.PatientID,
		PatientName:   p.PatientName,
		Amount:        p.Amount.StringFixed(2),
		Date:          p.Date,
		Status:        string(p.Status),
		AppointmentID: p.AppointmentID,
		Method:        p.Method,
		Notes:         p.Notes,
	}
}

func toWeekResponse(w clinic.WeekView) WeekResponse {
	resp := WeekResponse{Start: w.Start.Format(dayLayout), Days: make([]DayResponse, 0, len(w.Days))}
	for _, d := range w.Days {
		day := DayResponse{
			Date:    d.Date.Format(dayLayout),
			Weekday: d.Date.Weekday().String(),
			Cells:   make([]CellResponse, 0, len(d.Cells)),
		}
		for _, c := range d.Cells {
			cell := CellResponse{Time: c.Time, State: string(c.State)}
			if c.Appointment != nil {
				a := toAppointmentResponse(*c.Appointment)
				cell.Appointment = &a
			}
			day.Cells = append(day.Cells, cell)
		}
		resp.Days = append(resp.Days, day)
	}
	return resp
}
