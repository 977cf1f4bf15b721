package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

// The record types mirror the browser's localStorage documents: camelCase
// fields and ISO-8601 date strings.

type appointmentRecord struct {
	ID          string `json:"id"`
	PatientID   string `json:"patientId"`
	PatientName string `json:"patientName"`
	Date        string `json:"date"`
	Duration    int    `json:"duration"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
	Paid        bool   `json:"paid"`
	IsRecurring bool   `json:"isRecurring,omitempty"`
}

type slotRecord struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

type patientRecord struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Status          string  `json:"status"`
	StartDate       string  `json:"startDate"`
	TotalSessions   int     `json:"totalSessions"`
	NextAppointment *string `json:"nextAppointment"`
	Notes           string  `json:"notes"`
}

type paymentRecord struct {
	ID            string      `json:"id"`
	PatientID     string      `json:"patientId"`
	PatientName   string      `json:"patientName"`
	Amount        json.Number `json:"amount"`
	Date          string      `json:"date"`
	Status        string      `json:"status"`
	AppointmentID *string     `json:"appointmentId"`
	Method        string      `json:"method"`
	Notes         string      `json:"notes"`
}

// isoLayout matches Date.prototype.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// parseTime rehydrates a stored date into loc. Date-only values are
// midnight in loc.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func toAppointmentRecord(a clinic.Appointment) appointmentRecord {
	return appointmentRecord{
		ID:          a.ID,
		PatientID:   a.PatientID,
		PatientName: a.PatientName,
		Date:        formatTime(a.Date),
		Duration:    a.Duration,
		Status:      string(a.Status),
		Notes:       a.Notes,
		Paid:        a.Paid,
		IsRecurring: a.IsRecurring,
	}
}

func (r appointmentRecord) toModel(loc *time.Location) (clinic.Appointment, error) {
	date, err := parseTime(r.Date, loc)
	if err != nil {
		return clinic.Appointment{}, fmt.Errorf("appointment %s: %w", r.ID, err)
	}
	duration := r.Duration
	if duration <= 0 {
		duration = clinic.DefaultDuration
	}
	return clinic.Appointment{
		ID:          r.ID,
		PatientID:   r.PatientID,
		PatientName: r.PatientName,
		Date:        date,
		Duration:    duration,
		Status:      clinic.AppointmentStatus(r.Status),
		Notes:       r.Notes,
		Paid:        r.Paid,
		IsRecurring: r.IsRecurring,
	}, nil
}

func toSlotRecord(s clinic.AvailableSlot) slotRecord {
	return slotRecord{Day: s.Day, Time: s.Time}
}

func (r slotRecord) toModel(*time.Location) (clinic.AvailableSlot, error) {
	if r.Day < 0 || r.Day > 6 {
		return clinic.AvailableSlot{}, fmt.Errorf("slot day %d out of range", r.Day)
	}
	return clinic.AvailableSlot{Day: r.Day, Time: r.Time}, nil
}

func toPatientRecord(p clinic.Patient) patientRecord {
	rec := patientRecord{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		Phone:         p.Phone,
		Status:        string(p.Status),
		StartDate:     formatTime(p.StartDate),
		TotalSessions: p.TotalSessions,
		Notes:         p.Notes,
	}
	if p.NextAppointment != nil {
		next := formatTime(*p.NextAppointment)
		rec.NextAppointment = &next
	}
	return rec
}

func (r patientRecord) toModel(loc *time.Location) (clinic.Patient, error) {
	start, err := parseTime(r.StartDate, loc)
	if err != nil {
		return clinic.Patient{}, fmt.Errorf("patient %s start date: %w", r.ID, err)
	}
	p := clinic.Patient{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Status:        clinic.PatientStatus(r.Status),
		StartDate:     start,
		TotalSessions: r.TotalSessions,
		Notes:         r.Notes,
	}
	if r.NextAppointment != nil && *r.NextAppointment != "" {
		next, err := parseTime(*r.NextAppointment, loc)
		if err != nil {
			return clinic.Patient{}, fmt.Errorf("patient %s next appointment: %w", r.ID, err)
		}
		p.NextAppointment = &next
	}
	return p, nil
}

func toPaymentRecord(p clinic.Payment) paymentRecord {
	return paymentRecord{
		ID:            p.ID,
		PatientID:     p.PatientID,
		PatientName:   p.PatientName,
		Amount:        json.Number(p.Amount.StringFixed(2)),
		Date:          formatTime(p.Date),
		Status:        string(p.Status),
		AppointmentID: p.AppointmentID,
		Method:        p.Method,
		Notes:         p.Notes,
	}
}

func (r paymentRecord) toModel(loc *time.Location) (clinic.Payment, error) {
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return clinic.Payment{}, fmt.Errorf("payment %s amount: %w", r.ID, err)
	}
	date, err := parseTime(r.Date, loc)
	if err != nil {
		return clinic.Payment{}, fmt.Errorf("payment %s: %w", r.ID, err)
	}
	return clinic.Payment{
		ID:            r.ID,
		PatientID:     r.PatientID,
		PatientName:   r.PatientName,
		Amount:        amount,
		Date:          date,
		Status:        clinic.PaymentStatus(r.Status),
		AppointmentID: r.AppointmentID,
		Method:        r.Method,
		Notes:         r.Notes,
	}, nil
}

type modelRecord[T any] interface {
	toModel(loc *time.Location) (T, error)
}

// decodeCollection parses a stored JSON array and rehydrates every record.
// Any failure rejects the whole collection.
func decodeCollection[T any, R modelRecord[T]](raw []byte, loc *time.Location) ([]T, error) {
	var recs []R
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		m, err := rec.toModel(loc)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func encodeCollection[T any, R any](items []T, conv func(T) R) ([]byte, error) {
	recs := make([]R, 0, len(items))
	for _, it := range items {
		recs = append(recs, conv(it))
	}
	return json.Marshal(recs)
}
