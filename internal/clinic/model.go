package clinic

import (
	"time"

	"github.com/shopspring/decimal"
)

type PatientStatus string

const (
	PatientActive   PatientStatus = "active"
	PatientInactive PatientStatus = "inactive"
	PatientWaiting  PatientStatus = "waiting"
)

func (s PatientStatus) Valid() bool {
	switch s {
	case PatientActive, PatientInactive, PatientWaiting:
		return true
	}
	return false
}

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCanceled  AppointmentStatus = "canceled"
	StatusNoShow    AppointmentStatus = "no-show"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCanceled, StatusNoShow:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentPending  PaymentStatus = "pending"
	PaymentOverdue  PaymentStatus = "overdue"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentPending, PaymentOverdue, PaymentRefunded:
		return true
	}
	return false
}

const (
	// ReservedPatientID marks an appointment that blocks a slot without a patient.
	ReservedPatientID   = "reserved"
	ReservedPatientName = "Horário Reservado"

	DefaultDuration = 50 // minutes
	RecurringWeeks  = 8
)

// TimeSlots is the fixed daily grid of bookable start times.
var TimeSlots = []string{
	"08:00", "09:00", "10:00", "11:00", "12:00",
	"13:00", "14:00", "15:00", "16:00", "17:00",
	"18:00", "19:00", "20:00", "21:00", "22:00",
}

type Patient struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	Status          PatientStatus `json:"status"`
	StartDate       time.Time     `json:"startDate"`
	TotalSessions   int           `json:"totalSessions"`
	NextAppointment *time.Time    `json:"nextAppointment,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}

type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patientId"`
	PatientName string            `json:"patientName"` // snapshot at booking time
	Date        time.Time         `json:"date"`
	Duration    int               `json:"duration"` // minutes
	Status      AppointmentStatus `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	Paid        bool              `json:"paid"`
	IsRecurring bool              `json:"isRecurring"`
}

// Reserved reports whether the appointment only holds the slot.
func (a Appointment) Reserved() bool {
	return a.PatientID == ReservedPatientID
}

// AvailableSlot is a recurring weekly opening. Day uses the Sunday-first
// convention of time.Weekday (0 = Sunday ... 6 = Saturday).
type AvailableSlot struct {
	Day  int    `json:"day"`
	Time string `json:"time"` // "HH:MM"
}

type Payment struct {
	ID            string          `json:"id"`
	PatientID     string          `json:"patientId"`
	PatientName   string          `json:"patientName"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Status        PaymentStatus   `json:"status"`
	AppointmentID *string         `json:"appointmentId,omitempty"`
	Method        string          `json:"method,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// Dataset is every collection owned by the state container.
type Dataset struct {
	Appointments   []Appointment
	AvailableSlots []AvailableSlot
	Patients       []Patient
	Payments       []Payment
}

// Clone returns a copy whose slices can be mutated without touching d.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Appointments:   append([]Appointment(nil), d.Appointments...),
		AvailableSlots: append([]AvailableSlot(nil), d.AvailableSlots...),
		Patients:       make([]Patient, len(d.Patients)),
		Payments:       make([]Payment, len(d.Payments)),
	}
	for i, p := range d.Patients {
		if p.NextAppointment != nil {
			t := *p.NextAppointment
			p.NextAppointment = &t
		}
		out.Patients[i] = p
	}
	for i, p := range d.Payments {
		if p.AppointmentID != nil {
			id := *p.AppointmentID
			p.AppointmentID = &id
		}
		out.Payments[i] = p
	}
	return out
}

func (d *Dataset) patientIndex(id string) int {
	for i := range d.Patients {
		if d.Patients[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Dataset) appointmentIndex(id string) int {
	for i := range d.Appointments {
		if d.Appointments[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Dataset) paymentIndex(id string) int {
	for i := range d.Payments {
		if d.Payments[i].ID == id {
			return i
		}
	}
	return -1
}

// Collection names one persisted collection.
type Collection int

const (
	CollectionAppointments Collection = 1 << iota
	CollectionAvailableSlots
	CollectionPatients
	CollectionPayments
)

// Changeset is the set of collections touched by one mutation.
type Changeset Collection

func (c Changeset) With(col Collection) Changeset {
	return c | Changeset(col)
}

func (c Changeset) Has(col Collection) bool {
	return c&Changeset(col) != 0
}

func (c Changeset) Empty() bool {
	return c == 0
}
