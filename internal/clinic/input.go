package clinic

import (
	"time"

	"github.com/shopspring/decimal"
)

// SlotSelection is a cell picked on the weekly grid.
type SlotSelection struct {
	Day  time.Time
	Time string
}

type BookingInput struct {
	Slot      *SlotSelection
	PatientID string
	Notes     string
	Recurring bool
}

type ReservationInput struct {
	Slot  *SlotSelection
	Notes string
}

type AppointmentUpdate struct {
	PatientID string
	Notes     string
	Recurring bool
}

type NewPatientInput struct {
	Name  string
	Email string
	Phone string
	Notes string
}

type NewPaymentInput struct {
	PatientID     string
	Amount        decimal.Decimal
	Date          time.Time // zero means now
	Status        PaymentStatus
	AppointmentID *string
	Method        string
	Notes         string
}

type PaymentFilter struct {
	Query  string
	Status PaymentStatus // empty means all
	Date   *time.Time    // calendar day match
}
