package clinic

import (
	"context"
	"errors"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPaymentNotFound     = errors.New("payment not found")

	// ErrValidation wraps every failure caused by missing or malformed input.
	ErrValidation = errors.New("validation failed")

	ErrSlotNotSelected     = validationError("select a time slot to schedule the appointment")
	ErrPatientNotSelected  = validationError("select a patient to schedule the appointment")
	ErrPatientNameRequired = validationError("patient name is required")
	ErrInvalidTime         = validationError("time must use the HH:MM format")
	ErrInvalidAmount       = validationError("payment amount must be greater than zero")
	ErrInvalidStatus       = validationError("invalid status")
)

type validationErr struct{ msg string }

func validationError(msg string) error { return &validationErr{msg: msg} }

func (e *validationErr) Error() string { return e.msg }

func (e *validationErr) Unwrap() error { return ErrValidation }

// Repository is the durable mirror of the dataset.
type Repository interface {
	// Load reads every collection. Unreadable collections fall back to
	// defaults inside the implementation, so an error means the store itself
	// is unreachable.
	Load(ctx context.Context) (*Dataset, error)

	// Commit writes the collections named in changes as one atomic unit.
	Commit(ctx context.Context, data *Dataset, changes Changeset) error

	Ping(ctx context.Context) error
}

// Locker serialises mutations of one profile.
type Locker interface {
	WithLock(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier delivers user-facing confirmations and validation messages.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
