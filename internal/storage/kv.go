package storage

import (
	"context"
	"errors"
)

// Persisted collection keys, shared by every backend.
const (
	KeyAppointments   = "appointments"
	KeyAvailableSlots = "availableSlots"
	KeyPatients       = "patients"
	KeyPayments       = "payments"
)

var allKeys = []string{KeyAppointments, KeyAvailableSlots, KeyPatients, KeyPayments}

// ErrCorrupt is returned by a backend whose stored document cannot be read
// at all. The repository treats it like malformed data in every key.
var ErrCorrupt = errors.New("stored profile is corrupt")

// KV is a per-profile key-value store of JSON documents.
type KV interface {
	// Get returns the raw values of the keys that exist.
	Get(ctx context.Context, keys []string) (map[string][]byte, error)

	// Put writes every value in one atomic operation.
	Put(ctx context.Context, values map[string][]byte) error

	Ping(ctx context.Context) error
}
