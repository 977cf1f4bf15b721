package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

type Options struct {
	Location *time.Location
	// SeedPatients supplies the patients used when the stored collection is
	// missing or unreadable.
	SeedPatients func() []clinic.Patient
	Logger       zerolog.Logger
}

// Repository is the persistence adapter: it maps the dataset to JSON
// documents in a KV backend.
type Repository struct {
	kv     KV
	loc    *time.Location
	seed   func() []clinic.Patient
	log    zerolog.Logger
	tracer trace.Tracer
}

var _ clinic.Repository = (*Repository)(nil)

func NewRepository(kv KV, opts Options) *Repository {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.SeedPatients == nil {
		opts.SeedPatients = func() []clinic.Patient { return nil }
	}
	return &Repository{
		kv:     kv,
		loc:    opts.Location,
		seed:   opts.SeedPatients,
		log:    opts.Logger.With().Str("component", "storage").Logger(),
		tracer: otel.Tracer("github.com/hackgods/clinic-calendar/internal/storage"),
	}
}

// Load reads every collection. A missing or malformed collection is logged
// and replaced by its default: empty, or the seed dataset for patients.
func (r *Repository) Load(ctx context.Context) (*clinic.Dataset, error) {
	ctx, span := r.tracer.Start(ctx, "storage.Load")
	defer span.End()

	raw, err := r.kv.Get(ctx, allKeys)
	if errors.Is(err, ErrCorrupt) {
		r.log.Warn().Err(err).Msg("stored profile unreadable, using defaults")
		raw = map[string][]byte{}
	} else if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("read store: %w", err)
	}

	data := &clinic.Dataset{}

	if b, ok := raw[KeyAppointments]; ok {
		data.Appointments, err = decodeCollection[clinic.Appointment, appointmentRecord](b, r.loc)
		if err != nil {
			r.log.Warn().Err(err).Str("key", KeyAppointments).Msg("discarding unreadable collection")
			data.Appointments = nil
		}
	}

	if b, ok := raw[KeyAvailableSlots]; ok {
		data.AvailableSlots, err = decodeCollection[clinic.AvailableSlot, slotRecord](b, r.loc)
		if err != nil {
			r.log.Warn().Err(err).Str("key", KeyAvailableSlots).Msg("discarding unreadable collection")
			data.AvailableSlots = nil
		}
	}

	if b, ok := raw[KeyPayments]; ok {
		data.Payments, err = decodeCollection[clinic.Payment, paymentRecord](b, r.loc)
		if err != nil {
			r.log.Warn().Err(err).Str("key", KeyPayments).Msg("discarding unreadable collection")
			data.Payments = nil
		}
	}

	if b, ok := raw[KeyPatients]; ok {
		data.Patients, err = decodeCollection[clinic.Patient, patientRecord](b, r.loc)
		if err != nil {
			r.log.Warn().Err(err).Str("key", KeyPatients).Msg("unreadable patients, using seed dataset")
			data.Patients = r.seedPatients()
		}
	} else {
		data.Patients = r.seedPatients()
	}

	span.SetAttributes(
		attribute.Int("appointments", len(data.Appointments)),
		attribute.Int("patients", len(data.Patients)),
	)
	return data, nil
}

func (r *Repository) seedPatients() []clinic.Patient {
	seeded := r.seed()
	out := make([]clinic.Patient, len(seeded))
	for i, p := range seeded {
		p.StartDate = p.StartDate.In(r.loc)
		if p.NextAppointment != nil {
			next := p.NextAppointment.In(r.loc)
			p.NextAppointment = &next
		}
		out[i] = p
	}
	return out
}

// Commit encodes the changed collections and writes them in one backend
// operation.
func (r *Repository) Commit(ctx context.Context, data *clinic.Dataset, changes clinic.Changeset) error {
	ctx, span := r.tracer.Start(ctx, "storage.Commit")
	defer span.End()

	values, err := r.encode(data, changes)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int("keys", len(values)))

	if err := r.kv.Put(ctx, values); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

func (r *Repository) encode(data *clinic.Dataset, changes clinic.Changeset) (map[string][]byte, error) {
	values := make(map[string][]byte, len(allKeys))

	var (
		b   []byte
		err error
	)
	if changes.Has(clinic.CollectionAppointments) {
		if b, err = encodeCollection(data.Appointments, toAppointmentRecord); err != nil {
			return nil, fmt.Errorf("encode %s: %w", KeyAppointments, err)
		}
		values[KeyAppointments] = b
	}
	if changes.Has(clinic.CollectionAvailableSlots) {
		if b, err = encodeCollection(data.AvailableSlots, toSlotRecord); err != nil {
			return nil, fmt.Errorf("encode %s: %w", KeyAvailableSlots, err)
		}
		values[KeyAvailableSlots] = b
	}
	if changes.Has(clinic.CollectionPatients) {
		if b, err = encodeCollection(data.Patients, toPatientRecord); err != nil {
			return nil, fmt.Errorf("encode %s: %w", KeyPatients, err)
		}
		values[KeyPatients] = b
	}
	if changes.Has(clinic.CollectionPayments) {
		if b, err = encodeCollection(data.Payments, toPaymentRecord); err != nil {
			return nil, fmt.Errorf("encode %s: %w", KeyPayments, err)
		}
		values[KeyPayments] = b
	}
	return values, nil
}

// Replace writes the whole dataset, used by the seeder.
func (r *Repository) Replace(ctx context.Context, data *clinic.Dataset) error {
	all := clinic.Changeset(clinic.CollectionAppointments).
		With(clinic.CollectionAvailableSlots).
		With(clinic.CollectionPatients).
		With(clinic.CollectionPayments)
	return r.Commit(ctx, data, all)
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.kv.Ping(ctx)
}
