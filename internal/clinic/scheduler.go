package clinic

import (
	"context"
	"fmt"
)

// ScheduleNewAppointment books the selected patient into the selected slot.
// Recurring bookings add RecurringWeeks weekly copies after the base date.
// The originating slot is closed and the patient's aggregates updated once.
func (s *Service) ScheduleNewAppointment(ctx context.Context, in BookingInput) ([]Appointment, error) {
	if in.Slot == nil {
		return nil, s.invalid(ctx, ErrSlotNotSelected)
	}
	if in.PatientID == "" {
		return nil, s.invalid(ctx, ErrPatientNotSelected)
	}
	date, err := s.slotTime(*in.Slot)
	if err != nil {
		return nil, s.invalid(ctx, err)
	}

	var (
		created []Appointment
		patient Patient
	)
	err = s.mutate(ctx, "schedule appointment", func(d *Dataset) (Changeset, error) {
		idx := d.patientIndex(in.PatientID)
		if idx < 0 {
			return 0, ErrPatientNotFound
		}
		patient = d.Patients[idx]

		base := Appointment{
			ID:          s.ids.next("a"),
			PatientID:   patient.ID,
			PatientName: patient.Name,
			Date:        date,
			Duration:    s.duration,
			Status:      StatusScheduled,
			Notes:       in.Notes,
			Paid:        false,
			IsRecurring: in.Recurring,
		}
		created = []Appointment{base}
		if in.Recurring {
			created = append(created, recurringInstances(base)...)
		}
		d.Appointments = append(d.Appointments, created...)

		d.AvailableSlots, _ = withoutSlot(d.AvailableSlots, s.weekday(date), in.Slot.Time)

		next := date
		d.Patients[idx].NextAppointment = &next
		d.Patients[idx].TotalSessions++

		return Changeset(CollectionAppointments).
			With(CollectionAvailableSlots).
			With(CollectionPatients), nil
	})
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("%s - %s at %s", patient.Name, formatDay(date), in.Slot.Time)
	if in.Recurring {
		desc += " (recurring)"
	}
	s.notify(ctx, NotifyInfo, "Appointment scheduled", desc)
	return created, nil
}

// recurringInstances copies base once per week for the following weeks.
func recurringInstances(base Appointment) []Appointment {
	out := make([]Appointment, 0, RecurringWeeks)
	for week := 1; week <= RecurringWeeks; week++ {
		a := base
		a.ID = recurringID(base.ID, week)
		a.Date = base.Date.AddDate(0, 0, 7*week)
		a.IsRecurring = true
		out = append(out, a)
	}
	return out
}

// ReserveTimeSlot blocks the selected slot with a patient-less appointment.
func (s *Service) ReserveTimeSlot(ctx context.Context, in ReservationInput) (Appointment, error) {
	if in.Slot == nil {
		return Appointment{}, s.invalid(ctx, ErrSlotNotSelected)
	}
	date, err := s.slotTime(*in.Slot)
	if err != nil {
		return Appointment{}, s.invalid(ctx, err)
	}

	var created Appointment
	err = s.mutate(ctx, "reserve slot", func(d *Dataset) (Changeset, error) {
		created = Appointment{
			ID:          s.ids.next("a"),
			PatientID:   ReservedPatientID,
			PatientName: ReservedPatientName,
			Date:        date,
			Duration:    s.duration,
			Status:      StatusScheduled,
			Notes:       in.Notes,
		}
		d.Appointments = append(d.Appointments, created)
		d.AvailableSlots, _ = withoutSlot(d.AvailableSlots, s.weekday(date), in.Slot.Time)
		return Changeset(CollectionAppointments).With(CollectionAvailableSlots), nil
	})
	if err != nil {
		return Appointment{}, err
	}

	s.notify(ctx, NotifyInfo, "Time slot reserved", fmt.Sprintf("%s at %s", formatDay(date), in.Slot.Time))
	return created, nil
}

// UpdateAppointment rewrites the patient link, notes and recurring flag.
// Status, payment and date are left alone. The patient name is refreshed
// only when upd.PatientID names a known patient.
func (s *Service) UpdateAppointment(ctx context.Context, id string, upd AppointmentUpdate) (Appointment, error) {
	var updated Appointment
	err := s.mutate(ctx, "update appointment", func(d *Dataset) (Changeset, error) {
		idx := d.appointmentIndex(id)
		if idx < 0 {
			return 0, ErrAppointmentNotFound
		}
		a := &d.Appointments[idx]
		if upd.PatientID != "" {
			a.PatientID = upd.PatientID
			if p := d.patientIndex(upd.PatientID); p >= 0 {
				a.PatientName = d.Patients[p].Name
			}
		}
		a.Notes = upd.Notes
		a.IsRecurring = upd.Recurring
		updated = *a
		return Changeset(CollectionAppointments), nil
	})
	if err != nil {
		return Appointment{}, err
	}

	s.notify(ctx, NotifyInfo, "Appointment updated", "The appointment details were updated.")
	return updated, nil
}

func (s *Service) CancelAppointment(ctx context.Context, id string) (Appointment, error) {
	a, err := s.setStatus(ctx, id, StatusCanceled, false)
	if err != nil {
		return Appointment{}, err
	}
	s.notify(ctx, NotifyInfo, "Appointment canceled", "The appointment was canceled.")
	return a, nil
}

func (s *Service) MarkNoShow(ctx context.Context, id string) (Appointment, error) {
	a, err := s.setStatus(ctx, id, StatusNoShow, false)
	if err != nil {
		return Appointment{}, err
	}
	s.notify(ctx, NotifyInfo, "No-show", "The patient was marked as a no-show.")
	return a, nil
}

// CompleteAppointment marks the appointment completed and paid and counts
// one more session for its patient. Each call counts again, on top of the
// session already counted when the appointment was booked.
func (s *Service) CompleteAppointment(ctx context.Context, id string) (Appointment, error) {
	a, err := s.setStatus(ctx, id, StatusCompleted, true)
	if err != nil {
		return Appointment{}, err
	}
	s.notify(ctx, NotifyInfo, "Appointment completed", "The appointment was marked as completed and paid.")
	return a, nil
}

func (s *Service) setStatus(ctx context.Context, id string, status AppointmentStatus, complete bool) (Appointment, error) {
	var updated Appointment
	err := s.mutate(ctx, "set appointment "+string(status), func(d *Dataset) (Changeset, error) {
		idx := d.appointmentIndex(id)
		if idx < 0 {
			return 0, ErrAppointmentNotFound
		}
		a := &d.Appointments[idx]
		a.Status = status
		changes := Changeset(CollectionAppointments)

		if complete {
			a.Paid = true
			if !a.Reserved() {
				if p := d.patientIndex(a.PatientID); p >= 0 {
					d.Patients[p].TotalSessions++
					changes = changes.With(CollectionPatients)
				}
			}
		}
		updated = *a
		return changes, nil
	})
	return updated, err
}

func (s *Service) Appointments() []Appointment {
	var out []Appointment
	s.read(func(d *Dataset) {
		out = append(out, d.Appointments...)
	})
	return out
}

func (s *Service) GetAppointment(id string) (Appointment, error) {
	var (
		a   Appointment
		err = ErrAppointmentNotFound
	)
	s.read(func(d *Dataset) {
		if idx := d.appointmentIndex(id); idx >= 0 {
			a, err = d.Appointments[idx], nil
		}
	})
	return a, err
}
