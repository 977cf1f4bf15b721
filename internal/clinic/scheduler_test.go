package clinic

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func bookingFixture() *Dataset {
	return &Dataset{
		Patients:       []Patient{patientFixture("p1", "Ana"), patientFixture("p2", "Bruno")},
		AvailableSlots: []AvailableSlot{{Day: 1, Time: "09:00"}, {Day: 3, Time: "14:00"}},
	}
}

func TestScheduleNewAppointment_SingleBooking(t *testing.T) {
	svc, _, rec := newTestService(t, &Dataset{
		Patients:       []Patient{patientFixture("p1", "Ana")},
		AvailableSlots: []AvailableSlot{{Day: 1, Time: "09:00"}},
	})

	created, err := svc.ScheduleNewAppointment(context.Background(), BookingInput{
		Slot:      &SlotSelection{Day: monday, Time: "09:00"},
		PatientID: "p1",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(created))
	}

	a := created[0]
	want := time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC)
	if !a.Date.Equal(want) || a.Status != StatusScheduled || a.Paid || a.IsRecurring {
		t.Errorf("unexpected appointment %+v", a)
	}
	if a.PatientName != "Ana" || a.Duration != DefaultDuration {
		t.Errorf("unexpected snapshot fields %+v", a)
	}
	if !strings.HasPrefix(a.ID, "a") {
		t.Errorf("unexpected id %q", a.ID)
	}

	if n := len(svc.AvailableSlots()); n != 0 {
		t.Errorf("slot set should be empty, has %d", n)
	}

	p, _ := svc.GetPatient("p1")
	if p.TotalSessions != 1 {
		t.Errorf("expected 1 session, got %d", p.TotalSessions)
	}
	if p.NextAppointment == nil || !p.NextAppointment.Equal(want) {
		t.Errorf("unexpected next appointment %v", p.NextAppointment)
	}

	if n := rec.last(); n.Kind != NotifyInfo || !strings.Contains(n.Description, "13/05/2024") {
		t.Errorf("unexpected notification %+v", n)
	}
}

func TestScheduleNewAppointment_Recurring(t *testing.T) {
	svc, _, rec := newTestService(t, bookingFixture())

	created, err := svc.ScheduleNewAppointment(context.Background(), BookingInput{
		Slot:      &SlotSelection{Day: monday, Time: "09:00"},
		PatientID: "p1",
		Notes:     "weekly",
		Recurring: true,
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(created) != 1+RecurringWeeks {
		t.Fatalf("expected %d appointments, got %d", 1+RecurringWeeks, len(created))
	}

	base := created[0]
	for k, a := range created {
		want := base.Date.AddDate(0, 0, 7*k)
		if !a.Date.Equal(want) {
			t.Errorf("instance %d at %s, want %s", k, a.Date, want)
		}
		if !a.IsRecurring || a.PatientID != "p1" || a.Notes != "weekly" {
			t.Errorf("instance %d not a recurring copy: %+v", k, a)
		}
		if k > 0 && a.ID != recurringID(base.ID, k) {
			t.Errorf("instance %d id %q", k, a.ID)
		}
	}

	// aggregates count the booking once
	p, _ := svc.GetPatient("p1")
	if p.TotalSessions != 1 || !p.NextAppointment.Equal(base.Date) {
		t.Errorf("unexpected aggregates %+v", p)
	}
	if !strings.HasSuffix(rec.last().Description, "(recurring)") {
		t.Errorf("expected recurring marker in %q", rec.last().Description)
	}
	if svc.IsSlotAvailable(monday, "09:00") {
		t.Error("originating slot should be closed")
	}
	if !svc.IsSlotAvailable(monday.AddDate(0, 0, 2), "14:00") {
		t.Error("other slots must stay open")
	}
}

func TestScheduleNewAppointment_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   BookingInput
		want error
	}{
		{"no slot", BookingInput{PatientID: "p1"}, ErrSlotNotSelected},
		{"no patient", BookingInput{Slot: &SlotSelection{Day: monday, Time: "09:00"}}, ErrPatientNotSelected},
		{"bad time", BookingInput{Slot: &SlotSelection{Day: monday, Time: "9h"}, PatientID: "p1"}, ErrInvalidTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, rec := newTestService(t, bookingFixture())

			_, err := svc.ScheduleNewAppointment(context.Background(), tt.in)
			if !errors.Is(err, tt.want) || !errors.Is(err, ErrValidation) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(repo.commits) != 0 || len(svc.Appointments()) != 0 {
				t.Error("validation failure must not mutate state")
			}
			if rec.last().Kind != NotifyValidation {
				t.Errorf("expected validation notification, got %+v", rec.last())
			}
		})
	}
}

func TestScheduleNewAppointment_UnknownPatient(t *testing.T) {
	svc, repo, _ := newTestService(t, bookingFixture())

	_, err := svc.ScheduleNewAppointment(context.Background(), BookingInput{
		Slot:      &SlotSelection{Day: monday, Time: "09:00"},
		PatientID: "ghost",
	})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
	if len(repo.commits) != 0 {
		t.Error("nothing should be written")
	}
}

func TestScheduleNewAppointment_DoesNotRequireOpenSlot(t *testing.T) {
	svc, _, _ := newTestService(t, bookingFixture())

	created, err := svc.ScheduleNewAppointment(context.Background(), BookingInput{
		Slot:      &SlotSelection{Day: monday, Time: "20:00"},
		PatientID: "p2",
	})
	if err != nil || len(created) != 1 {
		t.Fatalf("booking a closed cell should succeed, got %v", err)
	}
	if n := len(svc.AvailableSlots()); n != 2 {
		t.Errorf("open slots should be untouched, got %d", n)
	}
}

func TestReserveTimeSlot(t *testing.T) {
	svc, _, _ := newTestService(t, bookingFixture())

	a, err := svc.ReserveTimeSlot(context.Background(), ReservationInput{
		Slot:  &SlotSelection{Day: monday, Time: "09:00"},
		Notes: "supervision",
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if !a.Reserved() || a.PatientName != ReservedPatientName || a.Status != StatusScheduled {
		t.Errorf("unexpected reservation %+v", a)
	}
	if svc.IsSlotAvailable(monday, "09:00") {
		t.Error("reserved slot should be closed")
	}
	for _, p := range svc.ListPatients("") {
		if p.TotalSessions != 0 {
			t.Errorf("reservation must not touch patient %s", p.ID)
		}
	}

	if _, err := svc.ReserveTimeSlot(context.Background(), ReservationInput{}); !errors.Is(err, ErrSlotNotSelected) {
		t.Errorf("expected ErrSlotNotSelected, got %v", err)
	}
}

func TestUpdateAppointment(t *testing.T) {
	svc, _, _ := newTestService(t, bookingFixture())
	ctx := context.Background()

	created, _ := svc.ScheduleNewAppointment(ctx, BookingInput{
		Slot:      &SlotSelection{Day: monday, Time: "09:00"},
		PatientID: "p1",
	})
	id := created[0].ID

	a, err := svc.UpdateAppointment(ctx, id, AppointmentUpdate{PatientID: "p2", Notes: "moved", Recurring: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if a.PatientID != "p2" || a.PatientName != "Bruno" || a.Notes != "moved" || !a.IsRecurring {
		t.Errorf("unexpected update %+v", a)
	}
	if a.Status != StatusScheduled || !a.Date.Equal(created[0].Date) {
		t.Errorf("status and date must be preserved: %+v", a)
	}

	// unknown patient keeps the old name
	a, _ = svc.UpdateAppointment(ctx, id, AppointmentUpdate{PatientID: "ghost"})
	if a.PatientID != "ghost" || a.PatientName != "Bruno" {
		t.Errorf("unexpected update with unknown patient %+v", a)
	}

	if _, err := svc.UpdateAppointment(ctx, "missing", AppointmentUpdate{}); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	svc, _, _ := newTestService(t, bookingFixture())
	ctx := context.Background()

	created, _ := svc.ScheduleNewAppointment(ctx, BookingInput{
		Slot:      &SlotSelection{Day: monday, Time: "09:00"},
		PatientID: "p1",
		Recurring: true,
	})

	a, err := svc.CancelAppointment(ctx, created[1].ID)
	if err != nil || a.Status != StatusCanceled || a.Paid {
		t.Fatalf("cancel: %+v %v", a, err)
	}
	a, err = svc.MarkNoShow(ctx, created[2].ID)
	if err != nil || a.Status != StatusNoShow {
		t.Fatalf("no-show: %+v %v", a, err)
	}

	// siblings are independent
	if got, _ := svc.GetAppointment(created[3].ID); got.Status != StatusScheduled {
		t.Errorf("sibling changed to %s", got.Status)
	}

	p, _ := svc.GetPatient("p1")
	if p.TotalSessions != 1 {
		t.Errorf("cancel and no-show must not count sessions, got %d", p.TotalSessions)
	}

	if _, err := svc.CancelAppointment(ctx, "missing"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestCompleteAppointment_CountsEveryCall(t *testing.T) {
	svc, _, _ := newTestService(t, bookingFixture())
	ctx := context.Background()

	created, _ := svc.ScheduleNewAppointment(ctx, BookingInput{
		Slot:      &SlotSelection{Day: monday, Time: "09:00"},
		PatientID: "p1",
	})
	id := created[0].ID

	a, err := svc.CompleteAppointment(ctx, id)
	if err != nil || a.Status != StatusCompleted || !a.Paid {
		t.Fatalf("complete: %+v %v", a, err)
	}
	p, _ := svc.GetPatient("p1")
	if p.TotalSessions != 2 {
		t.Fatalf("booking and completion both count, want 2 got %d", p.TotalSessions)
	}

	_, _ = svc.CompleteAppointment(ctx, id)
	p, _ = svc.GetPatient("p1")
	if p.TotalSessions != 3 {
		t.Errorf("repeated completion counts again, want 3 got %d", p.TotalSessions)
	}
}

func TestCompleteAppointment_Reserved(t *testing.T) {
	svc, _, _ := newTestService(t, bookingFixture())
	ctx := context.Background()

	a, _ := svc.ReserveTimeSlot(ctx, ReservationInput{Slot: &SlotSelection{Day: monday, Time: "09:00"}})
	done, err := svc.CompleteAppointment(ctx, a.ID)
	if err != nil || !done.Paid {
		t.Fatalf("complete reserved: %+v %v", done, err)
	}
	for _, p := range svc.ListPatients("") {
		if p.TotalSessions != 0 {
			t.Errorf("patient %s counted for a reservation", p.ID)
		}
	}
}
