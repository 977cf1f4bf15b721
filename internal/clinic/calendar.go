package clinic

import (
	"context"
	"time"
)

// Calendar holds the dialog and selection state of one calendar screen and
// turns it into Service calls. It is not safe for concurrent use.
type Calendar struct {
	svc *Service

	CurrentDate         time.Time
	SelectedSlot        *SlotSelection
	SelectedPatientID   string
	SelectedAppointment *Appointment
	Notes               string
	Recurring           bool
	EditMode            bool

	NewPatient           NewPatientInput
	NewPatientDialogOpen bool
}

func NewCalendar(svc *Service) *Calendar {
	return &Calendar{svc: svc, CurrentDate: svc.Now()}
}

func (c *Calendar) Week() WeekView {
	return c.svc.Week(c.CurrentDate)
}

func (c *Calendar) PreviousWeek() {
	c.CurrentDate = c.svc.WeekStart(c.CurrentDate).AddDate(0, 0, -7)
}

func (c *Calendar) NextWeek() {
	c.CurrentDate = c.svc.WeekStart(c.CurrentDate).AddDate(0, 0, 7)
}

func (c *Calendar) CurrentWeek() {
	c.CurrentDate = c.svc.Now()
}

func (c *Calendar) SelectSlot(day time.Time, slot string) {
	c.SelectedSlot = &SlotSelection{Day: day, Time: slot}
}

// SelectAppointment opens an appointment for editing.
func (c *Calendar) SelectAppointment(a Appointment) {
	c.SelectedAppointment = &a
	c.EditMode = true
	c.SelectedPatientID = a.PatientID
	c.Recurring = a.IsRecurring
	c.Notes = a.Notes
}

// Reset clears the dialog state left over from the last operation.
func (c *Calendar) Reset() {
	c.SelectedAppointment = nil
	c.EditMode = false
	c.SelectedPatientID = ""
	c.Recurring = false
	c.Notes = ""
	c.SelectedSlot = nil
}

func (c *Calendar) AddSlotAvailability(ctx context.Context, day time.Time, slot string) error {
	return c.svc.AddSlotAvailability(ctx, day, slot)
}

func (c *Calendar) RemoveSlotAvailability(ctx context.Context, day time.Time, slot string) error {
	if err := c.svc.RemoveSlotAvailability(ctx, day, slot); err != nil {
		return err
	}
	c.SelectedSlot = nil
	return nil
}

// RemoveSelectedAvailability closes the currently selected slot, if any.
func (c *Calendar) RemoveSelectedAvailability(ctx context.Context) error {
	if c.SelectedSlot == nil {
		return nil
	}
	return c.RemoveSlotAvailability(ctx, c.SelectedSlot.Day, c.SelectedSlot.Time)
}

func (c *Calendar) ScheduleNewAppointment(ctx context.Context) ([]Appointment, error) {
	created, err := c.svc.ScheduleNewAppointment(ctx, BookingInput{
		Slot:      c.SelectedSlot,
		PatientID: c.SelectedPatientID,
		Notes:     c.Notes,
		Recurring: c.Recurring,
	})
	if err != nil {
		return nil, err
	}
	c.Reset()
	return created, nil
}

func (c *Calendar) ReserveTimeSlot(ctx context.Context) (Appointment, error) {
	created, err := c.svc.ReserveTimeSlot(ctx, ReservationInput{Slot: c.SelectedSlot, Notes: c.Notes})
	if err != nil {
		return Appointment{}, err
	}
	c.Reset()
	return created, nil
}

// UpdateAppointment saves the edit dialog. Without a selected appointment
// it does nothing.
func (c *Calendar) UpdateAppointment(ctx context.Context) error {
	if c.SelectedAppointment == nil {
		return nil
	}
	_, err := c.svc.UpdateAppointment(ctx, c.SelectedAppointment.ID, AppointmentUpdate{
		PatientID: c.SelectedPatientID,
		Notes:     c.Notes,
		Recurring: c.Recurring,
	})
	return c.finish(err)
}

func (c *Calendar) CancelAppointment(ctx context.Context) error {
	return c.transition(ctx, c.svc.CancelAppointment)
}

func (c *Calendar) CompleteAppointment(ctx context.Context) error {
	return c.transition(ctx, c.svc.CompleteAppointment)
}

func (c *Calendar) MarkNoShow(ctx context.Context) error {
	return c.transition(ctx, c.svc.MarkNoShow)
}

func (c *Calendar) transition(ctx context.Context, fn func(context.Context, string) (Appointment, error)) error {
	if c.SelectedAppointment == nil {
		return nil
	}
	_, err := fn(ctx, c.SelectedAppointment.ID)
	return c.finish(err)
}

func (c *Calendar) finish(err error) error {
	if err != nil {
		return err
	}
	c.Reset()
	return nil
}

func (c *Calendar) OpenNewPatientDialog() {
	c.NewPatientDialogOpen = true
}

// SaveNewPatient registers the patient typed into the form, clears the
// form and selects the patient for the booking in progress.
func (c *Calendar) SaveNewPatient(ctx context.Context) (Patient, error) {
	p, err := c.svc.SaveNewPatient(ctx, c.NewPatient)
	if err != nil {
		return Patient{}, err
	}
	c.NewPatient = NewPatientInput{}
	c.NewPatientDialogOpen = false
	c.SelectedPatientID = p.ID
	return p, nil
}
