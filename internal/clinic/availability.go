package clinic

import (
	"context"
	"fmt"
	"time"
)

// parseClock validates an "HH:MM" slot label.
func parseClock(slot string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", slot)
	if err != nil || len(slot) != 5 {
		return 0, 0, ErrInvalidTime
	}
	return t.Hour(), t.Minute(), nil
}

// slotTime combines the calendar day of sel with its clock time in the
// clinic time zone.
func (s *Service) slotTime(sel SlotSelection) (time.Time, error) {
	hour, minute, err := parseClock(sel.Time)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := sel.Day.In(s.loc).Date()
	return time.Date(y, m, d, hour, minute, 0, 0, s.loc), nil
}

func hasSlot(slots []AvailableSlot, day int, slot string) bool {
	for _, sl := range slots {
		if sl.Day == day && sl.Time == slot {
			return true
		}
	}
	return false
}

func withoutSlot(slots []AvailableSlot, day int, slot string) ([]AvailableSlot, bool) {
	out := slots[:0:0]
	removed := false
	for _, sl := range slots {
		if sl.Day == day && sl.Time == slot {
			removed = true
			continue
		}
		out = append(out, sl)
	}
	return out, removed
}

// IsSlotAvailable reports whether the weekday of day has slot open.
func (s *Service) IsSlotAvailable(day time.Time, slot string) bool {
	var ok bool
	s.read(func(d *Dataset) {
		ok = hasSlot(d.AvailableSlots, s.weekday(day), slot)
	})
	return ok
}

func (s *Service) AvailableSlots() []AvailableSlot {
	var out []AvailableSlot
	s.read(func(d *Dataset) {
		out = append(out, d.AvailableSlots...)
	})
	return out
}

// AddSlotAvailability opens slot on every week's weekday of day. Existing
// entries are not checked, so repeated calls store duplicates.
func (s *Service) AddSlotAvailability(ctx context.Context, day time.Time, slot string) error {
	if _, _, err := parseClock(slot); err != nil {
		return s.invalid(ctx, err)
	}

	err := s.mutate(ctx, "add slot", func(d *Dataset) (Changeset, error) {
		d.AvailableSlots = append(d.AvailableSlots, AvailableSlot{Day: s.weekday(day), Time: slot})
		return Changeset(CollectionAvailableSlots), nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, NotifyInfo, "", fmt.Sprintf("%s is now available for appointments.", formatSlot(day.In(s.loc), slot)))
	return nil
}

// RemoveSlotAvailability closes every matching slot. Removing a slot that
// is not open is a no-op.
func (s *Service) RemoveSlotAvailability(ctx context.Context, day time.Time, slot string) error {
	err := s.mutate(ctx, "remove slot", func(d *Dataset) (Changeset, error) {
		slots, removed := withoutSlot(d.AvailableSlots, s.weekday(day), slot)
		if !removed {
			return 0, nil
		}
		d.AvailableSlots = slots
		return Changeset(CollectionAvailableSlots), nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, NotifyInfo, "", fmt.Sprintf("%s is no longer available.", formatSlot(day.In(s.loc), slot)))
	return nil
}
