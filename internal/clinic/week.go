package clinic

import "time"

type CellState string

const (
	CellAvailable CellState = "available"
	CellBooked    CellState = "booked"
	CellClosed    CellState = "closed"
)

type Cell struct {
	Time        string       `json:"time"`
	State       CellState    `json:"state"`
	Appointment *Appointment `json:"appointment,omitempty"` // set when State is CellBooked
}

type DayView struct {
	Date  time.Time `json:"date"`
	Cells []Cell    `json:"cells"`
}

type WeekView struct {
	Start time.Time `json:"start"`
	Days  []DayView `json:"days"`
}

// WeekStart returns midnight of the Sunday on or before t.
func (s *Service) WeekStart(t time.Time) time.Time {
	t = t.In(s.loc)
	y, m, d := t.Date()
	return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, s.loc)
}

// Week lays out the slot grid for the week containing date. A cell holding
// any appointment that is not canceled is booked; otherwise it is available
// when its weekday slot is open.
func (s *Service) Week(date time.Time) WeekView {
	start := s.WeekStart(date)
	view := WeekView{Start: start, Days: make([]DayView, 7)}

	s.read(func(d *Dataset) {
		for i := range view.Days {
			day := start.AddDate(0, 0, i)
			cells := make([]Cell, len(TimeSlots))
			for j, slot := range TimeSlots {
				cell := Cell{Time: slot, State: CellClosed}
				if a := s.occupant(d, day, slot); a != nil {
					cell.State = CellBooked
					cell.Appointment = a
				} else if hasSlot(d.AvailableSlots, int(day.Weekday()), slot) {
					cell.State = CellAvailable
				}
				cells[j] = cell
			}
			view.Days[i] = DayView{Date: day, Cells: cells}
		}
	})
	return view
}

func (s *Service) occupant(d *Dataset, day time.Time, slot string) *Appointment {
	for i := range d.Appointments {
		a := d.Appointments[i]
		if a.Status == StatusCanceled {
			continue
		}
		if s.sameDay(a.Date, day) && a.Date.In(s.loc).Format("15:04") == slot {
			return &a
		}
	}
	return nil
}
