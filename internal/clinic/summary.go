package clinic

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type FinancialSummary struct {
	ThisMonth decimal.Decimal `json:"thisMonth"` // paid this calendar month
	LastMonth decimal.Decimal `json:"lastMonth"` // paid last calendar month
	Pending   decimal.Decimal `json:"pending"`   // all pending payments
	Growth    float64         `json:"growth"`    // percent change against last month, 0 when last month is 0
}

type AppointmentSummary struct {
	Today     int `json:"today"`
	Upcoming  int `json:"upcoming"`  // scheduled and after now
	Completed int `json:"completed"` // completed this month
	Canceled  int `json:"canceled"`  // canceled or no-show this month
}

func (s *Service) sameMonth(t time.Time, year int, month time.Month) bool {
	y, m, _ := t.In(s.loc).Date()
	return y == year && m == month
}

func (s *Service) FinancialSummary(now time.Time) FinancialSummary {
	now = now.In(s.loc)
	year, month, _ := now.Date()
	last := time.Date(year, month, 1, 0, 0, 0, 0, s.loc).AddDate(0, -1, 0)

	sum := FinancialSummary{
		ThisMonth: decimal.Zero,
		LastMonth: decimal.Zero,
		Pending:   decimal.Zero,
	}
	s.read(func(d *Dataset) {
		for _, p := range d.Payments {
			switch {
			case p.Status == PaymentPending:
				sum.Pending = sum.Pending.Add(p.Amount)
			case p.Status != PaymentPaid:
			case s.sameMonth(p.Date, year, month):
				sum.ThisMonth = sum.ThisMonth.Add(p.Amount)
			case s.sameMonth(p.Date, last.Year(), last.Month()):
				sum.LastMonth = sum.LastMonth.Add(p.Amount)
			}
		}
	})

	if !sum.LastMonth.IsZero() {
		growth := sum.ThisMonth.Sub(sum.LastMonth).Div(sum.LastMonth).Mul(decimal.NewFromInt(100))
		sum.Growth = growth.InexactFloat64()
	}
	return sum
}

func (s *Service) AppointmentSummary(now time.Time) AppointmentSummary {
	now = now.In(s.loc)
	year, month, _ := now.Date()

	var sum AppointmentSummary
	s.read(func(d *Dataset) {
		for _, a := range d.Appointments {
			if s.sameDay(a.Date, now) {
				sum.Today++
			}
			if a.Status == StatusScheduled && a.Date.After(now) {
				sum.Upcoming++
			}
			if !s.sameMonth(a.Date, year, month) {
				continue
			}
			switch a.Status {
			case StatusCompleted:
				sum.Completed++
			case StatusCanceled, StatusNoShow:
				sum.Canceled++
			}
		}
	})
	return sum
}

// NextAppointments returns up to n scheduled appointments not in the past,
// earliest first.
func (s *Service) NextAppointments(now time.Time, n int) []Appointment {
	var out []Appointment
	s.read(func(d *Dataset) {
		for _, a := range d.Appointments {
			if a.Status == StatusScheduled && !a.Date.Before(now) {
				out = append(out, a)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
