package seed

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

var noteSnippets = []string{
	"Prefers morning sessions.",
	"Referred by general practitioner.",
	"Follow-up on sleep routine.",
	"Working on anxiety management techniques.",
	"Requested receipts for insurance.",
	"",
}

var paymentMethods = []string{"pix", "card", "cash", "transfer"}

// Generator builds fake but plausible clinic data. The same seed and clock
// always produce the same dataset.
type Generator struct {
	f   *gofakeit.Faker
	loc *time.Location
	now time.Time
}

func New(seed int64, loc *time.Location, now time.Time) *Generator {
	if loc == nil {
		loc = time.Local
	}
	return &Generator{
		f:   gofakeit.New(uint64(seed)),
		loc: loc,
		now: now.In(loc),
	}
}

func (g *Generator) Patients(n int) []clinic.Patient {
	statuses := []string{
		string(clinic.PatientActive), string(clinic.PatientActive), string(clinic.PatientActive),
		string(clinic.PatientWaiting), string(clinic.PatientInactive),
	}

	out := make([]clinic.Patient, 0, n)
	for i := 0; i < n; i++ {
		start := g.now.AddDate(0, 0, -g.f.Number(7, 720))
		out = append(out, clinic.Patient{
			ID:        fmt.Sprintf("patient-seed-%03d", i+1),
			Name:      g.f.Name(),
			Email:     g.f.Email(),
			Phone:     g.f.Phone(),
			Status:    clinic.PatientStatus(g.f.RandomString(statuses)),
			StartDate: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, g.loc),
			Notes:     g.f.RandomString(noteSnippets),
		})
	}
	return out
}

// Slots opens a weekday grid, Monday to Friday, skipping lunch and a few
// random hours.
func (g *Generator) Slots() []clinic.AvailableSlot {
	var out []clinic.AvailableSlot
	for day := int(time.Monday); day <= int(time.Friday); day++ {
		for _, slot := range clinic.TimeSlots {
			if slot == "12:00" || slot > "19:00" {
				continue
			}
			if g.f.Number(0, 9) == 0 {
				continue
			}
			out = append(out, clinic.AvailableSlot{Day: day, Time: slot})
		}
	}
	return out
}

// Dataset fills a profile: patients, open slots, past appointments with
// outcomes and payments, and upcoming scheduled appointments. Patient
// aggregates follow the same rules as booking through the scheduler.
func (g *Generator) Dataset(patients, weeks int) *clinic.Dataset {
	data := &clinic.Dataset{
		Patients:       g.Patients(patients),
		AvailableSlots: g.Slots(),
	}
	if len(data.Patients) == 0 {
		return data
	}

	outcomes := []string{
		string(clinic.StatusCompleted), string(clinic.StatusCompleted), string(clinic.StatusCompleted),
		string(clinic.StatusCanceled), string(clinic.StatusNoShow),
	}

	weekStart := g.now.AddDate(0, 0, -int(g.now.Weekday()))
	seq := 0
	for w := -weeks; w <= weeks; w++ {
		for i := 0; i < 3; i++ {
			idx := g.f.Number(0, len(data.Patients)-1)
			p := &data.Patients[idx]
			day := weekStart.AddDate(0, 0, 7*w+g.f.Number(1, 5))
			hour := g.f.Number(8, 18)
			date := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, g.loc)

			seq++
			a := clinic.Appointment{
				ID:          fmt.Sprintf("a-seed-%04d", seq),
				PatientID:   p.ID,
				PatientName: p.Name,
				Date:        date,
				Duration:    clinic.DefaultDuration,
				Status:      clinic.StatusScheduled,
			}
			p.TotalSessions++

			if date.Before(g.now) {
				a.Status = clinic.AppointmentStatus(g.f.RandomString(outcomes))
				if a.Status == clinic.StatusCompleted {
					a.Paid = true
					p.TotalSessions++
					data.Payments = append(data.Payments, g.payment(seq, *p, a))
				}
			} else if p.NextAppointment == nil || date.Before(*p.NextAppointment) {
				next := date
				p.NextAppointment = &next
			}
			data.Appointments = append(data.Appointments, a)
		}
	}
	return data
}

func (g *Generator) payment(seq int, p clinic.Patient, a clinic.Appointment) clinic.Payment {
	apptID := a.ID
	return clinic.Payment{
		ID:            fmt.Sprintf("pay-seed-%04d", seq),
		PatientID:     p.ID,
		PatientName:   p.Name,
		Amount:        decimal.NewFromInt(int64(g.f.Number(15, 30) * 10)),
		Date:          a.Date,
		Status:        clinic.PaymentPaid,
		AppointmentID: &apptID,
		Method:        g.f.RandomString(paymentMethods),
	}
}
