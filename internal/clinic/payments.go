package clinic

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RecordPayment stores a payment for an existing patient. Amounts are
// rounded to cents; the status defaults to pending.
func (s *Service) RecordPayment(ctx context.Context, in NewPaymentInput) (Payment, error) {
	if in.PatientID == "" {
		return Payment{}, s.invalid(ctx, ErrPatientNotSelected)
	}
	if !in.Amount.IsPositive() {
		return Payment{}, s.invalid(ctx, ErrInvalidAmount)
	}
	if in.Status == "" {
		in.Status = PaymentPending
	}
	if !in.Status.Valid() {
		return Payment{}, s.invalid(ctx, ErrInvalidStatus)
	}
	date := in.Date
	if date.IsZero() {
		date = s.Now()
	}
	// stored dates carry milliseconds only
	date = date.Truncate(time.Millisecond)

	var created Payment
	err := s.mutate(ctx, "record payment", func(d *Dataset) (Changeset, error) {
		idx := d.patientIndex(in.PatientID)
		if idx < 0 {
			return 0, ErrPatientNotFound
		}
		created = Payment{
			ID:            s.ids.next("pay-"),
			PatientID:     in.PatientID,
			PatientName:   d.Patients[idx].Name,
			Amount:        in.Amount.Round(2),
			Date:          date,
			Status:        in.Status,
			AppointmentID: in.AppointmentID,
			Method:        strings.TrimSpace(in.Method),
			Notes:         in.Notes,
		}
		d.Payments = append(d.Payments, created)
		return Changeset(CollectionPayments), nil
	})
	if err != nil {
		return Payment{}, err
	}

	s.notify(ctx, NotifyInfo, "Payment recorded",
		fmt.Sprintf("%s - %s (%s)", created.PatientName, created.Amount.StringFixed(2), created.Status))
	return created, nil
}

func (s *Service) SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) (Payment, error) {
	if !status.Valid() {
		return Payment{}, s.invalid(ctx, ErrInvalidStatus)
	}

	var updated Payment
	err := s.mutate(ctx, "set payment status", func(d *Dataset) (Changeset, error) {
		idx := d.paymentIndex(id)
		if idx < 0 {
			return 0, ErrPaymentNotFound
		}
		d.Payments[idx].Status = status
		updated = d.Payments[idx]
		return Changeset(CollectionPayments), nil
	})
	if err != nil {
		return Payment{}, err
	}

	s.notify(ctx, NotifyInfo, "Payment updated", fmt.Sprintf("Payment %s is now %s.", id, status))
	return updated, nil
}

// ListPayments filters payments, newest first, and sums the paid ones.
func (s *Service) ListPayments(f PaymentFilter) ([]Payment, decimal.Decimal) {
	q := strings.ToLower(strings.TrimSpace(f.Query))

	var out []Payment
	s.read(func(d *Dataset) {
		for _, p := range d.Payments {
			if q != "" &&
				!strings.Contains(strings.ToLower(p.PatientName), q) &&
				!strings.Contains(strings.ToLower(p.Notes), q) {
				continue
			}
			if f.Status != "" && p.Status != f.Status {
				continue
			}
			if f.Date != nil && !s.sameDay(p.Date, *f.Date) {
				continue
			}
			out = append(out, p)
		}
	})

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})

	total := decimal.Zero
	for _, p := range out {
		if p.Status == PaymentPaid {
			total = total.Add(p.Amount)
		}
	}
	return out, total
}
