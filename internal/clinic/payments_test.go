package clinic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRecordPayment(t *testing.T) {
	svc, repo, _ := newTestService(t, &Dataset{Patients: []Patient{patientFixture("p1", "Ana")}})

	appt := "a123"
	p, err := svc.RecordPayment(context.Background(), NewPaymentInput{
		PatientID:     "p1",
		Amount:        decimal.RequireFromString("150.005"),
		AppointmentID: &appt,
		Method:        " pix ",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if p.Status != PaymentPending || p.PatientName != "Ana" || p.Method != "pix" {
		t.Errorf("unexpected payment %+v", p)
	}
	if p.Amount.StringFixed(2) != "150.01" {
		t.Errorf("expected amount rounded to cents, got %s", p.Amount)
	}
	if !p.Date.Equal(testNow) {
		t.Errorf("expected default date now, got %s", p.Date)
	}
	if len(repo.commits) != 1 || !repo.commits[0].Has(CollectionPayments) {
		t.Error("payments should be persisted")
	}
}

func TestRecordPayment_Validation(t *testing.T) {
	svc, repo, _ := newTestService(t, &Dataset{Patients: []Patient{patientFixture("p1", "Ana")}})
	ctx := context.Background()

	tests := []struct {
		name string
		in   NewPaymentInput
		want error
	}{
		{"no patient", NewPaymentInput{Amount: decimal.NewFromInt(10)}, ErrPatientNotSelected},
		{"zero", NewPaymentInput{PatientID: "p1"}, ErrInvalidAmount},
		{"negative", NewPaymentInput{PatientID: "p1", Amount: decimal.NewFromInt(-5)}, ErrInvalidAmount},
		{"status", NewPaymentInput{PatientID: "p1", Amount: decimal.NewFromInt(5), Status: "lost"}, ErrInvalidStatus},
	}
	for _, tt := range tests {
		if _, err := svc.RecordPayment(ctx, tt.in); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}

	if _, err := svc.RecordPayment(ctx, NewPaymentInput{PatientID: "ghost", Amount: decimal.NewFromInt(5)}); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
	if len(repo.commits) != 0 {
		t.Error("rejected payments must not be written")
	}
}

func TestListPayments_FilterAndTotal(t *testing.T) {
	may7 := time.Date(2024, 5, 7, 15, 0, 0, 0, time.UTC)
	may8 := time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(t, &Dataset{
		Patients: []Patient{patientFixture("p1", "Ana"), patientFixture("p2", "Bruno")},
		Payments: []Payment{
			{ID: "pay-1", PatientID: "p1", PatientName: "Ana", Amount: decimal.NewFromInt(100), Date: may7, Status: PaymentPaid},
			{ID: "pay-2", PatientID: "p2", PatientName: "Bruno", Amount: decimal.NewFromInt(80), Date: may8, Status: PaymentPending},
			{ID: "pay-3", PatientID: "p1", PatientName: "Ana", Amount: decimal.NewFromInt(120), Date: may8, Status: PaymentPaid, Notes: "package"},
		},
	})

	all, total := svc.ListPayments(PaymentFilter{})
	if len(all) != 3 || !total.Equal(decimal.NewFromInt(220)) {
		t.Fatalf("unexpected list %d total %s", len(all), total)
	}
	if all[len(all)-1].ID != "pay-1" {
		t.Errorf("expected newest first, oldest last is %s", all[len(all)-1].ID)
	}

	byName, _ := svc.ListPayments(PaymentFilter{Query: "ana"})
	if len(byName) != 2 {
		t.Errorf("name filter: want 2 got %d", len(byName))
	}
	byNotes, _ := svc.ListPayments(PaymentFilter{Query: "PACKAGE"})
	if len(byNotes) != 1 {
		t.Errorf("notes filter: want 1 got %d", len(byNotes))
	}

	pending, pendingTotal := svc.ListPayments(PaymentFilter{Status: PaymentPending})
	if len(pending) != 1 || !pendingTotal.IsZero() {
		t.Errorf("pending filter: %d payments, total %s", len(pending), pendingTotal)
	}

	day := time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)
	onDay, dayTotal := svc.ListPayments(PaymentFilter{Date: &day})
	if len(onDay) != 2 || !dayTotal.Equal(decimal.NewFromInt(120)) {
		t.Errorf("date filter: %d payments, total %s", len(onDay), dayTotal)
	}
}

func TestSetPaymentStatus(t *testing.T) {
	svc, _, _ := newTestService(t, &Dataset{
		Payments: []Payment{{ID: "pay-1", Amount: decimal.NewFromInt(10), Date: testNow, Status: PaymentPending}},
	})
	ctx := context.Background()

	p, err := svc.SetPaymentStatus(ctx, "pay-1", PaymentRefunded)
	if err != nil || p.Status != PaymentRefunded {
		t.Fatalf("set status: %+v %v", p, err)
	}
	if _, err := svc.SetPaymentStatus(ctx, "pay-9", PaymentPaid); !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("expected ErrPaymentNotFound, got %v", err)
	}
	if _, err := svc.SetPaymentStatus(ctx, "pay-1", "void"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}
