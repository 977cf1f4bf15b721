package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-calendar/internal/clinic"
	"github.com/hackgods/clinic-calendar/internal/storage"
)

var testNow = time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC) // Wednesday

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	repo := storage.NewRepository(storage.NewMemory(), storage.Options{Location: time.UTC})
	svc := clinic.NewService(repo, nil, clinic.Options{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewRouter(RouterConfig{Service: svc, Logger: zerolog.Nop(), Env: "test", Version: "test"})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func createPatient(t *testing.T, h http.Handler, name string) PatientResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/patients", CreatePatientRequest{Name: name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create patient: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[PatientResponse](t, rec)
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health/live", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	rec = do(t, h, http.MethodGet, "/health/ready", nil)
	ready := decode[ReadinessResponse](t, rec)
	if rec.Code != http.StatusOK || ready.Dependencies["store"] != "ok" {
		t.Fatalf("ready: got %d %+v", rec.Code, ready)
	}
}

func TestSlots_AddCheckRemove(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/slots", SlotRequest{Date: "2024-05-13", Time: "10:00"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add slot: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	slot := decode[SlotResponse](t, rec)
	if slot.Day != 1 || slot.Weekday != "Monday" {
		t.Errorf("unexpected slot %+v", slot)
	}

	// any Monday matches a weekly slot
	rec = do(t, h, http.MethodGet, "/slots/check?date=2024-05-20&time=10:00", nil)
	if check := decode[SlotCheckResponse](t, rec); !check.Available {
		t.Errorf("expected Monday 10:00 to be available")
	}

	rec = do(t, h, http.MethodDelete, "/slots?date=2024-05-27&time=10:00", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove slot: expected 204, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/slots", nil)
	if slots := decode[[]SlotResponse](t, rec); len(slots) != 0 {
		t.Errorf("expected no slots, got %+v", slots)
	}
}

func TestSlots_InvalidInput(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/slots", SlotRequest{Date: "2024-05-13", Time: "9am"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad time: expected 422, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/slots", SlotRequest{Date: "13/05/2024", Time: "09:00"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date: expected 400, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/slots", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad body: expected 400, got %d", rec.Code)
	}
}

func TestAppointments_RecurringBookingAndComplete(t *testing.T) {
	h := newTestRouter(t)
	patient := createPatient(t, h, "Ana Souza")

	do(t, h, http.MethodPost, "/slots", SlotRequest{Date: "2024-05-13", Time: "10:00"})

	rec := do(t, h, http.MethodPost, "/appointments", ScheduleAppointmentRequest{
		Date: "2024-05-13", Time: "10:00", PatientID: patient.ID, Recurring: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("schedule: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[[]AppointmentResponse](t, rec)
	if len(created) != 1+clinic.RecurringWeeks {
		t.Fatalf("expected %d appointments, got %d", 1+clinic.RecurringWeeks, len(created))
	}
	last := created[len(created)-1]
	if want := time.Date(2024, 7, 8, 10, 0, 0, 0, time.UTC); !last.Date.Equal(want) {
		t.Errorf("last recurrence at %s, want %s", last.Date, want)
	}

	rec = do(t, h, http.MethodGet, "/slots/check?date=2024-05-13&time=10:00", nil)
	if check := decode[SlotCheckResponse](t, rec); check.Available {
		t.Error("booked slot should be closed")
	}

	rec = do(t, h, http.MethodPost, "/appointments/"+created[0].ID+"/complete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d", rec.Code)
	}
	done := decode[AppointmentResponse](t, rec)
	if done.Status != "completed" || !done.Paid {
		t.Errorf("unexpected completed appointment %+v", done)
	}

	rec = do(t, h, http.MethodGet, "/patients/"+patient.ID, nil)
	got := decode[PatientResponse](t, rec)
	if got.TotalSessions != 2 {
		t.Errorf("expected total_sessions 2 after booking and completing, got %d", got.TotalSessions)
	}

	rec = do(t, h, http.MethodGet, "/appointments?patient_id="+patient.ID, nil)
	if list := decode[[]AppointmentResponse](t, rec); len(list) != 9 {
		t.Errorf("expected 9 appointments for patient, got %d", len(list))
	}
}

func TestAppointments_Errors(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/appointments", ScheduleAppointmentRequest{Date: "2024-05-13", Time: "10:00"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing patient: expected 422, got %d", rec.Code)
	}
	if resp := decode[ErrorResponse](t, rec); resp.Error != "validation_failed" {
		t.Errorf("unexpected error code %q", resp.Error)
	}

	rec = do(t, h, http.MethodPost, "/appointments", ScheduleAppointmentRequest{PatientID: "patient-1"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing slot: expected 422, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/appointments/a404", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown appointment: expected 404, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/appointments/a404/cancel", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cancel unknown: expected 404, got %d", rec.Code)
	}
}

func TestAppointments_ReserveAndUpdate(t *testing.T) {
	h := newTestRouter(t)
	patient := createPatient(t, h, "Bruno Lima")

	rec := do(t, h, http.MethodPost, "/appointments/reserve", ReserveSlotRequest{Date: "2024-05-14", Time: "15:00"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("reserve: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	reserved := decode[AppointmentResponse](t, rec)
	if reserved.PatientID != clinic.ReservedPatientID || reserved.PatientName != clinic.ReservedPatientName {
		t.Errorf("unexpected reservation %+v", reserved)
	}

	rec = do(t, h, http.MethodPut, "/appointments/"+reserved.ID, UpdateAppointmentRequest{
		PatientID: patient.ID, Notes: "first session",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}
	updated := decode[AppointmentResponse](t, rec)
	if updated.PatientName != "Bruno Lima" || updated.Notes != "first session" {
		t.Errorf("unexpected update %+v", updated)
	}

	rec = do(t, h, http.MethodGet, "/calendar/week?date=2024-05-14", nil)
	week := decode[WeekResponse](t, rec)
	if week.Start != "2024-05-12" || len(week.Days) != 7 {
		t.Fatalf("unexpected week %s with %d days", week.Start, len(week.Days))
	}
	tuesday := week.Days[2]
	for _, c := range tuesday.Cells {
		if c.Time == "15:00" && (c.State != "booked" || c.Appointment == nil) {
			t.Errorf("expected Tuesday 15:00 booked, got %+v", c)
		}
	}
}

func TestPatients_Endpoints(t *testing.T) {
	h := newTestRouter(t)
	p := createPatient(t, h, "  Carla Dias  ")
	if p.Name != "Carla Dias" || p.Status != "active" {
		t.Fatalf("unexpected patient %+v", p)
	}

	rec := do(t, h, http.MethodPost, "/patients", CreatePatientRequest{Name: "   "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank name: expected 422, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPut, "/patients/"+p.ID+"/notes", NotesRequest{Notes: "sleep diary"})
	if got := decode[PatientResponse](t, rec); got.Notes != "sleep diary" {
		t.Errorf("notes not saved: %+v", got)
	}

	rec = do(t, h, http.MethodPut, "/patients/"+p.ID+"/status", StatusRequest{Status: "paused"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad status: expected 422, got %d", rec.Code)
	}

	phone := "+55 11 99999-0000"
	rec = do(t, h, http.MethodPut, "/patients/"+p.ID, UpdatePatientRequest{Phone: &phone})
	got := decode[PatientResponse](t, rec)
	if got.Phone != phone || got.Notes != "sleep diary" {
		t.Errorf("partial update lost fields: %+v", got)
	}

	rec = do(t, h, http.MethodGet, "/patients?q=SLEEP", nil)
	if list := decode[[]PatientResponse](t, rec); len(list) != 1 {
		t.Errorf("expected 1 match, got %d", len(list))
	}

	rec = do(t, h, http.MethodGet, "/patients/patient-404/appointments", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown patient: expected 404, got %d", rec.Code)
	}
}

func TestPayments_Endpoints(t *testing.T) {
	h := newTestRouter(t)
	p := createPatient(t, h, "Diego Alves")

	rec := do(t, h, http.MethodPost, "/payments", `{"patient_id":"`+p.ID+`","amount":"150","status":"paid","method":"pix"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("record: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	paid := decode[PaymentResponse](t, rec)
	if paid.Amount != "150.00" || paid.PatientName != "Diego Alves" {
		t.Errorf("unexpected payment %+v", paid)
	}

	rec = do(t, h, http.MethodPost, "/payments", `{"patient_id":"`+p.ID+`","amount":80.5}`)
	pending := decode[PaymentResponse](t, rec)
	if pending.Status != "pending" {
		t.Errorf("expected default pending status, got %q", pending.Status)
	}

	rec = do(t, h, http.MethodPost, "/payments", `{"patient_id":"`+p.ID+`","amount":0}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("zero amount: expected 422, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/payments", nil)
	list := decode[PaymentListResponse](t, rec)
	if len(list.Payments) != 2 || list.TotalPaid != "150.00" {
		t.Errorf("unexpected list %+v", list)
	}

	rec = do(t, h, http.MethodPut, "/payments/"+pending.ID+"/status", StatusRequest{Status: "paid"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set status: expected 200, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/dashboard", nil)
	dash := decode[DashboardResponse](t, rec)
	if dash.Financial.ThisMonth != "230.50" {
		t.Errorf("expected 230.50 paid this month, got %s", dash.Financial.ThisMonth)
	}
}
