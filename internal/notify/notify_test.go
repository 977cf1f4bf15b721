package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

func TestLog_Levels(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(zerolog.New(&buf))

	_ = n.Notify(context.Background(), clinic.Notification{Kind: clinic.NotifyInfo, Title: "Appointment scheduled", Description: "Ana - 06/05/2024 at 09:00"})
	_ = n.Notify(context.Background(), clinic.Notification{Kind: clinic.NotifyValidation, Description: "patient name is required"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first["level"] != "info" || first["message"] != "Ana - 06/05/2024 at 09:00" {
		t.Errorf("unexpected info line: %v", first)
	}
	if second["level"] != "warn" || second["kind"] != "validation" {
		t.Errorf("unexpected validation line: %v", second)
	}
}

type failing struct{ err error }

func (f failing) Notify(context.Context, clinic.Notification) error { return f.err }

type counting struct{ n int }

func (c *counting) Notify(context.Context, clinic.Notification) error {
	c.n++
	return nil
}

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("broker down")
	c := &counting{}
	m := Multi{failing{boom}, c}

	err := m.Notify(context.Background(), clinic.Notification{Description: "x"})
	if !errors.Is(err, boom) {
		t.Errorf("expected joined broker error, got %v", err)
	}
	if c.n != 1 {
		t.Errorf("expected later notifier to still run, got %d calls", c.n)
	}
}

func TestAMQP_MessageShape(t *testing.T) {
	at := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	n := clinic.Notification{Kind: clinic.NotifyInfo, Title: "Appointment canceled", Description: "The appointment was canceled.", At: at}

	if key := RoutingKey(n); key != "notification.info" {
		t.Errorf("unexpected routing key %s", key)
	}

	body, err := encode("dr-silva", n)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["profile"] != "dr-silva" || got["title"] != "Appointment canceled" || got["kind"] != "info" {
		t.Errorf("unexpected message: %s", body)
	}
}
