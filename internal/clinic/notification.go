package clinic

import (
	"fmt"
	"time"
)

type NotificationKind string

const (
	NotifyInfo       NotificationKind = "info"
	NotifyValidation NotificationKind = "validation"
)

// Notification is a short human-readable message about an operation.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description"`
	At          time.Time        `json:"at"`
}

func formatDay(t time.Time) string {
	return t.Format("02/01/2006")
}

func formatSlot(day time.Time, slot string) string {
	return fmt.Sprintf("%s at %s", day.Weekday(), slot)
}
