package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

// Log writes notifications to a zerolog logger. Validation messages are
// logged at warn level.
type Log struct {
	log zerolog.Logger
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{log: logger.With().Str("component", "notify").Logger()}
}

func (l *Log) Notify(_ context.Context, n clinic.Notification) error {
	evt := l.log.Info()
	if n.Kind == clinic.NotifyValidation {
		evt = l.log.Warn()
	}
	evt.Str("kind", string(n.Kind)).
		Str("title", n.Title).
		Time("at", n.At).
		Msg(n.Description)
	return nil
}

// Multi fans a notification out to several notifiers and joins their errors.
type Multi []clinic.Notifier

func (m Multi) Notify(ctx context.Context, n clinic.Notification) error {
	var errs []error
	for _, nt := range m {
		if err := nt.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
