package clinic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	Location *time.Location   // clinic time zone, defaults to time.Local
	Duration int              // appointment length in minutes, defaults to DefaultDuration
	Now      func() time.Time // defaults to time.Now
	Locker   Locker           // defaults to an in-process mutex

	// ReloadOnWrite re-reads the store under the lock before every mutation.
	// Set it when several processes share one profile.
	ReloadOnWrite bool

	Logger zerolog.Logger
}

// Service is the state container: it owns the dataset and every operation
// that reads or mutates it.
type Service struct {
	repo     Repository
	notifier Notifier
	locker   Locker
	reload   bool
	loc      *time.Location
	duration int
	now      func() time.Time
	ids      *idGenerator
	log      zerolog.Logger

	mu   sync.RWMutex
	data *Dataset
}

func NewService(repo Repository, notifier Notifier, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Locker == nil {
		opts.Locker = NewLocalLocker()
	}

	return &Service{
		repo:     repo,
		notifier: notifier,
		locker:   opts.Locker,
		reload:   opts.ReloadOnWrite,
		loc:      opts.Location,
		duration: opts.Duration,
		now:      opts.Now,
		ids:      newIDGenerator(opts.Now),
		log:      opts.Logger.With().Str("component", "clinic").Logger(),
		data:     &Dataset{},
	}
}

// Load replaces the in-memory dataset with the repository contents.
func (s *Service) Load(ctx context.Context) error {
	data, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Location is the time zone used for day-of-week and calendar-day math.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// mutate applies fn to a copy of the dataset, commits the collections it
// reports as changed and only then publishes the copy. A failed commit
// leaves both the store and memory as they were.
func (s *Service) mutate(ctx context.Context, op string, fn func(d *Dataset) (Changeset, error)) error {
	return s.locker.WithLock(ctx, func(ctx context.Context) error {
		if s.reload {
			if err := s.Load(ctx); err != nil {
				return fmt.Errorf("reload before %s: %w", op, err)
			}
		}

		s.mu.RLock()
		next := s.data.Clone()
		s.mu.RUnlock()

		changes, err := fn(next)
		if err != nil {
			return err
		}
		if changes.Empty() {
			return nil
		}

		if err := s.repo.Commit(ctx, next, changes); err != nil {
			s.log.Error().Err(err).Str("op", op).Msg("commit failed, keeping previous state")
			return fmt.Errorf("commit %s: %w", op, err)
		}

		s.mu.Lock()
		s.data = next
		s.mu.Unlock()
		return nil
	})
}

func (s *Service) read(fn func(d *Dataset)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Service) notify(ctx context.Context, kind NotificationKind, title, description string) {
	if s.notifier == nil {
		return
	}
	n := Notification{
		Kind:        kind,
		Title:       title,
		Description: description,
		At:          s.now(),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("title", title).Msg("notification not delivered")
	}
}

// invalid reports a validation failure to the user and returns it unchanged.
func (s *Service) invalid(ctx context.Context, err error) error {
	s.notify(ctx, NotifyValidation, "Attention", err.Error())
	return err
}

func (s *Service) weekday(t time.Time) int {
	return int(t.In(s.loc).Weekday())
}

func (s *Service) sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(s.loc).Date()
	by, bm, bd := b.In(s.loc).Date()
	return ay == by && am == bm && ad == bd
}

type localLocker struct {
	mu sync.Mutex
}

// NewLocalLocker serialises mutations within one process.
func NewLocalLocker() Locker {
	return &localLocker{}
}

func (l *localLocker) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}
