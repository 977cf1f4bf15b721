package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("profile lock not acquired")
)

const retryInterval = 25 * time.Millisecond

// ProfileLocker serialises mutations of one clinic profile across every
// process sharing the Redis instance.
type ProfileLocker struct {
	client  *redis.Client
	profile string
	ttl     time.Duration
	wait    time.Duration
}

// NewProfileLocker creates a locker keyed on lock:profile:<profile>. It
// retries for up to wait before giving up with ErrLockNotAcquired.
func NewProfileLocker(client *redis.Client, profile string, ttl, wait time.Duration) *ProfileLocker {
	return &ProfileLocker{
		client:  client,
		profile: profile,
		ttl:     ttl,
		wait:    wait,
	}
}

func (l *ProfileLocker) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:profile:%s", l.profile)
	token := uuid.NewString()

	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}

	defer func() {
		_ = l.release(context.WithoutCancel(ctx), key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

func (l *ProfileLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire profile lock: %w", err)
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *ProfileLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release profile lock: %w", err)
	}
	return nil
}
