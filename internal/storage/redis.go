package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores each key as a string under clinic:<profile>:<key>. Put runs
// inside MULTI/EXEC so readers never observe half a commit.
type Redis struct {
	client  *redis.Client
	profile string
}

func NewRedis(client *redis.Client, profile string) *Redis {
	return &Redis{client: client, profile: profile}
}

func (r *Redis) key(k string) string {
	return fmt.Sprintf("clinic:%s:%s", r.profile, k)
}

func (r *Redis) Get(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}

	vals, err := r.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget profile %s: %w", r.profile, err)
	}

	out := make(map[string][]byte, len(keys))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = []byte(s)
		}
	}
	return out, nil
}

func (r *Redis) Put(ctx context.Context, values map[string][]byte) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, r.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write profile %s: %w", r.profile, err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
