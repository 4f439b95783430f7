package matchmaking

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const roundLockKey = "coffeematch:round_lock"

// RoundLocker guards round execution across processes. A single-process
// deployment can run without one; the engine still holds a local mutex.
type RoundLocker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type redisRoundLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRoundLocker(client *redis.Client, ttl time.Duration) RoundLocker {
	return &redisRoundLocker{client: client, ttl: ttl}
}

func (l *redisRoundLocker) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, roundLockKey, time.Now().Unix(), l.ttl).Result()
}

func (l *redisRoundLocker) Release(ctx context.Context) error {
	return l.client.Del(ctx, roundLockKey).Err()
}
