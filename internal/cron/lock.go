package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// The TTL outlives the daily cadence slightly so a crashed holder releases
// automatically before the next cycle after one missed day.
const defaultLockTTL = 25 * time.Hour

// Lock coordinates exclusive cron cycles across worker replicas.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock is a SETNX lease with an owner token. Release only deletes the
// key when the token still matches, so an expired lease taken over by
// another replica is never clobbered.
type RedisLock struct {
	store lockStore
	key   string
	ttl   time.Duration
	token string
}

// NewRedisLock constructs a Redis-backed lock on the given key.
func NewRedisLock(store lockStore, key string, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

// Acquire claims the lease for the configured TTL.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release frees the lease if this instance still owns it.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	current, err := l.store.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			l.token = ""
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if current != l.token {
		l.token = ""
		return nil
	}
	if err := l.store.Del(ctx, l.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.token = ""
	return nil
}
