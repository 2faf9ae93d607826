package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/petcare-booking/internal/lock"
)

const retryInterval = 25 * time.Millisecond

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisLocker returns a lock.Locker backed by SET NX keys, so several
// api-server processes sharing one store still write a collection one at a
// time. Acquisition is retried until ttl elapses.
func NewRedisLocker(client *redis.Client, ttl time.Duration, prefix string) lock.Locker {
	return &redisLocker{
		client: client,
		ttl:    ttl,
		prefix: prefix,
	}
}

func (l *redisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lockKey := fmt.Sprintf("%slock:%s", l.prefix, key)
	token := uuid.NewString()

	acquiredAt, err := l.acquire(ctx, lockKey, token)
	if err != nil {
		return err
	}

	defer func() {
		// release on a fresh context so a cancelled request still frees the key
		relCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = l.release(relCtx, lockKey, token)
	}()

	// the key expires ttl after the SET that created it, not after it returned
	lockCtx, cancel := context.WithDeadline(ctx, acquiredAt.Add(l.ttl))
	defer cancel()

	return fn(lockCtx)
}

// acquire returns the time the winning SET NX was sent.
func (l *redisLocker) acquire(ctx context.Context, key, token string) (time.Time, error) {
	deadline := time.Now().Add(l.ttl)
	for {
		sentAt := time.Now()
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return time.Time{}, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return sentAt, nil
		}
		if time.Now().After(deadline) {
			return time.Time{}, lock.ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return time.Time{}, errors.Join(lock.ErrNotAcquired, ctx.Err())
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

func (l *redisLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
