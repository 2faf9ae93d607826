package redisclient

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/petcare-booking/internal/lock"
)

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	client, err := NewRedisClient(ctx, Options{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	prefix := "petcare-test-" + uuid.NewString() + ":"
	l := NewRedisLocker(client, 2*time.Second, prefix)
	impatient := NewRedisLocker(client, 100*time.Millisecond, prefix)

	err = l.WithLock(ctx, "appointments", func(ctx context.Context) error {
		n, err := client.Exists(ctx, prefix+"lock:appointments").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		// a second holder gives up once the ttl has passed
		inner := impatient.WithLock(context.Background(), "appointments", func(context.Context) error { return nil })
		assert.ErrorIs(t, inner, lock.ErrNotAcquired)
		return nil
	})
	require.NoError(t, err)

	n, err := client.Exists(ctx, prefix+"lock:appointments").Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, l.WithLock(ctx, "appointments", func(context.Context) error { return nil }))
}

func TestRedisLocker_DeadlineFollowsKeyExpiry(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	client, err := NewRedisClient(ctx, Options{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	const ttl = 500 * time.Millisecond
	l := NewRedisLocker(client, ttl, "petcare-test-"+uuid.NewString()+":")

	before := time.Now()
	err = l.WithLock(ctx, "customers", func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.False(t, deadline.After(before.Add(ttl)), "fn may run past the key expiry")

		<-ctx.Done()
		assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
		return nil
	})
	require.NoError(t, err)
}
