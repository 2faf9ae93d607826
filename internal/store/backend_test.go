package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/petcare-booking/internal/db"
)

// testBackendContract checks the behaviour every backend shares. Keys are
// made unique so the test can run against a shared database.
func testBackendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()
	key := "contract-" + uuid.NewString()
	t.Cleanup(func() { _ = b.Delete(context.Background(), key) })

	require.NoError(t, b.Ping(ctx))

	_, ok, err := b.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Put(ctx, key, []byte(`[{"id":"1"}]`)))
	got, ok, err := b.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, b.Put(ctx, key, []byte(`[]`)))
	got, _, err = b.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, b.Delete(ctx, key))
	_, ok, err = b.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting a missing key is not an error
	require.NoError(t, b.Delete(ctx, key))
}

func TestMemoryBackend(t *testing.T) {
	testBackendContract(t, NewMemoryBackend())
}

func TestMemoryBackend_CopiesValues(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	value := []byte(`[1]`)
	require.NoError(t, b.Put(ctx, "k", value))
	value[1] = '2'

	got, _, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))
}

func TestSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	sqlDB, err := db.OpenSQLite(path)
	require.NoError(t, err)

	b := NewSQLiteBackend(sqlDB)
	t.Cleanup(func() { b.Close() })

	testBackendContract(t, b)
}

func TestSQLiteBackend_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	b, err := Open(ctx, Options{Backend: BackendSQLite, SQLitePath: path})
	require.NoError(t, err)
	require.NoError(t, b.Put(ctx, "services", []byte(`[{"id":"s1"}]`)))
	require.NoError(t, b.Close())

	b, err = Open(ctx, Options{Backend: BackendSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer b.Close()

	got, ok, err := b.Get(ctx, "services")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"s1"}]`, string(got))
}

func TestPostgresBackend(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	b, err := Open(context.Background(), Options{Backend: BackendPostgres, PostgresDSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	testBackendContract(t, b)
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	b, err := Open(context.Background(), Options{
		Backend:     BackendRedis,
		Redis:       client,
		RedisPrefix: "petcare-test:",
	})
	require.NoError(t, err)

	testBackendContract(t, b)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, Options{Backend: "etcd"})
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = Open(ctx, Options{Backend: BackendRedis})
	assert.Error(t, err)

	b, err := Open(ctx, Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.NoError(t, b.Ping(ctx))
}
