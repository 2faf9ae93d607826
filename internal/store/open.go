package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/petcare-booking/internal/db"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Options struct {
	Backend     string
	SQLitePath  string
	PostgresDSN string
	Redis       *redis.Client // required for the redis backend
	RedisPrefix string
}

// Open connects the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryBackend(), nil
	case BackendSQLite:
		sqlDB, err := db.OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteBackend(sqlDB), nil
	case BackendPostgres:
		pool, err := db.ConnectPostgres(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresBackend(pool), nil
	case BackendRedis:
		if opts.Redis == nil {
			return nil, errors.New("redis backend needs a redis client")
		}
		return NewRedisBackend(opts.Redis, opts.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
