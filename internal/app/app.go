// Package app wires configuration into a running set of services.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/petcare-booking/internal/adoption"
	"github.com/hackgods/petcare-booking/internal/api"
	"github.com/hackgods/petcare-booking/internal/appointment"
	"github.com/hackgods/petcare-booking/internal/catalog"
	"github.com/hackgods/petcare-booking/internal/config"
	"github.com/hackgods/petcare-booking/internal/customer"
	"github.com/hackgods/petcare-booking/internal/lock"
	"github.com/hackgods/petcare-booking/internal/pet"
	"github.com/hackgods/petcare-booking/internal/records"
	redisclient "github.com/hackgods/petcare-booking/internal/redis"
	"github.com/hackgods/petcare-booking/internal/store"
)

type App struct {
	Config config.Config
	Log    *slog.Logger

	Backend     store.Backend
	Redis       *redis.Client // nil unless configured
	Collections *store.Collections
	Locker      lock.Locker

	Appointments *appointment.Service
	Catalog      *catalog.Catalog
	Customers    *customer.Service
	Pets         *pet.Service
	Adoption     *adoption.Service
}

// Open connects the configured backends and builds the services on top.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	if cfg.NeedsRedis() {
		rdb, err := redisclient.NewRedisClient(ctx, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.Redis = rdb
		log.Info("connected to redis", "addr", cfg.RedisAddr)
	}

	backend, err := store.Open(ctx, store.Options{
		Backend:     cfg.StoreBackend,
		SQLitePath:  cfg.SQLitePath,
		PostgresDSN: cfg.PostgresDSN,
		Redis:       a.Redis,
		RedisPrefix: cfg.RedisKeyPrefix,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	a.Backend = backend
	log.Info("store ready", "backend", cfg.StoreBackend)

	switch cfg.LockBackend {
	case "redis":
		a.Locker = redisclient.NewRedisLocker(a.Redis, cfg.LockTTL, cfg.RedisKeyPrefix)
	default:
		a.Locker = lock.NewLocal()
	}

	a.Collections = store.NewCollections(backend, log)
	a.Appointments = appointment.NewService(a.Collections, a.Locker, appointment.NewEngine(cfg.Location), log)
	a.Catalog = catalog.New(a.Collections, a.Locker, log)
	a.Pets = pet.NewService(a.Collections, a.Locker, a.Appointments, log)
	a.Customers = customer.NewService(a.Collections, a.Locker, a.Pets, log)
	a.Adoption = adoption.NewService(a.Collections, a.Locker, log)

	return a, nil
}

// EnsureDefaults seeds the default time slots under the collection lock.
func (a *App) EnsureDefaults(ctx context.Context) error {
	return a.Locker.WithLock(ctx, records.KeyTimeSlots, func(ctx context.Context) error {
		_, err := a.Collections.EnsureDefaultTimeSlots(ctx)
		return err
	})
}

func (a *App) Router(version string) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Appointments: a.Appointments,
		Catalog:      a.Catalog,
		Customers:    a.Customers,
		Pets:         a.Pets,
		Adoption:     a.Adoption,
		Store:        a.Backend,
		Redis:        a.Redis,
		Logger:       a.Log,
		Env:          a.Config.Env,
		Version:      version,
	})
}

func (a *App) Close() error {
	var errs []error
	if a.Backend != nil {
		errs = append(errs, a.Backend.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}
