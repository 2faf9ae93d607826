package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/petcare-booking/internal/config"
	"github.com/hackgods/petcare-booking/internal/logging"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		Env:          "test",
		StoreBackend: "sqlite",
		SQLitePath:   filepath.Join(t.TempDir(), "petcare.db"),
		LockBackend:  "local",
		LockTTL:      time.Second,
		Location:     time.UTC,
	}

	a, err := Open(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	assert.Nil(t, a.Redis)

	require.NoError(t, a.EnsureDefaults(ctx))
	slots, err := a.Catalog.ListTimeSlots(ctx)
	require.NoError(t, err)
	assert.Len(t, slots, 6)

	rec := httptest.NewRecorder()
	a.Router("test").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOpen_BadBackend(t *testing.T) {
	_, err := Open(context.Background(), config.Config{StoreBackend: "etcd", Location: time.UTC}, logging.Discard())
	assert.Error(t, err)
}
