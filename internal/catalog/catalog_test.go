package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/petcare-booking/internal/lock"
	"github.com/hackgods/petcare-booking/internal/logging"
	"github.com/hackgods/petcare-booking/internal/store"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cols := store.NewCollections(store.NewMemoryBackend(), logging.Discard())
	return New(cols, lock.NewLocal(), logging.Discard())
}

func TestServices_CRUD(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	_, err := c.CreateService(ctx, ServiceInput{Name: "Bath"})
	require.ErrorIs(t, err, ErrMissingFields)
	assert.Contains(t, err.Error(), "price, duration")

	bath, err := c.CreateService(ctx, ServiceInput{Name: " Bath ", Price: 50, Duration: 60})
	require.NoError(t, err)
	assert.Equal(t, "Bath", bath.Name)
	assert.NotEmpty(t, bath.ID)

	groom, err := c.CreateService(ctx, ServiceInput{Name: "Grooming", Price: 80, Duration: 90})
	require.NoError(t, err)
	assert.NotEqual(t, bath.ID, groom.ID)

	updated, err := c.UpdateService(ctx, bath.ID, ServiceInput{Name: "Bath", Description: "with towel", Price: 55, Duration: 60})
	require.NoError(t, err)
	assert.Equal(t, 55.0, updated.Price)

	got, err := c.GetService(ctx, bath.ID)
	require.NoError(t, err)
	assert.Equal(t, "with towel", got.Description)

	require.NoError(t, c.DeleteService(ctx, bath.ID))
	assert.ErrorIs(t, c.DeleteService(ctx, bath.ID), ErrServiceNotFound)

	_, err = c.UpdateService(ctx, "nope", ServiceInput{Name: "x", Price: 1, Duration: 1})
	assert.ErrorIs(t, err, ErrServiceNotFound)

	list, err := c.ListServices(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Grooming", list[0].Name)
}

func TestTimeSlots(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)

	_, err := c.CreateTimeSlot(ctx, "25:00")
	require.ErrorIs(t, err, ErrInvalidTime)
	_, err = c.CreateTimeSlot(ctx, "noon")
	require.ErrorIs(t, err, ErrInvalidTime)

	late, err := c.CreateTimeSlot(ctx, "16:30")
	require.NoError(t, err)
	assert.True(t, late.Available)

	early, err := c.CreateTimeSlot(ctx, "9:00")
	require.NoError(t, err)
	assert.Equal(t, "09:00", early.Time)

	_, err = c.CreateTimeSlot(ctx, "09:00")
	require.ErrorIs(t, err, ErrDuplicateTime)

	slots, err := c.ListTimeSlots(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].Time)
	assert.Equal(t, "16:30", slots[1].Time)

	off, err := c.SetSlotAvailable(ctx, late.ID, false)
	require.NoError(t, err)
	assert.False(t, off.Available)

	_, err = c.SetSlotAvailable(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrSlotNotFound)

	require.NoError(t, c.DeleteTimeSlot(ctx, early.ID))
	assert.ErrorIs(t, c.DeleteTimeSlot(ctx, early.ID), ErrSlotNotFound)
}
