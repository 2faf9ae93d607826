package customer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/petcare-booking/internal/appointment"
	"github.com/hackgods/petcare-booking/internal/lock"
	"github.com/hackgods/petcare-booking/internal/logging"
	"github.com/hackgods/petcare-booking/internal/pet"
	"github.com/hackgods/petcare-booking/internal/records"
	"github.com/hackgods/petcare-booking/internal/store"
)

func newTestService(t *testing.T) (*Service, *appointment.Service, *store.Collections) {
	t.Helper()
	cols := store.NewCollections(store.NewMemoryBackend(), logging.Discard())
	locker := lock.NewLocal()
	appts := appointment.NewService(cols, locker, appointment.NewEngine(time.UTC), logging.Discard())
	pets := pet.NewService(cols, locker, appts, logging.Discard())
	return NewService(cols, locker, pets, logging.Discard()), appts, cols
}

func book(t *testing.T, svc *appointment.Service, tm, petName, whatsapp string) *records.Appointment {
	t.Helper()
	a, err := svc.SubmitBooking(context.Background(), appointment.BookingInput{
		ServiceID: "svc", Date: "2024-06-01", Time: tm,
		PetName: petName, PetType: "dog", OwnerName: "Owner " + whatsapp, OwnerWhatsapp: whatsapp,
	})
	require.NoError(t, err)
	return a
}

func TestRegisterAndUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Register(ctx, Input{Name: "Ana"})
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Register(ctx, Input{Name: "Ana", Whatsapp: "111"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, Input{Name: "Bia", Whatsapp: "222"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, Input{Name: "Ana again", Whatsapp: "111"})
	require.ErrorIs(t, err, ErrAlreadyExists)

	_, err = svc.Update(ctx, "111", Input{Name: "Ana", Whatsapp: "222"})
	require.ErrorIs(t, err, ErrAlreadyExists)

	got, err := svc.Update(ctx, "111", Input{Name: "Ana Maria", Whatsapp: "333", Address: "Rua B"})
	require.NoError(t, err)
	assert.Equal(t, "333", got.Whatsapp)

	_, err = svc.Update(ctx, "111", Input{Name: "x", Whatsapp: "444"})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "222"))
	require.ErrorIs(t, svc.Delete(ctx, "222"), ErrNotFound)

	list, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana Maria", list[0].Name)
}

func TestList_SearchAndPets(t *testing.T) {
	ctx := context.Background()
	svc, appts, _ := newTestService(t)

	book(t, appts, "09:00", "Rex", "5511999990000")
	book(t, appts, "10:00", "Rex", "5511999990000")
	book(t, appts, "11:00", "Mia", "5511999990000")
	book(t, appts, "14:00", "Bolt", "5521888880000")

	byName, err := svc.List(ctx, "OWNER 5511")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, []string{"Rex", "Mia"}, byName[0].Pets)

	byPhone, err := svc.List(ctx, "2188")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "5521888880000", byPhone[0].Whatsapp)

	none, err := svc.List(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc, _, cols := newTestService(t)

	_, err := svc.Login(ctx, "111")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Register(ctx, Input{Name: "Ana", Whatsapp: "111"})
	require.NoError(t, err)

	c, err := svc.Login(ctx, " 111 ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.Name)

	current, err := cols.CurrentCustomer(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "111", current.Whatsapp)

	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	svc, appts, cols := newTestService(t)

	book(t, appts, "09:00", "Rex", "111")
	book(t, appts, "10:00", "Bolt", "222")
	require.NoError(t, cols.SaveVaccines(ctx, []records.Vaccine{
		{ID: "v1", PetName: "Rex", Name: "V10", OwnerWhatsapp: "111"},
		{ID: "v2", PetName: "Bolt", Name: "Rabies", OwnerWhatsapp: "222"},
	}))

	d, err := svc.Dashboard(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, "Owner 111", d.Customer.Name)
	require.Len(t, d.Appointments, 1)
	assert.Equal(t, "Rex", d.Appointments[0].PetName)
	require.Len(t, d.Pets, 1)
	require.Len(t, d.Vaccines, 1)
	assert.Equal(t, "v1", d.Vaccines[0].ID)

	_, err = svc.Dashboard(ctx, "999")
	assert.ErrorIs(t, err, ErrNotFound)
}
