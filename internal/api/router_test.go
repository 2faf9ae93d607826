package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/petcare-booking/internal/adoption"
	"github.com/hackgods/petcare-booking/internal/api"
	"github.com/hackgods/petcare-booking/internal/appointment"
	"github.com/hackgods/petcare-booking/internal/catalog"
	"github.com/hackgods/petcare-booking/internal/customer"
	"github.com/hackgods/petcare-booking/internal/lock"
	"github.com/hackgods/petcare-booking/internal/logging"
	"github.com/hackgods/petcare-booking/internal/pet"
	"github.com/hackgods/petcare-booking/internal/records"
	"github.com/hackgods/petcare-booking/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logging.Discard()

	backend := store.NewMemoryBackend()
	cols := store.NewCollections(backend, log)
	_, err := cols.EnsureDefaultTimeSlots(context.Background())
	require.NoError(t, err)

	locker := lock.NewLocal()
	appts := appointment.NewService(cols, locker, appointment.NewEngine(time.UTC), log)
	pets := pet.NewService(cols, locker, appts, log)

	ts := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Appointments: appts,
		Catalog:      catalog.New(cols, locker, log),
		Customers:    customer.NewService(cols, locker, pets, log),
		Pets:         pets,
		Adoption:     adoption.NewService(cols, locker, log),
		Store:        backend,
		Logger:       log,
		Env:          "test",
	}))
	t.Cleanup(ts.Close)
	return ts
}

func doReq(t *testing.T, baseURL, method, path, whatsapp string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if whatsapp != "" {
		req.Header.Set(api.CustomerHeader, whatsapp)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, respBody
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), "body=%s", string(body))
	return v
}

func booking(tm, petName, whatsapp string) map[string]any {
	return map[string]any{
		"serviceId":     "svc-1",
		"date":          "2024-06-01",
		"time":          tm,
		"petName":       petName,
		"petType":       "dog",
		"ownerName":     "Ana",
		"ownerWhatsapp": whatsapp,
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health/live", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Equal(t, "ok", decode[api.LivenessResponse](t, body).Status)

	st, body = doReq(t, ts.URL, "GET", "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, st)
	ready := decode[api.ReadinessResponse](t, body)
	assert.Equal(t, "ok", ready.Dependencies["store"])
	_, hasRedis := ready.Dependencies["redis"]
	assert.False(t, hasRedis)
}

func TestHTTP_BookingFlow(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "GET", "/availability?date=2024-06-01", "", nil)
	require.Equal(t, http.StatusOK, st, string(body))
	avail := decode[api.AvailabilityResponse](t, body)
	require.Len(t, avail.Slots, 6)
	for _, s := range avail.Slots {
		assert.False(t, s.Booked)
	}

	st, body = doReq(t, ts.URL, "POST", "/appointments", "", booking("09:00", "Rex", "111"))
	require.Equal(t, http.StatusCreated, st, string(body))
	created := decode[records.Appointment](t, body)
	assert.Equal(t, records.StatusPending, created.Status)

	st, body = doReq(t, ts.URL, "POST", "/appointments", "", booking("09:00", "Mia", "222"))
	require.Equal(t, http.StatusConflict, st)
	assert.Equal(t, "slot_already_booked", decode[api.ErrorResponse](t, body).Error)

	bad := booking("10:00", "Mia", "")
	st, body = doReq(t, ts.URL, "POST", "/appointments", "", bad)
	require.Equal(t, http.StatusBadRequest, st)
	errResp := decode[api.ErrorResponse](t, body)
	assert.Equal(t, "validation_failed", errResp.Error)
	assert.Equal(t, []string{"ownerWhatsapp"}, errResp.Fields)

	st, _ = doReq(t, ts.URL, "POST", "/appointments", "", nil)
	assert.Equal(t, http.StatusBadRequest, st)

	st, body = doReq(t, ts.URL, "GET", "/availability?date=2024-06-01", "", nil)
	require.Equal(t, http.StatusOK, st)
	avail = decode[api.AvailabilityResponse](t, body)
	assert.True(t, avail.Slots[0].Booked)
	assert.False(t, avail.Slots[1].Booked)

	st, body = doReq(t, ts.URL, "GET", "/appointments?date=2024-06-01", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Len(t, decode[[]records.Appointment](t, body), 1)

	st, body = doReq(t, ts.URL, "GET", "/appointments/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Equal(t, "Rex", decode[records.Appointment](t, body).PetName)

	st, _ = doReq(t, ts.URL, "GET", "/appointments/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, st)

	st, body = doReq(t, ts.URL, "PATCH", "/appointments/"+created.ID+"/status", "", map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, st, string(body))
	assert.Equal(t, records.StatusConfirmed, decode[records.Appointment](t, body).Status)

	st, _ = doReq(t, ts.URL, "PATCH", "/appointments/"+created.ID+"/status", "", map[string]any{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, st)

	// confirmed bookings are not self-cancellable
	st, body = doReq(t, ts.URL, "POST", "/appointments/"+created.ID+"/cancel", "111", nil)
	require.Equal(t, http.StatusConflict, st)
	assert.Equal(t, "invalid_status_transition", decode[api.ErrorResponse](t, body).Error)

	st, _ = doReq(t, ts.URL, "GET", "/availability", "", nil)
	assert.Equal(t, http.StatusBadRequest, st)
}

func TestHTTP_CustomerCancel(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "POST", "/appointments", "", booking("09:00", "Rex", "111"))
	require.Equal(t, http.StatusCreated, st)
	first := decode[records.Appointment](t, body)

	st, body = doReq(t, ts.URL, "POST", "/appointments", "", booking("10:00", "Rex", "111"))
	require.Equal(t, http.StatusCreated, st)
	second := decode[records.Appointment](t, body)

	st, _ = doReq(t, ts.URL, "POST", "/appointments/"+first.ID+"/cancel", "", nil)
	assert.Equal(t, http.StatusUnauthorized, st)

	st, _ = doReq(t, ts.URL, "POST", "/appointments/"+first.ID+"/cancel", "999", nil)
	assert.Equal(t, http.StatusForbidden, st)

	st, body = doReq(t, ts.URL, "POST", "/appointments/"+first.ID+"/cancel", "111", nil)
	require.Equal(t, http.StatusOK, st, string(body))
	assert.Equal(t, records.StatusCancelled, decode[records.Appointment](t, body).Status)

	// the session set by login stands in for the header
	st, _ = doReq(t, ts.URL, "POST", "/login", "", map[string]any{"whatsapp": "111"})
	require.Equal(t, http.StatusOK, st)

	st, _ = doReq(t, ts.URL, "POST", "/appointments/"+second.ID+"/cancel", "", nil)
	require.Equal(t, http.StatusOK, st)

	st, _ = doReq(t, ts.URL, "POST", "/logout", "", nil)
	require.Equal(t, http.StatusNoContent, st)

	st, _ = doReq(t, ts.URL, "GET", "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, st)

	// the cancelled slot is free again
	st, _ = doReq(t, ts.URL, "POST", "/appointments", "", booking("09:00", "Mia", "222"))
	assert.Equal(t, http.StatusCreated, st)
}

func TestHTTP_Catalog(t *testing.T) {
	ts := newTestServer(t)

	st, _ := doReq(t, ts.URL, "POST", "/services", "", map[string]any{"name": "Bath"})
	require.Equal(t, http.StatusBadRequest, st)

	st, body := doReq(t, ts.URL, "POST", "/services", "", map[string]any{"name": "Bath", "price": 50, "duration": 60})
	require.Equal(t, http.StatusCreated, st, string(body))
	svc := decode[records.Service](t, body)

	st, body = doReq(t, ts.URL, "PUT", "/services/"+svc.ID, "", map[string]any{"name": "Bath", "price": 60, "duration": 60})
	require.Equal(t, http.StatusOK, st, string(body))
	assert.Equal(t, 60.0, decode[records.Service](t, body).Price)

	st, body = doReq(t, ts.URL, "GET", "/services", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Len(t, decode[[]records.Service](t, body), 1)

	st, _ = doReq(t, ts.URL, "DELETE", "/services/"+svc.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, st)
	st, _ = doReq(t, ts.URL, "DELETE", "/services/"+svc.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, st)

	st, _ = doReq(t, ts.URL, "POST", "/time-slots", "", map[string]any{"time": "09:00"})
	assert.Equal(t, http.StatusConflict, st)
	st, _ = doReq(t, ts.URL, "POST", "/time-slots", "", map[string]any{"time": "9am"})
	assert.Equal(t, http.StatusBadRequest, st)

	st, body = doReq(t, ts.URL, "POST", "/time-slots", "", map[string]any{"time": "08:30"})
	require.Equal(t, http.StatusCreated, st)
	slot := decode[records.TimeSlot](t, body)

	st, body = doReq(t, ts.URL, "GET", "/time-slots", "", nil)
	require.Equal(t, http.StatusOK, st)
	slots := decode[[]records.TimeSlot](t, body)
	require.Len(t, slots, 7)
	assert.Equal(t, "08:30", slots[0].Time)

	st, _ = doReq(t, ts.URL, "PATCH", "/time-slots/"+slot.ID, "", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, st)

	st, body = doReq(t, ts.URL, "PATCH", "/time-slots/"+slot.ID, "", map[string]any{"available": false})
	require.Equal(t, http.StatusOK, st)
	assert.False(t, decode[records.TimeSlot](t, body).Available)

	st, _ = doReq(t, ts.URL, "DELETE", "/time-slots/"+slot.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, st)
}

func TestHTTP_CustomersPetsAndDashboard(t *testing.T) {
	ts := newTestServer(t)

	st, _ := doReq(t, ts.URL, "POST", "/login", "", map[string]any{"whatsapp": "111"})
	assert.Equal(t, http.StatusNotFound, st)

	st, _ = doReq(t, ts.URL, "POST", "/customers", "", map[string]any{"name": "Ana", "whatsapp": "111"})
	require.Equal(t, http.StatusCreated, st)
	st, _ = doReq(t, ts.URL, "POST", "/customers", "", map[string]any{"name": "Ana", "whatsapp": "111"})
	assert.Equal(t, http.StatusConflict, st)

	st, body := doReq(t, ts.URL, "PUT", "/customers/111", "", map[string]any{"name": "Ana Maria", "whatsapp": "111", "address": "Rua A"})
	require.Equal(t, http.StatusOK, st, string(body))

	st, body = doReq(t, ts.URL, "POST", "/pets", "", map[string]any{"name": "Rex", "type": "dog", "age": "3", "ownerWhatsapp": "111"})
	require.Equal(t, http.StatusCreated, st, string(body))
	rex := decode[records.ClientPet](t, body)
	assert.Equal(t, "Ana Maria", rex.OwnerName)

	st, _ = doReq(t, ts.URL, "POST", "/pets", "", map[string]any{"name": "Rex", "type": "dog", "age": "3", "ownerWhatsapp": "000"})
	assert.Equal(t, http.StatusUnprocessableEntity, st)

	st, _ = doReq(t, ts.URL, "POST", "/appointments", "", booking("09:00", "Rex", "111"))
	require.Equal(t, http.StatusCreated, st)

	st, body = doReq(t, ts.URL, "PUT", "/pets/"+rex.ID, "", map[string]any{"name": "Rex", "type": "dog", "age": "4"})
	require.Equal(t, http.StatusOK, st, string(body))

	st, body = doReq(t, ts.URL, "POST", "/pets/"+rex.ID+"/vaccines", "", map[string]any{
		"name": "V10", "date": "2024-01-01", "nextDate": "2025-01-01",
	})
	require.Equal(t, http.StatusCreated, st, string(body))

	st, body = doReq(t, ts.URL, "POST", "/me/vaccines", "111", map[string]any{"petName": "Rex", "name": "Rabies"})
	require.Equal(t, http.StatusCreated, st, string(body))

	st, _ = doReq(t, ts.URL, "POST", "/me/vaccines", "111", map[string]any{"petName": "Ghost", "name": "Rabies"})
	assert.Equal(t, http.StatusNotFound, st)

	st, body = doReq(t, ts.URL, "GET", "/pets/"+rex.ID+"/vaccines", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Len(t, decode[[]records.Vaccine](t, body), 2)

	st, body = doReq(t, ts.URL, "GET", "/me", "111", nil)
	require.Equal(t, http.StatusOK, st, string(body))
	dash := decode[customer.Dashboard](t, body)
	require.Len(t, dash.Appointments, 1)
	assert.Equal(t, "4", dash.Appointments[0].PetAge)
	require.Len(t, dash.Pets, 1)
	assert.Equal(t, rex.ID, dash.Pets[0].ID)
	assert.Len(t, dash.Vaccines, 2)

	st, body = doReq(t, ts.URL, "GET", "/customers?search=ana", "", nil)
	require.Equal(t, http.StatusOK, st)
	list := decode[[]customer.Summary](t, body)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"Rex"}, list[0].Pets)

	st, _ = doReq(t, ts.URL, "DELETE", "/pets/"+rex.ID, "", nil)
	require.Equal(t, http.StatusNoContent, st)

	st, body = doReq(t, ts.URL, "GET", "/pets?owner=111", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Empty(t, decode[[]records.ClientPet](t, body))

	st, _ = doReq(t, ts.URL, "DELETE", "/customers/111", "", nil)
	assert.Equal(t, http.StatusNoContent, st)
}

func TestAdoptionPets(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "POST", "/adoption-pets", "", map[string]any{"name": "Luna"})
	require.Equal(t, http.StatusBadRequest, st)
	assert.Equal(t, "validation_failed", decode[api.ErrorResponse](t, body).Error)

	st, body = doReq(t, ts.URL, "POST", "/adoption-pets", "", map[string]any{
		"name": "Luna", "description": "calm", "age": "2 anos", "type": "Cachorro",
	})
	require.Equal(t, http.StatusCreated, st, string(body))
	luna := decode[records.AdoptionPet](t, body)
	assert.Equal(t, adoption.DefaultImage, luna.Image)

	st, body = doReq(t, ts.URL, "GET", "/adoption-pets", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Len(t, decode[[]records.AdoptionPet](t, body), 1)

	st, _ = doReq(t, ts.URL, "DELETE", "/adoption-pets/"+luna.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, st)
	st, _ = doReq(t, ts.URL, "DELETE", "/adoption-pets/"+luna.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, st)
}

func TestBooking_ClockFormatSharesSlot(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "POST", "/appointments", "", booking("09:00", "Rex", "5511999990000"))
	require.Equal(t, http.StatusCreated, st, string(body))

	st, _ = doReq(t, ts.URL, "POST", "/appointments", "", booking("9:00", "Mia", "5511888880000"))
	assert.Equal(t, http.StatusConflict, st)

	st, _ = doReq(t, ts.URL, "POST", "/appointments", "", booking("not-a-time", "Mia", "5511888880000"))
	assert.Equal(t, http.StatusBadRequest, st)
}
