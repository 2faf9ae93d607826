package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/petcare-booking/internal/logging"
	"github.com/hackgods/petcare-booking/internal/records"
)

func TestOperationMetrics_Stats(t *testing.T) {
	var om OperationMetrics
	for _, ms := range []int{40, 10, 30, 20} {
		om.Record(time.Duration(ms)*time.Millisecond, ms != 40, ms == 40)
	}

	avg, fastest, slowest, p50, p95 := om.Stats()
	assert.Equal(t, 25*time.Millisecond, avg)
	assert.Equal(t, 10*time.Millisecond, fastest)
	assert.Equal(t, 40*time.Millisecond, slowest)
	assert.Equal(t, 30*time.Millisecond, p50)
	assert.Equal(t, 40*time.Millisecond, p95)
	assert.Equal(t, int64(3), om.Success)
	assert.Equal(t, int64(1), om.Conflict)
}

func TestCheckSlots(t *testing.T) {
	appts := []records.Appointment{
		{ID: "1", Date: "2024-06-01T00:00:00.000Z", Time: "09:00", Status: records.StatusPending},
		{ID: "2", Date: "2024-06-01T00:00:00.000Z", Time: "09:00", Status: records.StatusCancelled},
		{ID: "3", Date: "2024-06-01T00:00:00.000Z", Time: "10:00", Status: records.StatusConfirmed},
		{ID: "4", Date: "2024-06-01T00:00:00.000Z", Time: "10:00", Status: records.StatusPending},
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/appointments", r.URL.Path)
		json.NewEncoder(w).Encode(appts)
	}))
	t.Cleanup(ts.Close)

	sim := &Simulator{
		config: SimConfig{APIBaseURL: ts.URL},
		client: ts.Client(),
		log:    logging.Discard(),
	}

	violations, err := sim.CheckSlots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06-01T00:00:00.000Z 10:00 x2"}, violations)
}
