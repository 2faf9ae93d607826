package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hackgods/petcare-booking/internal/records"
)

// DefaultSlotTimes is written to timeSlots when the key is absent.
var DefaultSlotTimes = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}

// Collections is the typed view of the record store. Every load reads the
// whole collection and every save overwrites it.
type Collections struct {
	backend Backend
	log     *slog.Logger
}

func NewCollections(backend Backend, log *slog.Logger) *Collections {
	if log == nil {
		log = slog.Default()
	}
	return &Collections{backend: backend, log: log}
}

func (c *Collections) Backend() Backend {
	return c.backend
}

// loadLenient treats a corrupted collection as empty after logging it.
func loadLenient[T any](ctx context.Context, c *Collections, key string) ([]T, error) {
	items, err := LoadStrict[T](ctx, c.backend, key)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			c.log.Warn("discarding corrupted collection", "key", key, "error", perr.Err)
			return []T{}, nil
		}
		return nil, err
	}
	return items, nil
}

// LoadStrict loads a collection and returns *ParseError for malformed data.
func LoadStrict[T any](ctx context.Context, b Backend, key string) ([]T, error) {
	raw, ok, err := b.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ParseError{Key: key, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// SaveCollection encodes items the way JSON.stringify does: no HTML
// escaping, no trailing newline, and an empty array instead of null.
func SaveCollection[T any](ctx context.Context, b Backend, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := encode(items)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return b.Put(ctx, key, data)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (c *Collections) Services(ctx context.Context) ([]records.Service, error) {
	return loadLenient[records.Service](ctx, c, records.KeyServices)
}

func (c *Collections) SaveServices(ctx context.Context, items []records.Service) error {
	return SaveCollection(ctx, c.backend, records.KeyServices, items)
}

func (c *Collections) TimeSlots(ctx context.Context) ([]records.TimeSlot, error) {
	return loadLenient[records.TimeSlot](ctx, c, records.KeyTimeSlots)
}

func (c *Collections) SaveTimeSlots(ctx context.Context, items []records.TimeSlot) error {
	return SaveCollection(ctx, c.backend, records.KeyTimeSlots, items)
}

func (c *Collections) Appointments(ctx context.Context) ([]records.Appointment, error) {
	return loadLenient[records.Appointment](ctx, c, records.KeyAppointments)
}

func (c *Collections) SaveAppointments(ctx context.Context, items []records.Appointment) error {
	return SaveCollection(ctx, c.backend, records.KeyAppointments, items)
}

func (c *Collections) Customers(ctx context.Context) ([]records.Customer, error) {
	return loadLenient[records.Customer](ctx, c, records.KeyCustomers)
}

func (c *Collections) SaveCustomers(ctx context.Context, items []records.Customer) error {
	return SaveCollection(ctx, c.backend, records.KeyCustomers, items)
}

func (c *Collections) CustomerPets(ctx context.Context) ([]records.Pet, error) {
	return loadLenient[records.Pet](ctx, c, records.KeyCustomerPets)
}

func (c *Collections) SaveCustomerPets(ctx context.Context, items []records.Pet) error {
	return SaveCollection(ctx, c.backend, records.KeyCustomerPets, items)
}

func (c *Collections) ClientPets(ctx context.Context) ([]records.ClientPet, error) {
	return loadLenient[records.ClientPet](ctx, c, records.KeyClientPets)
}

func (c *Collections) SaveClientPets(ctx context.Context, items []records.ClientPet) error {
	return SaveCollection(ctx, c.backend, records.KeyClientPets, items)
}

func (c *Collections) Vaccines(ctx context.Context) ([]records.Vaccine, error) {
	return loadLenient[records.Vaccine](ctx, c, records.KeyPetVaccines)
}

func (c *Collections) SaveVaccines(ctx context.Context, items []records.Vaccine) error {
	return SaveCollection(ctx, c.backend, records.KeyPetVaccines, items)
}

func (c *Collections) AdoptionPets(ctx context.Context) ([]records.AdoptionPet, error) {
	return loadLenient[records.AdoptionPet](ctx, c, records.KeyAdoptionPets)
}

func (c *Collections) SaveAdoptionPets(ctx context.Context, items []records.AdoptionPet) error {
	return SaveCollection(ctx, c.backend, records.KeyAdoptionPets, items)
}

// CurrentCustomer returns the session marker, if any. A corrupted marker is
// treated as no session.
func (c *Collections) CurrentCustomer(ctx context.Context) (*records.Customer, error) {
	raw, ok, err := c.backend.Get(ctx, records.KeyCurrentCustomer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var cust records.Customer
	if err := json.Unmarshal(raw, &cust); err != nil {
		c.log.Warn("discarding corrupted session marker", "key", records.KeyCurrentCustomer, "error", err)
		return nil, nil
	}
	return &cust, nil
}

func (c *Collections) SetCurrentCustomer(ctx context.Context, cust records.Customer) error {
	data, err := encode(cust)
	if err != nil {
		return fmt.Errorf("encode %q: %w", records.KeyCurrentCustomer, err)
	}
	return c.backend.Put(ctx, records.KeyCurrentCustomer, data)
}

func (c *Collections) ClearCurrentCustomer(ctx context.Context) error {
	return c.backend.Delete(ctx, records.KeyCurrentCustomer)
}

// EnsureDefaultTimeSlots seeds the default slot list when timeSlots has never
// been written. An existing (even empty) list is left alone.
func (c *Collections) EnsureDefaultTimeSlots(ctx context.Context) ([]records.TimeSlot, error) {
	_, ok, err := c.backend.Get(ctx, records.KeyTimeSlots)
	if err != nil {
		return nil, err
	}
	if ok {
		return c.TimeSlots(ctx)
	}

	slots := make([]records.TimeSlot, 0, len(DefaultSlotTimes))
	for _, t := range DefaultSlotTimes {
		slots = append(slots, records.TimeSlot{
			ID:        uuid.NewString(),
			Time:      t,
			Available: true,
		})
	}
	if err := c.SaveTimeSlots(ctx, slots); err != nil {
		return nil, err
	}
	c.log.Info("seeded default time slots", "count", len(slots))
	return slots, nil
}
