// Package catalog manages the services offered and the daily time slots.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/hackgods/petcare-booking/internal/lock"
	"github.com/hackgods/petcare-booking/internal/records"
)

var (
	ErrMissingFields   = errors.New("missing required fields")
	ErrServiceNotFound = errors.New("service not found")
	ErrSlotNotFound    = errors.New("time slot not found")
	ErrInvalidTime     = records.ErrInvalidTime
	ErrDuplicateTime   = errors.New("time slot already exists")
	ErrBusy            = errors.New("catalog is being updated, please retry")
)

type Store interface {
	Services(ctx context.Context) ([]records.Service, error)
	SaveServices(ctx context.Context, items []records.Service) error
	TimeSlots(ctx context.Context) ([]records.TimeSlot, error)
	SaveTimeSlots(ctx context.Context, items []records.TimeSlot) error
}

type ServiceInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"`
}

func (in ServiceInput) missing() []string {
	var out []string
	if strings.TrimSpace(in.Name) == "" {
		out = append(out, "name")
	}
	if in.Price <= 0 {
		out = append(out, "price")
	}
	if in.Duration <= 0 {
		out = append(out, "duration")
	}
	return out
}

type Catalog struct {
	store  Store
	locker lock.Locker
	log    *slog.Logger
	newID  func() string
}

func New(store Store, locker lock.Locker, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{store: store, locker: locker, log: log, newID: uuid.NewString}
}

func (c *Catalog) ListServices(ctx context.Context) ([]records.Service, error) {
	return c.store.Services(ctx)
}

func (c *Catalog) GetService(ctx context.Context, id string) (*records.Service, error) {
	services, err := c.store.Services(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range services {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, ErrServiceNotFound
}

func (c *Catalog) CreateService(ctx context.Context, in ServiceInput) (*records.Service, error) {
	if missing := in.missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	svc := records.Service{
		ID:          c.newID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Duration:    in.Duration,
	}

	err := c.withLock(ctx, records.KeyServices, func(ctx context.Context) error {
		services, err := c.store.Services(ctx)
		if err != nil {
			return err
		}
		return c.store.SaveServices(ctx, append(services, svc))
	})
	if err != nil {
		return nil, err
	}

	c.log.InfoContext(ctx, "service created", "service_id", svc.ID, "name", svc.Name)
	return &svc, nil
}

func (c *Catalog) UpdateService(ctx context.Context, id string, in ServiceInput) (*records.Service, error) {
	if missing := in.missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	var updated records.Service
	err := c.withLock(ctx, records.KeyServices, func(ctx context.Context) error {
		services, err := c.store.Services(ctx)
		if err != nil {
			return err
		}
		for i := range services {
			if services[i].ID != id {
				continue
			}
			services[i].Name = strings.TrimSpace(in.Name)
			services[i].Description = strings.TrimSpace(in.Description)
			services[i].Price = in.Price
			services[i].Duration = in.Duration
			updated = services[i]
			return c.store.SaveServices(ctx, services)
		}
		return ErrServiceNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteService removes the service. Appointments keep their serviceId.
func (c *Catalog) DeleteService(ctx context.Context, id string) error {
	return c.withLock(ctx, records.KeyServices, func(ctx context.Context) error {
		services, err := c.store.Services(ctx)
		if err != nil {
			return err
		}
		kept := services[:0]
		for _, s := range services {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		if len(kept) == len(services) {
			return ErrServiceNotFound
		}
		return c.store.SaveServices(ctx, kept)
	})
}

// ListTimeSlots returns the configured slots sorted by time.
func (c *Catalog) ListTimeSlots(ctx context.Context) ([]records.TimeSlot, error) {
	slots, err := c.store.TimeSlots(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Time < slots[j].Time
	})
	return slots, nil
}

func (c *Catalog) CreateTimeSlot(ctx context.Context, raw string) (*records.TimeSlot, error) {
	hhmm, err := records.NormalizeTime(raw)
	if err != nil {
		return nil, err
	}

	slot := records.TimeSlot{ID: c.newID(), Time: hhmm, Available: true}
	err = c.withLock(ctx, records.KeyTimeSlots, func(ctx context.Context) error {
		slots, err := c.store.TimeSlots(ctx)
		if err != nil {
			return err
		}
		for _, s := range slots {
			if s.Time == hhmm {
				return ErrDuplicateTime
			}
		}
		return c.store.SaveTimeSlots(ctx, append(slots, slot))
	})
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// SetSlotAvailable flips the stored flag. Availability checks for booking
// look only at appointments.
func (c *Catalog) SetSlotAvailable(ctx context.Context, id string, available bool) (*records.TimeSlot, error) {
	var updated records.TimeSlot
	err := c.withLock(ctx, records.KeyTimeSlots, func(ctx context.Context) error {
		slots, err := c.store.TimeSlots(ctx)
		if err != nil {
			return err
		}
		for i := range slots {
			if slots[i].ID == id {
				slots[i].Available = available
				updated = slots[i]
				return c.store.SaveTimeSlots(ctx, slots)
			}
		}
		return ErrSlotNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Catalog) DeleteTimeSlot(ctx context.Context, id string) error {
	return c.withLock(ctx, records.KeyTimeSlots, func(ctx context.Context) error {
		slots, err := c.store.TimeSlots(ctx)
		if err != nil {
			return err
		}
		kept := slots[:0]
		for _, s := range slots {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		if len(kept) == len(slots) {
			return ErrSlotNotFound
		}
		return c.store.SaveTimeSlots(ctx, kept)
	})
}

func (c *Catalog) withLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	err := c.locker.WithLock(ctx, key, fn)
	if errors.Is(err, lock.ErrNotAcquired) {
		return ErrBusy
	}
	return err
}
