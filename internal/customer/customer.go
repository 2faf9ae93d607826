// Package customer covers the customer registry, login by whatsapp number
// and the customer dashboard.
package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hackgods/petcare-booking/internal/lock"
	"github.com/hackgods/petcare-booking/internal/pet"
	"github.com/hackgods/petcare-booking/internal/records"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrNotFound      = errors.New("customer not found")
	ErrAlreadyExists = errors.New("customer with this whatsapp already exists")
	ErrBusy          = errors.New("customers are being updated, please retry")
)

type Store interface {
	Customers(ctx context.Context) ([]records.Customer, error)
	SaveCustomers(ctx context.Context, items []records.Customer) error
	Appointments(ctx context.Context) ([]records.Appointment, error)
	CurrentCustomer(ctx context.Context) (*records.Customer, error)
	SetCurrentCustomer(ctx context.Context, c records.Customer) error
	ClearCurrentCustomer(ctx context.Context) error
}

// PetDirectory resolves the pets and vaccines an owner can see.
type PetDirectory interface {
	OwnedBy(ctx context.Context, whatsapp string) ([]pet.OwnedPet, error)
	VaccinesOwnedBy(ctx context.Context, whatsapp string) ([]records.Vaccine, error)
}

type Input struct {
	Name     string `json:"name"`
	Whatsapp string `json:"whatsapp"`
	Address  string `json:"address"`
}

func (in Input) normalize() (records.Customer, error) {
	c := records.Customer{
		Name:     strings.TrimSpace(in.Name),
		Whatsapp: strings.TrimSpace(in.Whatsapp),
		Address:  strings.TrimSpace(in.Address),
	}
	var missing []string
	if c.Name == "" {
		missing = append(missing, "name")
	}
	if c.Whatsapp == "" {
		missing = append(missing, "whatsapp")
	}
	if len(missing) > 0 {
		return c, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	return c, nil
}

// Summary is a customer row of the admin list.
type Summary struct {
	records.Customer
	Pets []string `json:"pets"`
}

type Dashboard struct {
	Customer     records.Customer      `json:"customer"`
	Appointments []records.Appointment `json:"appointments"`
	Pets         []pet.OwnedPet        `json:"pets"`
	Vaccines     []records.Vaccine     `json:"vaccines"`
}

type Service struct {
	store  Store
	locker lock.Locker
	pets   PetDirectory
	log    *slog.Logger
}

func NewService(store Store, locker lock.Locker, pets PetDirectory, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, locker: locker, pets: pets, log: log}
}

func (s *Service) Register(ctx context.Context, in Input) (*records.Customer, error) {
	c, err := in.normalize()
	if err != nil {
		return nil, err
	}

	err = s.withLock(ctx, func(ctx context.Context) error {
		customers, err := s.store.Customers(ctx)
		if err != nil {
			return err
		}
		if indexOf(customers, c.Whatsapp) >= 0 {
			return ErrAlreadyExists
		}
		return s.store.SaveCustomers(ctx, append(customers, c))
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "customer registered", "whatsapp", c.Whatsapp)
	return &c, nil
}

// Update edits the customer currently identified by whatsapp. The number
// itself may change as long as no other customer holds the new one.
func (s *Service) Update(ctx context.Context, whatsapp string, in Input) (*records.Customer, error) {
	c, err := in.normalize()
	if err != nil {
		return nil, err
	}
	whatsapp = strings.TrimSpace(whatsapp)

	err = s.withLock(ctx, func(ctx context.Context) error {
		customers, err := s.store.Customers(ctx)
		if err != nil {
			return err
		}
		idx := indexOf(customers, whatsapp)
		if idx < 0 {
			return ErrNotFound
		}
		if other := indexOf(customers, c.Whatsapp); other >= 0 && other != idx {
			return ErrAlreadyExists
		}
		customers[idx] = c
		return s.store.SaveCustomers(ctx, customers)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes the customer record only. Appointments and pets stay.
func (s *Service) Delete(ctx context.Context, whatsapp string) error {
	whatsapp = strings.TrimSpace(whatsapp)
	return s.withLock(ctx, func(ctx context.Context) error {
		customers, err := s.store.Customers(ctx)
		if err != nil {
			return err
		}
		idx := indexOf(customers, whatsapp)
		if idx < 0 {
			return ErrNotFound
		}
		return s.store.SaveCustomers(ctx, append(customers[:idx], customers[idx+1:]...))
	})
}

// List filters by a case-insensitive name match or a whatsapp substring.
// Each row carries the pet names seen in that customer's appointments.
func (s *Service) List(ctx context.Context, search string) ([]Summary, error) {
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, err
	}
	appts, err := s.store.Appointments(ctx)
	if err != nil {
		return nil, err
	}

	petsByOwner := make(map[string][]string)
	seen := make(map[[2]string]bool)
	for _, a := range appts {
		k := [2]string{a.OwnerWhatsapp, a.PetName}
		if a.PetName == "" || seen[k] {
			continue
		}
		seen[k] = true
		petsByOwner[a.OwnerWhatsapp] = append(petsByOwner[a.OwnerWhatsapp], a.PetName)
	}

	search = strings.TrimSpace(search)
	needle := strings.ToLower(search)

	out := make([]Summary, 0, len(customers))
	for _, c := range customers {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(c.Whatsapp, search) {
			continue
		}
		pets := petsByOwner[c.Whatsapp]
		if pets == nil {
			pets = []string{}
		}
		out = append(out, Summary{Customer: c, Pets: pets})
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, whatsapp string) (*records.Customer, error) {
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(customers, strings.TrimSpace(whatsapp))
	if idx < 0 {
		return nil, ErrNotFound
	}
	return &customers[idx], nil
}

// Login looks the customer up by whatsapp and records the session marker.
func (s *Service) Login(ctx context.Context, whatsapp string) (*records.Customer, error) {
	c, err := s.Get(ctx, whatsapp)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetCurrentCustomer(ctx, *c); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.log.InfoContext(ctx, "customer logged in", "whatsapp", c.Whatsapp)
	return c, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.store.ClearCurrentCustomer(ctx)
}

// Current returns the logged-in customer, or ErrNotFound.
func (s *Service) Current(ctx context.Context) (*records.Customer, error) {
	c, err := s.store.CurrentCustomer(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) Dashboard(ctx context.Context, whatsapp string) (*Dashboard, error) {
	c, err := s.Get(ctx, whatsapp)
	if err != nil {
		return nil, err
	}

	appts, err := s.store.Appointments(ctx)
	if err != nil {
		return nil, err
	}
	own := make([]records.Appointment, 0)
	for _, a := range appts {
		if a.OwnerWhatsapp == c.Whatsapp {
			own = append(own, a)
		}
	}

	pets, err := s.pets.OwnedBy(ctx, c.Whatsapp)
	if err != nil {
		return nil, err
	}
	vaccines, err := s.pets.VaccinesOwnedBy(ctx, c.Whatsapp)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Customer:     *c,
		Appointments: own,
		Pets:         pets,
		Vaccines:     vaccines,
	}, nil
}

func (s *Service) withLock(ctx context.Context, fn func(ctx context.Context) error) error {
	err := s.locker.WithLock(ctx, records.KeyCustomers, fn)
	if errors.Is(err, lock.ErrNotAcquired) {
		return ErrBusy
	}
	return err
}

func indexOf(customers []records.Customer, whatsapp string) int {
	for i := range customers {
		if customers[i].Whatsapp == whatsapp {
			return i
		}
	}
	return -1
}
