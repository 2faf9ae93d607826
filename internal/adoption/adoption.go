// Package adoption keeps the animals listed for adoption.
package adoption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hackgods/petcare-booking/internal/lock"
	"github.com/hackgods/petcare-booking/internal/records"
)

// DefaultImage is used when a listing has no picture.
const DefaultImage = "https://images.unsplash.com/photo-1543852786-1cf6624b9987?w=500&auto=format"

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrPetNotFound   = errors.New("adoption pet not found")
	ErrBusy          = errors.New("adoption list is being updated, please retry")
)

type Store interface {
	AdoptionPets(ctx context.Context) ([]records.AdoptionPet, error)
	SaveAdoptionPets(ctx context.Context, items []records.AdoptionPet) error
}

type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Age         string `json:"age"`
	Type        string `json:"type"`
}

type Service struct {
	store  Store
	locker lock.Locker
	log    *slog.Logger
	newID  func() string
}

func NewService(store Store, locker lock.Locker, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, locker: locker, log: log, newID: uuid.NewString}
}

func (s *Service) List(ctx context.Context) ([]records.AdoptionPet, error) {
	return s.store.AdoptionPets(ctx)
}

// Add lists a new animal. Name, type and age are required.
func (s *Service) Add(ctx context.Context, in Input) (*records.AdoptionPet, error) {
	pet := records.AdoptionPet{
		ID:          s.newID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Image:       strings.TrimSpace(in.Image),
		Age:         strings.TrimSpace(in.Age),
		Type:        strings.TrimSpace(in.Type),
	}

	var missing []string
	if pet.Name == "" {
		missing = append(missing, "name")
	}
	if pet.Type == "" {
		missing = append(missing, "type")
	}
	if pet.Age == "" {
		missing = append(missing, "age")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	if pet.Image == "" {
		pet.Image = DefaultImage
	}

	err := s.withLock(ctx, func(ctx context.Context) error {
		pets, err := s.store.AdoptionPets(ctx)
		if err != nil {
			return err
		}
		return s.store.SaveAdoptionPets(ctx, append(pets, pet))
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "adoption pet listed", "pet_id", pet.ID, "name", pet.Name)
	return &pet, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.withLock(ctx, func(ctx context.Context) error {
		pets, err := s.store.AdoptionPets(ctx)
		if err != nil {
			return err
		}
		kept := pets[:0]
		for _, p := range pets {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(pets) {
			return ErrPetNotFound
		}
		return s.store.SaveAdoptionPets(ctx, kept)
	})
}

func (s *Service) withLock(ctx context.Context, fn func(ctx context.Context) error) error {
	err := s.locker.WithLock(ctx, records.KeyAdoptionPets, fn)
	if errors.Is(err, lock.ErrNotAcquired) {
		return ErrBusy
	}
	return err
}
