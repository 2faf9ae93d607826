// Package pet manages the staff-registered client pets and their vaccine
// history.
package pet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/petcare-booking/internal/appointment"
	"github.com/hackgods/petcare-booking/internal/lock"
	"github.com/hackgods/petcare-booking/internal/records"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrPetNotFound   = errors.New("pet not found")
	ErrOwnerNotFound = errors.New("owner not found")
	ErrBusy          = errors.New("pets are being updated, please retry")
)

const isoMillis = "2006-01-02T15:04:05.000Z"

type Store interface {
	Customers(ctx context.Context) ([]records.Customer, error)
	CustomerPets(ctx context.Context) ([]records.Pet, error)
	ClientPets(ctx context.Context) ([]records.ClientPet, error)
	SaveClientPets(ctx context.Context, items []records.ClientPet) error
	Vaccines(ctx context.Context) ([]records.Vaccine, error)
	SaveVaccines(ctx context.Context, items []records.Vaccine) error
}

// SnapshotUpdater rewrites the pet fields copied onto appointments.
type SnapshotUpdater interface {
	UpdatePetSnapshots(ctx context.Context, ownerWhatsapp, oldName string, pet appointment.PetSnapshot) (int, error)
}

type Input struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Breed         string `json:"breed"`
	Age           string `json:"age"`
	Weight        string `json:"weight"`
	Notes         string `json:"notes"`
	OwnerWhatsapp string `json:"ownerWhatsapp"`
}

func (in Input) trimmed() Input {
	return Input{
		Name:          strings.TrimSpace(in.Name),
		Type:          strings.TrimSpace(in.Type),
		Breed:         strings.TrimSpace(in.Breed),
		Age:           strings.TrimSpace(in.Age),
		Weight:        strings.TrimSpace(in.Weight),
		Notes:         strings.TrimSpace(in.Notes),
		OwnerWhatsapp: strings.TrimSpace(in.OwnerWhatsapp),
	}
}

func (in Input) missing(withOwner bool) []string {
	var out []string
	if in.Name == "" {
		out = append(out, "name")
	}
	if in.Type == "" {
		out = append(out, "type")
	}
	if in.Age == "" {
		out = append(out, "age")
	}
	if withOwner && in.OwnerWhatsapp == "" {
		out = append(out, "ownerWhatsapp")
	}
	return out
}

type VaccineInput struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	NextDate string `json:"nextDate"`
	Notes    string `json:"notes"`
}

// OwnedPet is a pet as the owner sees it, whichever collection it came from.
type OwnedPet struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Breed         string `json:"breed,omitempty"`
	Age           string `json:"age"`
	Weight        string `json:"weight,omitempty"`
	Notes         string `json:"notes,omitempty"`
	OwnerWhatsapp string `json:"ownerWhatsapp"`
}

type Service struct {
	store        Store
	locker       lock.Locker
	appointments SnapshotUpdater
	log          *slog.Logger
	now          func() time.Time
	newID        func() string
}

func NewService(store Store, locker lock.Locker, appointments SnapshotUpdater, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:        store,
		locker:       locker,
		appointments: appointments,
		log:          log,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// List returns client pets, optionally only those of one owner.
func (s *Service) List(ctx context.Context, ownerWhatsapp string) ([]records.ClientPet, error) {
	pets, err := s.store.ClientPets(ctx)
	if err != nil {
		return nil, err
	}
	ownerWhatsapp = strings.TrimSpace(ownerWhatsapp)
	if ownerWhatsapp == "" {
		return pets, nil
	}
	out := make([]records.ClientPet, 0)
	for _, p := range pets {
		if p.OwnerWhatsapp == ownerWhatsapp {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*records.ClientPet, error) {
	pets, err := s.store.ClientPets(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range pets {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrPetNotFound
}

// Register adds a client pet for an existing customer. Owner fields are
// copied from the customer record.
func (s *Service) Register(ctx context.Context, in Input) (*records.ClientPet, error) {
	in = in.trimmed()
	if missing := in.missing(true); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	owner, err := s.findOwner(ctx, in.OwnerWhatsapp)
	if err != nil {
		return nil, err
	}

	pet := records.ClientPet{
		ID:            s.newID(),
		Name:          in.Name,
		Type:          in.Type,
		Breed:         in.Breed,
		Age:           in.Age,
		Weight:        in.Weight,
		OwnerID:       owner.Whatsapp,
		OwnerName:     owner.Name,
		OwnerWhatsapp: owner.Whatsapp,
		Notes:         in.Notes,
	}

	err = s.withLock(ctx, records.KeyClientPets, func(ctx context.Context) error {
		pets, err := s.store.ClientPets(ctx)
		if err != nil {
			return err
		}
		return s.store.SaveClientPets(ctx, append(pets, pet))
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "client pet registered", "pet_id", pet.ID, "owner", pet.OwnerWhatsapp)
	return &pet, nil
}

// Update rewrites the pet and carries the new details over to the owner's
// appointments that were booked under the old name.
func (s *Service) Update(ctx context.Context, id string, in Input) (*records.ClientPet, error) {
	in = in.trimmed()
	if missing := in.missing(false); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	var before, after records.ClientPet
	err := s.withLock(ctx, records.KeyClientPets, func(ctx context.Context) error {
		pets, err := s.store.ClientPets(ctx)
		if err != nil {
			return err
		}
		for i := range pets {
			if pets[i].ID != id {
				continue
			}
			before = pets[i]
			pets[i].Name = in.Name
			pets[i].Type = in.Type
			pets[i].Breed = in.Breed
			pets[i].Age = in.Age
			pets[i].Weight = in.Weight
			pets[i].Notes = in.Notes
			after = pets[i]
			return s.store.SaveClientPets(ctx, pets)
		}
		return ErrPetNotFound
	})
	if err != nil {
		return nil, err
	}

	n, err := s.appointments.UpdatePetSnapshots(ctx, after.OwnerWhatsapp, before.Name, appointment.PetSnapshot{
		Name:   after.Name,
		Type:   after.Type,
		Breed:  after.Breed,
		Age:    after.Age,
		Weight: after.Weight,
	})
	if err != nil {
		return nil, fmt.Errorf("update appointments for pet %s: %w", id, err)
	}
	if n > 0 {
		s.log.InfoContext(ctx, "pet snapshot propagated", "pet_id", id, "appointments", n)
	}

	return &after, nil
}

// Delete removes the pet and every vaccine recorded against its id.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.withLock(ctx, records.KeyClientPets, func(ctx context.Context) error {
		pets, err := s.store.ClientPets(ctx)
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
		return s.store.SaveClientPets(ctx, kept)
	})
	if err != nil {
		return err
	}

	return s.withLock(ctx, records.KeyPetVaccines, func(ctx context.Context) error {
		vaccines, err := s.store.Vaccines(ctx)
		if err != nil {
			return err
		}
		kept := vaccines[:0]
		for _, v := range vaccines {
			if v.PetID != id {
				kept = append(kept, v)
			}
		}
		if len(kept) == len(vaccines) {
			return nil
		}
		return s.store.SaveVaccines(ctx, kept)
	})
}

// OwnedBy merges the pets saved by bookings with the client pets registered
// by staff. A pet present in both is listed once, with booking data taking
// precedence and the client pet's id and notes kept.
func (s *Service) OwnedBy(ctx context.Context, whatsapp string) ([]OwnedPet, error) {
	whatsapp = strings.TrimSpace(whatsapp)

	booked, err := s.store.CustomerPets(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.store.ClientPets(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]OwnedPet, 0)
	index := make(map[string]int)
	for _, p := range booked {
		if p.OwnerWhatsapp != whatsapp {
			continue
		}
		if _, dup := index[p.Name]; dup {
			continue
		}
		index[p.Name] = len(out)
		out = append(out, OwnedPet{
			Name:          p.Name,
			Type:          p.Type,
			Breed:         p.Breed,
			Age:           p.Age,
			Weight:        p.Weight,
			OwnerWhatsapp: p.OwnerWhatsapp,
		})
	}
	for _, p := range clients {
		if p.OwnerWhatsapp != whatsapp {
			continue
		}
		if i, dup := index[p.Name]; dup {
			if out[i].ID == "" {
				out[i].ID = p.ID
				out[i].Notes = p.Notes
			}
			continue
		}
		index[p.Name] = len(out)
		out = append(out, OwnedPet{
			ID:            p.ID,
			Name:          p.Name,
			Type:          p.Type,
			Breed:         p.Breed,
			Age:           p.Age,
			Weight:        p.Weight,
			Notes:         p.Notes,
			OwnerWhatsapp: p.OwnerWhatsapp,
		})
	}
	return out, nil
}

// Vaccines lists the vaccines recorded for a client pet, by id or by name.
func (s *Service) Vaccines(ctx context.Context, petID string) ([]records.Vaccine, error) {
	pet, err := s.Get(ctx, petID)
	if err != nil {
		return nil, err
	}
	all, err := s.store.Vaccines(ctx)
	if err != nil {
		return nil, err
	}
	return vaccinesFor(all, OwnedPet{ID: pet.ID, Name: pet.Name, OwnerWhatsapp: pet.OwnerWhatsapp}), nil
}

// VaccinesOwnedBy lists vaccines of every pet the owner has.
func (s *Service) VaccinesOwnedBy(ctx context.Context, whatsapp string) ([]records.Vaccine, error) {
	pets, err := s.OwnedBy(ctx, whatsapp)
	if err != nil {
		return nil, err
	}
	all, err := s.store.Vaccines(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]records.Vaccine, 0)
	seen := make(map[string]bool)
	for _, p := range pets {
		for _, v := range vaccinesFor(all, p) {
			if !seen[v.ID] {
				seen[v.ID] = true
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// vaccinesFor matches on pet id, or on name when the vaccine is not tied to
// another owner.
func vaccinesFor(all []records.Vaccine, p OwnedPet) []records.Vaccine {
	out := make([]records.Vaccine, 0)
	for _, v := range all {
		switch {
		case p.ID != "" && v.PetID == p.ID:
			out = append(out, v)
		case v.PetName != "" && v.PetName == p.Name &&
			(v.OwnerWhatsapp == "" || v.OwnerWhatsapp == p.OwnerWhatsapp):
			out = append(out, v)
		}
	}
	return out
}

// AddVaccine is the staff form: name, date and next date are required.
func (s *Service) AddVaccine(ctx context.Context, petID string, in VaccineInput) (*records.Vaccine, error) {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(in.NextDate) == "" {
		missing = append(missing, "nextDate")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	if _, err := s.Get(ctx, petID); err != nil {
		return nil, err
	}

	v := records.Vaccine{
		ID:       s.newID(),
		PetID:    petID,
		Name:     strings.TrimSpace(in.Name),
		Date:     strings.TrimSpace(in.Date),
		NextDate: strings.TrimSpace(in.NextDate),
		Notes:    strings.TrimSpace(in.Notes),
	}
	if err := s.appendVaccine(ctx, v); err != nil {
		return nil, err
	}
	return &v, nil
}

// AddOwnVaccine is the customer dashboard form. The vaccine is dated now and
// tied to the pet by name.
func (s *Service) AddOwnVaccine(ctx context.Context, whatsapp, petName, vaccine string) (*records.Vaccine, error) {
	whatsapp = strings.TrimSpace(whatsapp)
	petName = strings.TrimSpace(petName)
	vaccine = strings.TrimSpace(vaccine)

	var missing []string
	if petName == "" {
		missing = append(missing, "petName")
	}
	if vaccine == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	pets, err := s.OwnedBy(ctx, whatsapp)
	if err != nil {
		return nil, err
	}
	var owned *OwnedPet
	for i := range pets {
		if pets[i].Name == petName {
			owned = &pets[i]
			break
		}
	}
	if owned == nil {
		return nil, ErrPetNotFound
	}

	v := records.Vaccine{
		ID:            s.newID(),
		PetID:         owned.ID,
		PetName:       petName,
		Name:          vaccine,
		Date:          s.now().UTC().Format(isoMillis),
		OwnerWhatsapp: whatsapp,
	}
	if err := s.appendVaccine(ctx, v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Service) appendVaccine(ctx context.Context, v records.Vaccine) error {
	return s.withLock(ctx, records.KeyPetVaccines, func(ctx context.Context) error {
		vaccines, err := s.store.Vaccines(ctx)
		if err != nil {
			return err
		}
		return s.store.SaveVaccines(ctx, append(vaccines, v))
	})
}

func (s *Service) findOwner(ctx context.Context, whatsapp string) (*records.Customer, error) {
	customers, err := s.store.Customers(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range customers {
		if c.Whatsapp == whatsapp {
			return &c, nil
		}
	}
	return nil, ErrOwnerNotFound
}

func (s *Service) withLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	err := s.locker.WithLock(ctx, key, fn)
	if errors.Is(err, lock.ErrNotAcquired) {
		return ErrBusy
	}
	return err
}
