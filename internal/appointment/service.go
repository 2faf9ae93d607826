package appointment

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

const (
	EventAppointmentCreated       = "APPOINTMENT_CREATED"
	EventAppointmentStatusChanged = "APPOINTMENT_STATUS_CHANGED"
)

var (
	ErrValidation      = errors.New("please fill in all required fields")
	ErrSlotConflict    = errors.New("this time slot is no longer available, please choose another")
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
	ErrBusy            = errors.New("records are being updated, please retry")
)

// ValidationError lists the fields that stopped a submission. Callers show
// the generic message; Fields is for code.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return ErrValidation.Error()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type Service struct {
	repo   Repository
	locker lock.Locker
	engine Engine
	log    *slog.Logger
	newID  func() string
}

func NewService(repo Repository, locker lock.Locker, engine Engine, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:   repo,
		locker: locker,
		engine: engine,
		log:    log,
		newID:  uuid.NewString,
	}
}

func (s *Service) Engine() Engine {
	return s.engine
}

// SubmitBooking validates the form, re-checks the slot against the stored
// appointments and appends a pending appointment. The pet and the customer
// are then upserted into their own collections.
//
// The conflict check and the append run under the appointments lock, so two
// concurrent submissions for one slot cannot both succeed.
func (s *Service) SubmitBooking(ctx context.Context, in BookingInput) (*records.Appointment, error) {
	in = in.trimmed()
	if missing := in.missingFields(); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	day, err := s.engine.ParseDay(in.Date)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"date"}, Reason: "date must be YYYY-MM-DD"}
	}
	if in.Time, err = records.NormalizeTime(in.Time); err != nil {
		return nil, &ValidationError{Fields: []string{"time"}, Reason: records.ErrInvalidTime.Error()}
	}

	var created records.Appointment

	err = s.locker.WithLock(ctx, records.KeyAppointments, func(lockCtx context.Context) error {
		appts, err := s.repo.Appointments(lockCtx)
		if err != nil {
			return fmt.Errorf("%w: load appointments: %v", ErrStore, err)
		}

		if !s.engine.IsSlotAvailable(day, in.Time, appts) {
			return ErrSlotConflict
		}

		created = records.Appointment{
			ID:            s.newID(),
			Date:          s.engine.StoredDate(day),
			Time:          in.Time,
			ServiceID:     in.ServiceID,
			PetName:       in.PetName,
			PetType:       in.PetType,
			PetBreed:      in.PetBreed,
			PetAge:        in.PetAge,
			PetWeight:     in.PetWeight,
			OwnerName:     in.OwnerName,
			OwnerWhatsapp: in.OwnerWhatsapp,
			OwnerAddress:  in.OwnerAddress,
			Status:        records.StatusPending,
		}

		if err := s.repo.SaveAppointments(lockCtx, append(appts, created)); err != nil {
			return fmt.Errorf("%w: save appointments: %v", ErrStore, err)
		}
		return nil
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil, ErrSlotBeingBooked
	}
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, created.ID, EventAppointmentCreated,
		"date", day.Format(DayLayout),
		"time", created.Time,
		"service_id", created.ServiceID,
	)

	if err := s.upsertPet(ctx, in); err != nil {
		return nil, err
	}
	if err := s.upsertCustomer(ctx, in); err != nil {
		return nil, err
	}

	return &created, nil
}

// upsertPet appends the pet unless one with the same name and owner is
// already stored. The stored record is left as first booked.
func (s *Service) upsertPet(ctx context.Context, in BookingInput) error {
	pet := records.Pet{
		Name:          in.PetName,
		Type:          in.PetType,
		Breed:         in.PetBreed,
		Age:           in.PetAge,
		Weight:        in.PetWeight,
		OwnerWhatsapp: in.OwnerWhatsapp,
	}

	err := s.locker.WithLock(ctx, records.KeyCustomerPets, func(lockCtx context.Context) error {
		pets, err := s.repo.CustomerPets(lockCtx)
		if err != nil {
			return fmt.Errorf("%w: load pets: %v", ErrStore, err)
		}

		for _, p := range pets {
			if p.Name == pet.Name && p.OwnerWhatsapp == pet.OwnerWhatsapp {
				return nil
			}
		}

		if err := s.repo.SaveCustomerPets(lockCtx, append(pets, pet)); err != nil {
			return fmt.Errorf("%w: save pets: %v", ErrStore, err)
		}
		return nil
	})
	return mapLockError(err)
}

// upsertCustomer only appends. An existing profile is never overwritten by a
// later booking.
func (s *Service) upsertCustomer(ctx context.Context, in BookingInput) error {
	err := s.locker.WithLock(ctx, records.KeyCustomers, func(lockCtx context.Context) error {
		customers, err := s.repo.Customers(lockCtx)
		if err != nil {
			return fmt.Errorf("%w: load customers: %v", ErrStore, err)
		}

		for _, c := range customers {
			if c.Whatsapp == in.OwnerWhatsapp {
				return nil
			}
		}

		customers = append(customers, records.Customer{
			Name:     in.OwnerName,
			Whatsapp: in.OwnerWhatsapp,
			Address:  in.OwnerAddress,
		})
		if err := s.repo.SaveCustomers(lockCtx, customers); err != nil {
			return fmt.Errorf("%w: save customers: %v", ErrStore, err)
		}
		return nil
	})
	return mapLockError(err)
}

// ChangeStatus moves an appointment to status on behalf of actor.
func (s *Service) ChangeStatus(ctx context.Context, id string, status records.AppointmentStatus, actor Actor) (*records.Appointment, error) {
	if !status.Valid() {
		return nil, &ValidationError{Fields: []string{"status"}, Reason: fmt.Sprintf("unknown status %q", status)}
	}

	var (
		updated records.Appointment
		from    records.AppointmentStatus
	)

	err := s.locker.WithLock(ctx, records.KeyAppointments, func(lockCtx context.Context) error {
		appts, err := s.repo.Appointments(lockCtx)
		if err != nil {
			return fmt.Errorf("%w: load appointments: %v", ErrStore, err)
		}

		idx := indexOf(appts, id)
		if idx < 0 {
			return ErrAppointmentNotFound
		}
		if err := authorize(actor, appts[idx], status); err != nil {
			return err
		}

		from = appts[idx].Status
		appts[idx].Status = status
		updated = appts[idx]

		if err := s.repo.SaveAppointments(lockCtx, appts); err != nil {
			return fmt.Errorf("%w: save appointments: %v", ErrStore, err)
		}
		return nil
	})
	if err != nil {
		return nil, mapLockError(err)
	}

	s.logEvent(ctx, updated.ID, EventAppointmentStatusChanged,
		"from", string(from),
		"to", string(status),
		"actor", string(actor.Role),
	)
	return &updated, nil
}

// Cancel is the customer's self-service cancellation of a pending booking.
func (s *Service) Cancel(ctx context.Context, id, whatsapp string) (*records.Appointment, error) {
	return s.ChangeStatus(ctx, id, records.StatusCancelled, Customer(whatsapp))
}

func (s *Service) Get(ctx context.Context, id string) (*records.Appointment, error) {
	appts, err := s.repo.Appointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load appointments: %v", ErrStore, err)
	}
	idx := indexOf(appts, id)
	if idx < 0 {
		return nil, ErrAppointmentNotFound
	}
	appt := appts[idx]
	return &appt, nil
}

// ListByDate returns the appointments of one day sorted by time. An empty
// date returns every appointment in stored order.
func (s *Service) ListByDate(ctx context.Context, date string) ([]records.Appointment, error) {
	appts, err := s.repo.Appointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load appointments: %v", ErrStore, err)
	}
	if strings.TrimSpace(date) == "" {
		return appts, nil
	}

	day, err := s.engine.ParseDay(date)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"date"}, Reason: "date must be YYYY-MM-DD"}
	}
	target := day.Format(DayLayout)

	out := make([]records.Appointment, 0)
	for _, a := range appts {
		if key, ok := s.engine.DayKey(a.Date); ok && key == target {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *Service) ListByOwner(ctx context.Context, whatsapp string) ([]records.Appointment, error) {
	appts, err := s.repo.Appointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load appointments: %v", ErrStore, err)
	}
	whatsapp = strings.TrimSpace(whatsapp)

	out := make([]records.Appointment, 0)
	for _, a := range appts {
		if a.OwnerWhatsapp == whatsapp {
			out = append(out, a)
		}
	}
	return out, nil
}

// Availability is the slot picker for one day.
func (s *Service) Availability(ctx context.Context, date string) ([]SlotView, error) {
	day, err := s.engine.ParseDay(date)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"date"}, Reason: "date must be YYYY-MM-DD"}
	}

	slots, err := s.repo.TimeSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load time slots: %v", ErrStore, err)
	}
	appts, err := s.repo.Appointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load appointments: %v", ErrStore, err)
	}

	return s.engine.Slots(day, slots, appts), nil
}

// UpdatePetSnapshots rewrites the pet fields of every appointment booked by
// ownerWhatsapp for the pet named oldName. It returns how many changed.
func (s *Service) UpdatePetSnapshots(ctx context.Context, ownerWhatsapp, oldName string, pet PetSnapshot) (int, error) {
	var n int

	err := s.locker.WithLock(ctx, records.KeyAppointments, func(lockCtx context.Context) error {
		appts, err := s.repo.Appointments(lockCtx)
		if err != nil {
			return fmt.Errorf("%w: load appointments: %v", ErrStore, err)
		}

		for i := range appts {
			if appts[i].OwnerWhatsapp != ownerWhatsapp || appts[i].PetName != oldName {
				continue
			}
			appts[i].PetName = pet.Name
			appts[i].PetType = pet.Type
			appts[i].PetBreed = pet.Breed
			appts[i].PetAge = pet.Age
			appts[i].PetWeight = pet.Weight
			n++
		}
		if n == 0 {
			return nil
		}

		if err := s.repo.SaveAppointments(lockCtx, appts); err != nil {
			return fmt.Errorf("%w: save appointments: %v", ErrStore, err)
		}
		return nil
	})
	if err != nil {
		return 0, mapLockError(err)
	}
	return n, nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID, eventType string, attrs ...any) {
	args := append([]any{"event", eventType, "appointment_id", appointmentID}, attrs...)
	s.log.InfoContext(ctx, "appointment event", args...)
}

func indexOf(appts []records.Appointment, id string) int {
	for i := range appts {
		if appts[i].ID == id {
			return i
		}
	}
	return -1
}

func mapLockError(err error) error {
	if errors.Is(err, lock.ErrNotAcquired) {
		return ErrBusy
	}
	return err
}
