package appointment

import (
	"context"
	"errors"

	"github.com/hackgods/petcare-booking/internal/records"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrStore               = errors.New("record store failure")
)

// Repository is the slice of the record store the booking flow touches.
// Collections are loaded and saved whole.
type Repository interface {
	Appointments(ctx context.Context) ([]records.Appointment, error)
	SaveAppointments(ctx context.Context, items []records.Appointment) error

	TimeSlots(ctx context.Context) ([]records.TimeSlot, error)

	CustomerPets(ctx context.Context) ([]records.Pet, error)
	SaveCustomerPets(ctx context.Context, items []records.Pet) error

	Customers(ctx context.Context) ([]records.Customer, error)
	SaveCustomers(ctx context.Context, items []records.Customer) error
}
