package appointment

import (
	"errors"
	"strings"

	"github.com/hackgods/petcare-booking/internal/records"
)

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotOwner                = errors.New("appointment belongs to another customer")
	ErrUnknownActor            = errors.New("unknown actor")
)

type Role string

const (
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// Actor is who asks for a status change. Customers are identified by the
// whatsapp number they logged in with.
type Actor struct {
	Role     Role
	Whatsapp string
}

func Staff() Actor { return Actor{Role: RoleStaff} }

func Customer(whatsapp string) Actor {
	return Actor{Role: RoleCustomer, Whatsapp: strings.TrimSpace(whatsapp)}
}

// customerTransitions is the only self-service path. Staff may overwrite any
// status with any other.
var customerTransitions = map[records.AppointmentStatus][]records.AppointmentStatus{
	records.StatusPending: {records.StatusCancelled},
}

func CanTransition(role Role, from, to records.AppointmentStatus) bool {
	if !to.Valid() {
		return false
	}
	switch role {
	case RoleStaff:
		return true
	case RoleCustomer:
		for _, allowed := range customerTransitions[from] {
			if allowed == to {
				return true
			}
		}
	}
	return false
}

func authorize(actor Actor, appt records.Appointment, to records.AppointmentStatus) error {
	switch actor.Role {
	case RoleStaff:
	case RoleCustomer:
		if actor.Whatsapp == "" || actor.Whatsapp != appt.OwnerWhatsapp {
			return ErrNotOwner
		}
	default:
		return ErrUnknownActor
	}

	if !CanTransition(actor.Role, appt.Status, to) {
		return ErrInvalidStatusTransition
	}
	return nil
}
