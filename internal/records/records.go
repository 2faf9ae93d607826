// Package records holds the persisted record shapes. Field names match the
// browser local-storage layout so existing dumps load without migration.
package records

// Collection keys.
const (
	KeyServices        = "services"
	KeyTimeSlots       = "timeSlots"
	KeyAppointments    = "appointments"
	KeyCustomers       = "customers"
	KeyCustomerPets    = "customerPets"
	KeyClientPets      = "clientPets"
	KeyPetVaccines     = "petVaccines"
	KeyCurrentCustomer = "currentCustomer"
	KeyAdoptionPets    = "pets"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

type Service struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"` // minutes
}

type TimeSlot struct {
	ID        string `json:"id"`
	Time      string `json:"time"` // HH:MM, 24h
	Available bool   `json:"available"`
}

type Appointment struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	ServiceID string `json:"serviceId"`

	PetName   string `json:"petName"`
	PetType   string `json:"petType"`
	PetBreed  string `json:"petBreed"`
	PetAge    string `json:"petAge"`
	PetWeight string `json:"petWeight"`

	OwnerName     string `json:"ownerName"`
	OwnerWhatsapp string `json:"ownerWhatsapp"`
	OwnerAddress  string `json:"ownerAddress"`

	Status AppointmentStatus `json:"status"`
}

type Customer struct {
	Name     string `json:"name"`
	Whatsapp string `json:"whatsapp"`
	Address  string `json:"address"`
}

// Pet is the customerPets shape written by the booking flow.
type Pet struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Breed         string `json:"breed"`
	Age           string `json:"age"`
	Weight        string `json:"weight"`
	OwnerWhatsapp string `json:"ownerWhatsapp,omitempty"`
}

// ClientPet is the clientPets shape written by the staff pet registry.
type ClientPet struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Breed         string `json:"breed,omitempty"`
	Age           string `json:"age"`
	Weight        string `json:"weight,omitempty"`
	OwnerID       string `json:"ownerId"`
	OwnerName     string `json:"ownerName"`
	OwnerWhatsapp string `json:"ownerWhatsapp"`
	Notes         string `json:"notes,omitempty"`
}

// Vaccine is keyed by PetID when recorded by staff and by PetName when
// recorded from the customer dashboard.
type Vaccine struct {
	ID            string `json:"id"`
	PetID         string `json:"petId,omitempty"`
	PetName       string `json:"petName,omitempty"`
	Name          string `json:"name"`
	Date          string `json:"date"`
	NextDate      string `json:"nextDate,omitempty"`
	Notes         string `json:"notes,omitempty"`
	OwnerWhatsapp string `json:"ownerWhatsapp,omitempty"`
}

// AdoptionPet is an animal listed for adoption.
type AdoptionPet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Age         string `json:"age"`
	Type        string `json:"type"`
}
