package appointment

import "strings"

// BookingInput is what the booking form submits.
type BookingInput struct {
	ServiceID string
	Date      string // YYYY-MM-DD or an RFC 3339 timestamp
	Time      string // HH:MM

	PetName   string
	PetType   string
	PetBreed  string
	PetAge    string
	PetWeight string

	OwnerName     string
	OwnerWhatsapp string
	OwnerAddress  string
}

func (in BookingInput) trimmed() BookingInput {
	return BookingInput{
		ServiceID:     strings.TrimSpace(in.ServiceID),
		Date:          strings.TrimSpace(in.Date),
		Time:          strings.TrimSpace(in.Time),
		PetName:       strings.TrimSpace(in.PetName),
		PetType:       strings.TrimSpace(in.PetType),
		PetBreed:      strings.TrimSpace(in.PetBreed),
		PetAge:        strings.TrimSpace(in.PetAge),
		PetWeight:     strings.TrimSpace(in.PetWeight),
		OwnerName:     strings.TrimSpace(in.OwnerName),
		OwnerWhatsapp: strings.TrimSpace(in.OwnerWhatsapp),
		OwnerAddress:  strings.TrimSpace(in.OwnerAddress),
	}
}

func (in BookingInput) missingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"date", in.Date},
		{"time", in.Time},
		{"serviceId", in.ServiceID},
		{"petName", in.PetName},
		{"ownerName", in.OwnerName},
		{"ownerWhatsapp", in.OwnerWhatsapp},
	}
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// PetSnapshot is the pet data copied onto an appointment.
type PetSnapshot struct {
	Name   string
	Type   string
	Breed  string
	Age    string
	Weight string
}

// SlotView is one entry of the time picker for a given day.
type SlotView struct {
	ID        string `json:"id"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Booked    bool   `json:"booked"`
}
