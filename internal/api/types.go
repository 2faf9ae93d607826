package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hackgods/petcare-booking/internal/appointment"
)

type CreateAppointmentRequest struct {
	ServiceID     string `json:"serviceId"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PetName       string `json:"petName"`
	PetType       string `json:"petType"`
	PetBreed      string `json:"petBreed"`
	PetAge        string `json:"petAge"`
	PetWeight     string `json:"petWeight"`
	OwnerName     string `json:"ownerName"`
	OwnerWhatsapp string `json:"ownerWhatsapp"`
	OwnerAddress  string `json:"ownerAddress"`
}

func (req CreateAppointmentRequest) input() appointment.BookingInput {
	return appointment.BookingInput{
		ServiceID:     req.ServiceID,
		Date:          req.Date,
		Time:          req.Time,
		PetName:       req.PetName,
		PetType:       req.PetType,
		PetBreed:      req.PetBreed,
		PetAge:        req.PetAge,
		PetWeight:     req.PetWeight,
		OwnerName:     req.OwnerName,
		OwnerWhatsapp: req.OwnerWhatsapp,
		OwnerAddress:  req.OwnerAddress,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AvailabilityResponse struct {
	Date  string                 `json:"date"`
	Slots []appointment.SlotView `json:"slots"`
}

type TimeSlotRequest struct {
	Time string `json:"time"`
}

type SlotAvailabilityRequest struct {
	Available *bool `json:"available"`
}

type LoginRequest struct {
	Whatsapp string `json:"whatsapp"`
}

type OwnVaccineRequest struct {
	PetName string `json:"petName"`
	Name    string `json:"name"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details string   `json:"details,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("could not parse JSON: %w", err)
	}
	return nil
}
