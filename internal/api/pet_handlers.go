package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/petcare-booking/internal/appointment"
	"github.com/hackgods/petcare-booking/internal/customer"
	"github.com/hackgods/petcare-booking/internal/pet"
)

func listPetsHandler(svc *pet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pets, err := svc.List(r.Context(), r.URL.Query().Get("owner"))
		if err != nil {
			handlePetError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pets)
	}
}

func createPetHandler(svc *pet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pet.Input
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		p, err := svc.Register(r.Context(), req)
		if err != nil {
			handlePetError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func updatePetHandler(svc *pet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pet.Input
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		p, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			handlePetError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func deletePetHandler(svc *pet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			handlePetError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listVaccinesHandler(svc *pet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vaccines, err := svc.Vaccines(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handlePetError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, vaccines)
	}
}

func createVaccineHandler(svc *pet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pet.VaccineInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		v, err := svc.AddVaccine(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			handlePetError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, v)
	}
}

func createOwnVaccineHandler(svc *pet.Service, customers *customer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		whatsapp, ok := callerWhatsapp(w, r, customers)
		if !ok {
			return
		}
		var req OwnVaccineRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		v, err := svc.AddOwnVaccine(r.Context(), whatsapp, req.PetName, req.Name)
		if err != nil {
			handlePetError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, v)
	}
}

func handlePetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pet.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, pet.ErrPetNotFound):
		writeError(w, http.StatusNotFound, "pet_not_found", err.Error())
	case errors.Is(err, pet.ErrOwnerNotFound):
		writeError(w, http.StatusUnprocessableEntity, "owner_not_found", err.Error())
	case errors.Is(err, pet.ErrBusy), errors.Is(err, appointment.ErrBusy):
		writeError(w, http.StatusConflict, "busy", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
