package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/petcare-booking/internal/adoption"
)

func listAdoptionPetsHandler(svc *adoption.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pets, err := svc.List(r.Context())
		if err != nil {
			handleAdoptionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pets)
	}
}

func createAdoptionPetHandler(svc *adoption.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adoption.Input
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		pet, err := svc.Add(r.Context(), req)
		if err != nil {
			handleAdoptionError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, pet)
	}
}

func deleteAdoptionPetHandler(svc *adoption.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			handleAdoptionError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleAdoptionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, adoption.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, adoption.ErrPetNotFound):
		writeError(w, http.StatusNotFound, "adoption_pet_not_found", err.Error())
	case errors.Is(err, adoption.ErrBusy):
		writeError(w, http.StatusConflict, "busy", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
