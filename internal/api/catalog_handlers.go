package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/petcare-booking/internal/catalog"
)

func listServicesHandler(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services, err := c.ListServices(r.Context())
		if err != nil {
			handleCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, services)
	}
}

func createServiceHandler(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req catalog.ServiceInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		svc, err := c.CreateService(r.Context(), req)
		if err != nil {
			handleCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, svc)
	}
}

func updateServiceHandler(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req catalog.ServiceInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		svc, err := c.UpdateService(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			handleCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, svc)
	}
}

func deleteServiceHandler(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.DeleteService(r.Context(), chi.URLParam(r, "id")); err != nil {
			handleCatalogError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listTimeSlotsHandler(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots, err := c.ListTimeSlots(r.Context())
		if err != nil {
			handleCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, slots)
	}
}

func createTimeSlotHandler(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TimeSlotRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		slot, err := c.CreateTimeSlot(r.Context(), req.Time)
		if err != nil {
			handleCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, slot)
	}
}

func setSlotAvailableHandler(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SlotAvailabilityRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		if req.Available == nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "available is required")
			return
		}
		slot, err := c.SetSlotAvailable(r.Context(), chi.URLParam(r, "id"), *req.Available)
		if err != nil {
			handleCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, slot)
	}
}

func deleteTimeSlotHandler(c *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.DeleteTimeSlot(r.Context(), chi.URLParam(r, "id")); err != nil {
			handleCatalogError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrMissingFields),
		errors.Is(err, catalog.ErrInvalidTime):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, catalog.ErrServiceNotFound):
		writeError(w, http.StatusNotFound, "service_not_found", err.Error())
	case errors.Is(err, catalog.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "time_slot_not_found", err.Error())
	case errors.Is(err, catalog.ErrDuplicateTime):
		writeError(w, http.StatusConflict, "time_slot_exists", err.Error())
	case errors.Is(err, catalog.ErrBusy):
		writeError(w, http.StatusConflict, "busy", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
