package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/petcare-booking/internal/appointment"
	"github.com/hackgods/petcare-booking/internal/customer"
	"github.com/hackgods/petcare-booking/internal/records"
)

func availabilityHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		slots, err := svc.Availability(r.Context(), date)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, AvailabilityResponse{Date: strings.TrimSpace(date), Slots: slots})
	}
}

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}

		appt, err := svc.SubmitBooking(r.Context(), req.input())
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, appt)
	}
}

func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, err := svc.ListByDate(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appts)
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func updateStatusHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateStatusRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}

		status := records.AppointmentStatus(strings.ToLower(strings.TrimSpace(req.Status)))
		appt, err := svc.ChangeStatus(r.Context(), chi.URLParam(r, "id"), status, appointment.Staff())
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func cancelAppointmentHandler(svc *appointment.Service, customers *customer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		whatsapp, ok := callerWhatsapp(w, r, customers)
		if !ok {
			return
		}

		appt, err := svc.Cancel(r.Context(), chi.URLParam(r, "id"), whatsapp)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

// callerWhatsapp identifies the customer from the request header, falling
// back to the logged-in session. It writes a 401 when neither is present.
func callerWhatsapp(w http.ResponseWriter, r *http.Request, customers *customer.Service) (string, bool) {
	if whatsapp := customerFromHeader(r); whatsapp != "" {
		return whatsapp, true
	}

	current, err := customers.Current(r.Context())
	switch {
	case err == nil:
		return current.Whatsapp, true
	case errors.Is(err, customer.ErrNotFound):
		writeError(w, http.StatusUnauthorized, "not_logged_in", "log in or send "+CustomerHeader)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
	return "", false
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	var verr *appointment.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Details: verr.Error(),
			Fields:  verr.Fields,
		})
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrSlotConflict):
		writeError(w, http.StatusConflict, "slot_already_booked", err.Error())
	case errors.Is(err, appointment.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", err.Error())
	case errors.Is(err, appointment.ErrBusy):
		writeError(w, http.StatusConflict, "busy", err.Error())
	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, appointment.ErrNotOwner):
		writeError(w, http.StatusForbidden, "not_owner", err.Error())
	case errors.Is(err, appointment.ErrStore):
		writeError(w, http.StatusInternalServerError, "store_error", "could not save, please try again")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
