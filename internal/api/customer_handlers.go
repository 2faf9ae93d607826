package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/petcare-booking/internal/customer"
)

func listCustomersHandler(svc *customer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			handleCustomerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func createCustomerHandler(svc *customer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req customer.Input
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		c, err := svc.Register(r.Context(), req)
		if err != nil {
			handleCustomerError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func updateCustomerHandler(svc *customer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req customer.Input
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		c, err := svc.Update(r.Context(), chi.URLParam(r, "whatsapp"), req)
		if err != nil {
			handleCustomerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func deleteCustomerHandler(svc *customer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "whatsapp")); err != nil {
			handleCustomerError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func loginHandler(svc *customer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		c, err := svc.Login(r.Context(), req.Whatsapp)
		if err != nil {
			handleCustomerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func logoutHandler(svc *customer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context()); err != nil {
			handleCustomerError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func dashboardHandler(svc *customer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		whatsapp, ok := callerWhatsapp(w, r, svc)
		if !ok {
			return
		}
		d, err := svc.Dashboard(r.Context(), whatsapp)
		if err != nil {
			handleCustomerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func handleCustomerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, customer.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, customer.ErrNotFound):
		writeError(w, http.StatusNotFound, "customer_not_found", err.Error())
	case errors.Is(err, customer.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "customer_exists", err.Error())
	case errors.Is(err, customer.ErrBusy):
		writeError(w, http.StatusConflict, "busy", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
