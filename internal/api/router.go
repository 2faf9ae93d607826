package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/petcare-booking/internal/adoption"
	"github.com/hackgods/petcare-booking/internal/appointment"
	"github.com/hackgods/petcare-booking/internal/catalog"
	"github.com/hackgods/petcare-booking/internal/customer"
	"github.com/hackgods/petcare-booking/internal/pet"
	"github.com/hackgods/petcare-booking/internal/store"
)

type RouterConfig struct {
	Appointments *appointment.Service
	Catalog      *catalog.Catalog
	Customers    *customer.Service
	Pets         *pet.Service
	Adoption     *adoption.Service
	Store        store.Backend
	Redis        *redis.Client // optional
	Logger       *slog.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(chimw.Recoverer)

	health := NewHealthHandler(cfg.Store, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Get("/availability", availabilityHandler(cfg.Appointments))

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", createAppointmentHandler(cfg.Appointments))
		r.Get("/", listAppointmentsHandler(cfg.Appointments))
		r.Get("/{id}", getAppointmentHandler(cfg.Appointments))
		r.Patch("/{id}/status", updateStatusHandler(cfg.Appointments))
		r.Post("/{id}/cancel", cancelAppointmentHandler(cfg.Appointments, cfg.Customers))
	})

	r.Route("/services", func(r chi.Router) {
		r.Get("/", listServicesHandler(cfg.Catalog))
		r.Post("/", createServiceHandler(cfg.Catalog))
		r.Put("/{id}", updateServiceHandler(cfg.Catalog))
		r.Delete("/{id}", deleteServiceHandler(cfg.Catalog))
	})

	r.Route("/time-slots", func(r chi.Router) {
		r.Get("/", listTimeSlotsHandler(cfg.Catalog))
		r.Post("/", createTimeSlotHandler(cfg.Catalog))
		r.Patch("/{id}", setSlotAvailableHandler(cfg.Catalog))
		r.Delete("/{id}", deleteTimeSlotHandler(cfg.Catalog))
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", listCustomersHandler(cfg.Customers))
		r.Post("/", createCustomerHandler(cfg.Customers))
		r.Put("/{whatsapp}", updateCustomerHandler(cfg.Customers))
		r.Delete("/{whatsapp}", deleteCustomerHandler(cfg.Customers))
	})

	r.Post("/login", loginHandler(cfg.Customers))
	r.Post("/logout", logoutHandler(cfg.Customers))
	r.Get("/me", dashboardHandler(cfg.Customers))
	r.Post("/me/vaccines", createOwnVaccineHandler(cfg.Pets, cfg.Customers))

	r.Route("/pets", func(r chi.Router) {
		r.Get("/", listPetsHandler(cfg.Pets))
		r.Post("/", createPetHandler(cfg.Pets))
		r.Put("/{id}", updatePetHandler(cfg.Pets))
		r.Delete("/{id}", deletePetHandler(cfg.Pets))
		r.Get("/{id}/vaccines", listVaccinesHandler(cfg.Pets))
		r.Post("/{id}/vaccines", createVaccineHandler(cfg.Pets))
	})

	r.Route("/adoption-pets", func(r chi.Router) {
		r.Get("/", listAdoptionPetsHandler(cfg.Adoption))
		r.Post("/", createAdoptionPetHandler(cfg.Adoption))
		r.Delete("/{id}", deleteAdoptionPetHandler(cfg.Adoption))
	})

	return r
}
