// Package http exposes the clinic services as a JSON API under /api.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/service/appointments"
	"clinic/backend/internal/service/unavailability"
)

type doctorsService interface {
	Create(ctx context.Context, d domain.Doctor) (domain.Doctor, error)
	Get(ctx context.Context, id int64) (domain.Doctor, error)
	List(ctx context.Context) ([]domain.Doctor, error)
	Search(ctx context.Context, name string) (domain.Doctor, error)
	Update(ctx context.Context, id int64, patch domain.DoctorPatch) (domain.Doctor, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type servicesService interface {
	Create(ctx context.Context, s domain.Service, doctorIDs []int64) (domain.Service, error)
	Get(ctx context.Context, id int64) (domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
	Update(ctx context.Context, id int64, patch domain.ServicePatch, doctorIDs []int64) (domain.Service, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type appointmentsService interface {
	Create(ctx context.Context, in appointments.CreateInput) (domain.Appointment, error)
	Get(ctx context.Context, id int64) (domain.Appointment, error)
	List(ctx context.Context) ([]domain.Appointment, error)
	Update(ctx context.Context, id int64, p appointments.Patch) (domain.Appointment, error)
	ForceUpdate(ctx context.Context, id int64, p appointments.Patch) (domain.Appointment, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type availabilityService interface {
	List(ctx context.Context, doctorID int64, startDate, endDate string) ([]domain.Slot, error)
}

type unavailabilityService interface {
	Create(ctx context.Context, in unavailability.CreateInput) (domain.Unavailability, error)
	Get(ctx context.Context, id int64) (domain.Unavailability, error)
	List(ctx context.Context) ([]domain.Unavailability, error)
	Update(ctx context.Context, id int64, p unavailability.Patch) (domain.Unavailability, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type RouterConfig struct {
	Doctors        doctorsService
	Services       servicesService
	Appointments   appointmentsService
	Availability   availabilityService
	Unavailability unavailabilityService
	Health         []Dependency

	Log            *slog.Logger
	RequestTimeout time.Duration
	// RateLimit is the number of requests per second allowed per client IP.
	// Zero disables limiting.
	RateLimit   int
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestIDHeader)
	r.Use(middleware.RealIP)
	r.Use(accessLog(log.With(slog.String("component", "http.access"))))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Second))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	health := newHealthHandler(cfg.Health)
	r.Get("/health/live", health.liveness)
	r.Get("/health/ready", health.readiness)

	r.Route("/api", func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}
		if cfg.Doctors != nil {
			r.Route("/doctors", newDoctorsHandler(cfg.Doctors, log).routes)
		}
		if cfg.Services != nil {
			r.Route("/services", newServicesHandler(cfg.Services, log).routes)
		}
		if cfg.Appointments != nil {
			r.Route("/appointments", newAppointmentsHandler(cfg.Appointments, log).routes)
		}
		if cfg.Availability != nil {
			r.Route("/availability", newAvailabilityHandler(cfg.Availability, log).routes)
		}
		if cfg.Unavailability != nil {
			r.Route("/unavailability", newUnavailabilityHandler(cfg.Unavailability, log).routes)
		}
	})

	return r
}
