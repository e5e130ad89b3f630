package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clinic/backend/internal/domain"
)

type servicesHandler struct {
	svc servicesService
	log *slog.Logger
}

func newServicesHandler(svc servicesService, log *slog.Logger) *servicesHandler {
	return &servicesHandler{svc: svc, log: log.With(slog.String("component", "http.services"))}
}

func (h *servicesHandler) routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createServiceRequest struct {
	Title     string  `json:"title" validate:"required"`
	Context   string  `json:"context" validate:"required"`
	DoctorIDs []int64 `json:"doctorIds" validate:"omitempty,dive,gt=0"`
}

type updateServiceRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1"`
	Context   *string `json:"context" validate:"omitempty,min=1"`
	DoctorIDs []int64 `json:"doctorIds" validate:"omitempty,dive,gt=0"`
}

func (h *servicesHandler) list(w http.ResponseWriter, r *http.Request) {
	svcs, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.log, "services list", err)
		return
	}
	out := make([]serviceResponse, 0, len(svcs))
	for _, s := range svcs {
		out = append(out, toService(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *servicesHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "service get", err, slog.Int64("service_id", id))
		return
	}
	writeJSON(w, http.StatusOK, toService(s))
}

func (h *servicesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := h.svc.Create(r.Context(), domain.Service{Title: req.Title, Context: req.Context}, req.DoctorIDs)
	if err != nil {
		writeServiceError(w, h.log, "service create", err)
		return
	}
	h.log.Info("service created", slog.Int64("service_id", s.ID), slog.Int("doctors", len(s.Doctors)))
	writeJSON(w, http.StatusCreated, toService(s))
}

func (h *servicesHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateServiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := h.svc.Update(r.Context(), id, domain.ServicePatch{Title: req.Title, Context: req.Context}, req.DoctorIDs)
	if err != nil {
		writeServiceError(w, h.log, "service update", err, slog.Int64("service_id", id))
		return
	}
	h.log.Info("service updated", slog.Int64("service_id", id))
	writeJSON(w, http.StatusOK, toService(s))
}

func (h *servicesHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "service delete", err, slog.Int64("service_id", id))
		return
	}
	h.log.Info("service deleted", slog.Int64("service_id", deleted))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Service deleted successfully", ID: deleted})
}
