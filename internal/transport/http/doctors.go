package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clinic/backend/internal/domain"
)

type doctorsHandler struct {
	svc doctorsService
	log *slog.Logger
}

func newDoctorsHandler(svc doctorsService, log *slog.Logger) *doctorsHandler {
	return &doctorsHandler{svc: svc, log: log.With(slog.String("component", "http.doctors"))}
}

func (h *doctorsHandler) routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/search", h.search)
	r.Get("/{id}", h.get)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createDoctorRequest struct {
	Name    string  `json:"name" validate:"required"`
	Title   string  `json:"title" validate:"required"`
	Link    string  `json:"link" validate:"required,url"`
	Profile *string `json:"profile"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
}

type updateDoctorRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	Title   *string `json:"title" validate:"omitempty,min=1"`
	Link    *string `json:"link" validate:"omitempty,url"`
	Profile *string `json:"profile"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
}

type searchDoctorQuery struct {
	Name string `query:"name" validate:"required"`
}

func (h *doctorsHandler) list(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.log, "doctors list", err)
		return
	}
	writeJSON(w, http.StatusOK, toDoctors(docs))
}

func (h *doctorsHandler) search(w http.ResponseWriter, r *http.Request) {
	q := searchDoctorQuery{Name: r.URL.Query().Get("name")}
	if !validStruct(w, &q) {
		return
	}
	d, err := h.svc.Search(r.Context(), q.Name)
	if err != nil {
		writeServiceError(w, h.log, "doctor search", err, slog.String("name", q.Name))
		return
	}
	writeJSON(w, http.StatusOK, toDoctor(d))
}

func (h *doctorsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "doctor get", err, slog.Int64("doctor_id", id))
		return
	}
	writeJSON(w, http.StatusOK, toDoctor(d))
}

func (h *doctorsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createDoctorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.svc.Create(r.Context(), domain.Doctor{
		Name:    req.Name,
		Title:   req.Title,
		Link:    req.Link,
		Profile: req.Profile,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		writeServiceError(w, h.log, "doctor create", err)
		return
	}
	h.log.Info("doctor created", slog.Int64("doctor_id", d.ID))
	writeJSON(w, http.StatusCreated, toDoctor(d))
}

func (h *doctorsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateDoctorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.svc.Update(r.Context(), id, domain.DoctorPatch{
		Name:    req.Name,
		Title:   req.Title,
		Link:    req.Link,
		Profile: req.Profile,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		writeServiceError(w, h.log, "doctor update", err, slog.Int64("doctor_id", id))
		return
	}
	h.log.Info("doctor updated", slog.Int64("doctor_id", id))
	writeJSON(w, http.StatusOK, toDoctor(d))
}

func (h *doctorsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, "doctor delete", err, slog.Int64("doctor_id", id))
		return
	}
	h.log.Info("doctor deleted", slog.Int64("doctor_id", deleted))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Doctor deleted", ID: deleted})
}
